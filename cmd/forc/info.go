package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thomasrockhu/goforc/forc/pmc"
	"github.com/thomasrockhu/goforc/internal/gridmath"
	gridstats "github.com/thomasrockhu/goforc/stats/grid"
)

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Summarize a measurement file without processing it",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("forc: open data file: %w", err)
	}
	defer f.Close()

	cs, err := pmc.Parse(f)
	if err != nil {
		return err
	}

	// Raw curves are ragged, so the moment statistics stream curve by
	// curve instead of going through the rectangular-grid entry point.
	acc := gridstats.NewAccumulator()
	for _, m := range cs.Moments() {
		acc.Update(m)
	}
	moment := acc.Result()

	fieldLo, fieldHi, _ := gridmath.MinMax(cs.Fields())
	revLo, revHi, _ := gridmath.MinMax(cs.ReversalFields())

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File\t%s\n", args[0])
	fmt.Fprintf(tw, "Curves\t%d\n", len(cs.Curves))
	fmt.Fprintf(tw, "Samples\t%d\n", cs.TotalSamples())
	fmt.Fprintf(tw, "Temperature\t%s\n", yesNo(cs.HasTemperature))
	fmt.Fprintf(tw, "Drift points\t%s\n", yesNo(cs.HasDriftPoints))
	fmt.Fprintf(tw, "Field\t[%g, %g]\n", fieldLo, fieldHi)
	fmt.Fprintf(tw, "Reversal\t[%g, %g]\n", revLo, revHi)
	if step, err := cs.EstimateStep(); err == nil {
		fmt.Fprintf(tw, "Step estimate\t%g\n", step)
	} else {
		fmt.Fprintf(tw, "Step estimate\tundefined\n")
	}
	fmt.Fprintf(tw, "Moment range\t[%g, %g]\n", moment.Min, moment.Max)
	fmt.Fprintf(tw, "Moment mean\t%g\n", moment.Mean)
	fmt.Fprintf(tw, "Moment std\t%g\n", moment.StdDev)
	fmt.Fprintf(tw, "Moment RMS\t%g\n", moment.RMS)
	return tw.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

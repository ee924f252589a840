package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thomasrockhu/goforc/forc/dataset"
	"github.com/thomasrockhu/goforc/forc/pmc"
	"github.com/thomasrockhu/goforc/forc/sg"
	"github.com/thomasrockhu/goforc/forc/transform"
	"github.com/thomasrockhu/goforc/internal/recipe"
)

var (
	processOut    string
	processRecipe string

	processCmd = &cobra.Command{
		Use:   "process FILE",
		Short: "Run the processing pipeline and export the grid as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runProcess,
	}
)

func init() {
	processCmd.Flags().StringVarP(&processOut, "output", "o", ".", "directory for the exported CSV file")
	processCmd.Flags().StringVar(&processRecipe, "recipe", "", "YAML recipe file (built-in defaults when omitted)")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := pipelineLogger()

	rec := recipe.Default()
	if processRecipe != "" {
		var err error
		if rec, err = recipe.Load(processRecipe); err != nil {
			return err
		}
		log.Info("loaded recipe", zap.String("path", processRecipe))
	}

	loadOpts, err := rec.LoadOptions(log)
	if err != nil {
		return err
	}
	slopeOpts, applySlope, err := rec.SlopeOptions()
	if err != nil {
		return err
	}
	distOpts, applyDist, err := rec.DistributionOptions(log)
	if err != nil {
		return err
	}

	d, err := pmc.Load(args[0], loadOpts)
	if err != nil {
		return err
	}

	if applySlope {
		if d, err = transform.SlopeCorrect(d, slopeOpts); err != nil {
			return err
		}
		log.Info("slope corrected")
	}
	if rec.Normalize {
		if d, err = transform.Normalize(d); err != nil {
			return err
		}
		log.Info("normalized moment")
	}
	if applyDist {
		if d, err = sg.ComputeDistribution(d, distOpts); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(processOut, 0o755); err != nil {
		return fmt.Errorf("forc: create output directory: %w", err)
	}
	path := filepath.Join(processOut, exportName(args[0]))
	if err := exportCSV(path, d); err != nil {
		return err
	}

	rows, cols := d.Shape()
	log.Info("exported dataset",
		zap.String("path", path),
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Bool("distribution", d.Has(dataset.FieldDistribution)))
	return nil
}

// exportName maps an input file name to its CSV counterpart.
func exportName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".csv"
}

// exportCSV writes the dataset in long format: one line per grid cell with
// the cell's indices, coordinates and every field the dataset carries.
func exportCSV(path string, d *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("forc: create export file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := writeDataset(w, d); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("forc: write export file: %w", err)
	}
	return f.Close()
}

func writeDataset(w *csv.Writer, d *dataset.Dataset) error {
	header := []string{"row", "col", "field", "reversal", "moment"}
	grids := make([][][]float64, 0, 4)

	moment, err := d.Data(dataset.FieldMoment)
	if err != nil {
		return err
	}
	grids = append(grids, moment)

	for _, f := range []dataset.Field{dataset.FieldTemperature, dataset.FieldDistribution, dataset.FieldDistributionUncertainty} {
		if !d.Has(f) {
			continue
		}
		g, err := d.Data(f)
		if err != nil {
			return err
		}
		grids = append(grids, g)
		switch f {
		case dataset.FieldTemperature:
			header = append(header, "temperature")
		case dataset.FieldDistribution:
			header = append(header, "rho")
		case dataset.FieldDistributionUncertainty:
			header = append(header, "sigma")
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	field := d.FieldGrid()
	reversal := d.ReversalGrid()
	record := make([]string, len(header))
	rows, cols := d.Shape()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			record[0] = strconv.Itoa(i)
			record[1] = strconv.Itoa(j)
			record[2] = formatCell(field[i][j])
			record[3] = formatCell(reversal[i][j])
			for k, g := range grids {
				record[4+k] = formatCell(g[i][j])
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatCell(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

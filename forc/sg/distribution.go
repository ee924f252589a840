package sg

import (
	"go.uber.org/zap"

	"github.com/thomasrockhu/goforc/forc/dataset"
	"github.com/thomasrockhu/goforc/forc/extend"
)

// Options configures ComputeDistribution.
type Options struct {
	// SF is the smoothing factor, the kernel half-width in grid steps.
	SF int
	// Extension selects how the low-field padding is filled before the
	// convolution.
	Extension extend.Policy
	// FitPoints caps the samples used by the Slope extension fit.
	FitPoints int
	// Uncertainty toggles the per-cell standard error grid.
	Uncertainty bool
	// Logger receives stage progress. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the measurement-software defaults: smoothing
// factor 3, slope extension over 10 fit points, uncertainty on.
func DefaultOptions() Options {
	return Options{
		SF:          3,
		Extension:   extend.Slope,
		FitPoints:   10,
		Uncertainty: true,
	}
}

// ComputeDistribution derives the FORC distribution of d: the low-field
// edge is extended by the smoothing factor, the moment grid is correlated
// with the Savitzky-Golay kernel, and the result is scaled by the physical
// -0.5 convention. The returned Dataset lives on the extended grid and
// carries the distribution and, when enabled, its standard error.
func ComputeDistribution(d *dataset.Dataset, opts Options) (*dataset.Dataset, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	kernel, err := NewKernel(opts.SF, d.Step())
	if err != nil {
		return nil, err
	}

	extended, err := extend.Extend(d, opts.SF, opts.Extension, opts.FitPoints)
	if err != nil {
		return nil, err
	}
	moment, err := extended.Data(dataset.FieldMoment)
	if err != nil {
		return nil, err
	}

	var raw, se [][]float64
	if opts.Uncertainty {
		raw, se, err = kernel.CorrelateWithUncertainty(moment)
	} else {
		raw, err = kernel.Correlate(moment)
	}
	if err != nil {
		return nil, err
	}

	for i := range raw {
		for j := range raw[i] {
			raw[i][j] *= -0.5
			if se != nil {
				se[i][j] *= 0.5
			}
		}
	}

	out, err := extended.WithDistribution(raw, se)
	if err != nil {
		return nil, err
	}
	rows, cols := out.Shape()
	log.Info("computed distribution",
		zap.Int("sf", opts.SF),
		zap.Stringer("extension", opts.Extension),
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Bool("uncertainty", opts.Uncertainty))
	return out, nil
}

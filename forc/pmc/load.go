package pmc

import (
	"fmt"
	"io"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/thomasrockhu/goforc/forc/dataset"
	"github.com/thomasrockhu/goforc/forc/drift"
	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/forc/interp"
)

// ErrTooFewSamples indicates a file whose total sample count cannot
// support the requested interpolation method. Load checks this before
// gridding so that an undersized file is reported as a file problem.
var ErrTooFewSamples = fmt.Errorf("pmc: file has too few samples: %w", forcerr.ErrDataFormat)

// LoadOptions configures the file-to-dataset pipeline.
type LoadOptions struct {
	// Step is the grid spacing for interpolation. NaN means estimate it
	// from the mean sample spacing of the parsed curves.
	Step float64
	// Method selects the scattered-data interpolation scheme.
	Method interp.Method
	// DriftCorrection enables the drift-removal pass between parsing and
	// gridding.
	DriftCorrection bool
	// DriftRadius is the moving-average half-width of the drift smoother.
	DriftRadius int
	// DriftDensity is the decimation factor of the drift spline.
	DriftDensity int
	// Logger receives stage progress. Nil disables logging.
	Logger *zap.Logger
}

// DefaultLoadOptions returns the measurement-software defaults: automatic
// step, nearest-sample interpolation, drift correction off with radius 4
// and density 3 when enabled.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Step:         math.NaN(),
		Method:       interp.Nearest,
		DriftRadius:  4,
		DriftDensity: 3,
	}
}

// Load reads the PMC file at path and runs the import pipeline: parse,
// optional drift correction, interpolation onto a uniform grid with the
// physically unmeasured region masked.
func Load(path string, opts LoadOptions) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pmc: open data file: %w", err)
	}
	defer f.Close()
	return LoadReader(f, opts)
}

// LoadReader is Load over an already opened stream.
func LoadReader(r io.Reader, opts LoadOptions) (*dataset.Dataset, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cs, err := Parse(r)
	if err != nil {
		return nil, err
	}
	log.Info("parsed curve set",
		zap.Int("curves", len(cs.Curves)),
		zap.Int("samples", cs.TotalSamples()),
		zap.Bool("temperature", cs.HasTemperature),
		zap.Bool("drift_points", cs.HasDriftPoints))

	if n := cs.TotalSamples(); n < opts.Method.MinPoints() {
		return nil, fmt.Errorf("%w: %d samples, %s interpolation needs %d",
			ErrTooFewSamples, n, opts.Method, opts.Method.MinPoints())
	}

	step := opts.Step
	if math.IsNaN(step) {
		step, err = cs.EstimateStep()
		if err != nil {
			return nil, err
		}
		log.Info("estimated grid step", zap.Float64("step", step))
	}

	moments := cs.Moments()
	if opts.DriftCorrection {
		moments, _, err = drift.Correct(moments, cs.Drift, opts.DriftRadius, opts.DriftDensity)
		if err != nil {
			return nil, err
		}
		log.Info("applied drift correction",
			zap.Int("radius", opts.DriftRadius),
			zap.Int("density", opts.DriftDensity))
	}

	ds, err := interp.Grid(cs.Fields(), cs.ReversalFields(), moments, cs.Temperatures(), step, opts.Method)
	if err != nil {
		return nil, err
	}
	rows, cols := ds.Shape()
	log.Info("gridded dataset",
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Float64("step", ds.Step()),
		zap.Stringer("method", opts.Method))
	return ds, nil
}

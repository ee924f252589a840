// Package recipe decodes and validates YAML pipeline recipes for the CLI.
// A recipe names every stage of the import-to-distribution pipeline; omitted
// keys fall back to the measurement-software defaults, unknown keys are
// rejected. The mapping accessors return the option structs the library
// packages consume, so a recipe either validates completely or fails with
// the same error identities the pipeline itself would produce.
package recipe

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/thomasrockhu/goforc/forc/drift"
	"github.com/thomasrockhu/goforc/forc/extend"
	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/forc/interp"
	"github.com/thomasrockhu/goforc/forc/pmc"
	"github.com/thomasrockhu/goforc/forc/sg"
	"github.com/thomasrockhu/goforc/forc/transform"
)

var (
	// ErrBadRecipe indicates YAML that does not decode into a recipe.
	ErrBadRecipe = fmt.Errorf("recipe: cannot decode recipe: %w", forcerr.ErrConfiguration)
	// ErrBadSlopeMode indicates a slope mode outside none/auto/value/hsat.
	ErrBadSlopeMode = fmt.Errorf("recipe: unknown slope mode: %w", forcerr.ErrConfiguration)
)

// Drift configures the drift-removal stage.
type Drift struct {
	Enabled bool `yaml:"enabled"`
	Radius  int  `yaml:"radius"`
	Density int  `yaml:"density"`
}

// Slope configures the background-removal stage. Mode is one of none,
// auto, value or hsat; Value and HSat feed the matching mode.
type Slope struct {
	Mode  string  `yaml:"mode"`
	Value float64 `yaml:"value"`
	HSat  float64 `yaml:"hsat"`
}

// Distribution configures the distribution-computation stage.
type Distribution struct {
	Enabled     bool   `yaml:"enabled"`
	SF          int    `yaml:"sf"`
	Extension   string `yaml:"extension"`
	FitPoints   int    `yaml:"fit_points"`
	Uncertainty bool   `yaml:"uncertainty"`
}

// Recipe is one headless pipeline run: import settings plus the stage
// toggles the measurement software exposes.
type Recipe struct {
	// Step is the grid spacing. Zero estimates it from the data.
	Step         float64      `yaml:"step"`
	Method       string       `yaml:"method"`
	Drift        Drift        `yaml:"drift"`
	Slope        Slope        `yaml:"slope"`
	Normalize    bool         `yaml:"normalize"`
	Distribution Distribution `yaml:"distribution"`
}

// Default returns the measurement-software defaults: automatic step,
// nearest interpolation, drift correction off (radius 4, density 3 when
// enabled), no slope correction, no normalization, distribution with
// smoothing factor 3, slope extension over 10 fit points and uncertainty.
func Default() Recipe {
	return Recipe{
		Method: "nearest",
		Drift:  Drift{Radius: 4, Density: 3},
		Slope:  Slope{Mode: "none"},
		Distribution: Distribution{
			Enabled:     true,
			SF:          3,
			Extension:   "slope",
			FitPoints:   10,
			Uncertainty: true,
		},
	}
}

// Parse decodes a recipe over the defaults and validates it. Unknown keys
// are rejected; an empty document yields the defaults.
func Parse(r io.Reader) (Recipe, error) {
	rec := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rec); err != nil && !errors.Is(err, io.EOF) {
		return Recipe{}, fmt.Errorf("%w: %v", ErrBadRecipe, err)
	}
	if err := rec.Validate(); err != nil {
		return Recipe{}, err
	}
	return rec, nil
}

// Load reads and parses the recipe file at path.
func Load(path string) (Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return Recipe{}, fmt.Errorf("recipe: open recipe file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Validate checks every section, enabled or not, so that a recipe fails
// before any data file is read.
func (r Recipe) Validate() error {
	if _, err := r.LoadOptions(nil); err != nil {
		return err
	}
	if _, _, err := r.SlopeOptions(); err != nil {
		return err
	}
	if _, _, err := r.DistributionOptions(nil); err != nil {
		return err
	}
	return nil
}

// LoadOptions maps the import settings onto the loader's options.
func (r Recipe) LoadOptions(logger *zap.Logger) (pmc.LoadOptions, error) {
	opts := pmc.DefaultLoadOptions()
	opts.Logger = logger

	switch {
	case math.IsNaN(r.Step) || math.IsInf(r.Step, 0) || r.Step < 0:
		return pmc.LoadOptions{}, fmt.Errorf("%w: got %v", interp.ErrBadStep, r.Step)
	case r.Step > 0:
		opts.Step = r.Step
	}

	m, err := interp.ParseMethod(r.Method)
	if err != nil {
		return pmc.LoadOptions{}, err
	}
	opts.Method = m

	if r.Drift.Radius < 0 {
		return pmc.LoadOptions{}, fmt.Errorf("%w: got %d", drift.ErrBadRadius, r.Drift.Radius)
	}
	if r.Drift.Density < 1 {
		return pmc.LoadOptions{}, fmt.Errorf("%w: got %d", drift.ErrBadDensity, r.Drift.Density)
	}
	opts.DriftCorrection = r.Drift.Enabled
	opts.DriftRadius = r.Drift.Radius
	opts.DriftDensity = r.Drift.Density

	return opts, nil
}

// SlopeOptions maps the slope section onto the transform's options. apply
// is false when the mode is none.
func (r Recipe) SlopeOptions() (opts transform.SlopeOptions, apply bool, err error) {
	opts = transform.DefaultSlopeOptions()

	switch strings.ToLower(strings.TrimSpace(r.Slope.Mode)) {
	case "none":
		return opts, false, nil
	case "auto":
		return opts, true, nil
	case "value":
		if math.IsNaN(r.Slope.Value) || math.IsInf(r.Slope.Value, 0) {
			return opts, false, fmt.Errorf("%w: got %v", transform.ErrBadCoefficient, r.Slope.Value)
		}
		opts.Value = r.Slope.Value
		return opts, true, nil
	case "hsat":
		if math.IsNaN(r.Slope.HSat) || math.IsInf(r.Slope.HSat, 0) {
			return opts, false, fmt.Errorf("%w: got %v", transform.ErrBadSaturation, r.Slope.HSat)
		}
		opts.HSat = r.Slope.HSat
		return opts, true, nil
	default:
		return opts, false, fmt.Errorf("%w: %q", ErrBadSlopeMode, r.Slope.Mode)
	}
}

// DistributionOptions maps the distribution section onto the engine's
// options. apply is false when the stage is disabled.
func (r Recipe) DistributionOptions(logger *zap.Logger) (sg.Options, bool, error) {
	if r.Distribution.SF < 1 {
		return sg.Options{}, false, fmt.Errorf("%w: got %d", sg.ErrBadSmoothing, r.Distribution.SF)
	}
	pol, err := extend.ParsePolicy(r.Distribution.Extension)
	if err != nil {
		return sg.Options{}, false, err
	}
	if r.Distribution.FitPoints < 2 {
		return sg.Options{}, false, fmt.Errorf("%w: got %d", extend.ErrBadFitPoints, r.Distribution.FitPoints)
	}

	return sg.Options{
		SF:          r.Distribution.SF,
		Extension:   pol,
		FitPoints:   r.Distribution.FitPoints,
		Uncertainty: r.Distribution.Uncertainty,
		Logger:      logger,
	}, r.Distribution.Enabled, nil
}

package dataset

import (
	"fmt"
	"math"

	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/internal/gridmath"
)

var (
	// ErrNilGrid indicates a required grid was nil.
	ErrNilGrid = fmt.Errorf("dataset: nil grid: %w", forcerr.ErrConfiguration)
	// ErrRaggedGrid indicates rows of differing length.
	ErrRaggedGrid = fmt.Errorf("dataset: ragged grid: %w", forcerr.ErrConfiguration)
	// ErrEmptyGrid indicates a grid with no rows or no columns.
	ErrEmptyGrid = fmt.Errorf("dataset: empty grid: %w", forcerr.ErrConfiguration)
	// ErrShapeMismatch indicates grids of differing shape.
	ErrShapeMismatch = fmt.Errorf("dataset: grid shapes differ: %w", forcerr.ErrConfiguration)
	// ErrBadGeometry indicates NaN or infinite coordinate values.
	ErrBadGeometry = fmt.Errorf("dataset: non-finite grid coordinates: %w", forcerr.ErrConfiguration)
	// ErrNonUniformGrid indicates coordinate spacing that is not a uniform
	// mesh at a single step in both axes.
	ErrNonUniformGrid = fmt.Errorf("dataset: non-uniform grid spacing: %w", forcerr.ErrConfiguration)
	// ErrDegenerateGrid indicates a 1x1 grid, from which no spacing can be
	// derived.
	ErrDegenerateGrid = fmt.Errorf("dataset: cannot derive step from a 1x1 grid: %w", forcerr.ErrConfiguration)
	// ErrAbsentField indicates a request for a field the Dataset does not
	// carry.
	ErrAbsentField = fmt.Errorf("dataset: field not present: %w", forcerr.ErrConfiguration)
	// ErrUnknownField indicates a field name outside the known set.
	ErrUnknownField = fmt.Errorf("dataset: unknown field name: %w", forcerr.ErrConfiguration)
)

// spacingTol bounds the deviation tolerated when validating mesh uniformity.
const spacingTol = 1e-9

// Range is a closed [Min, Max] interval.
type Range struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Dataset is an immutable uniform-grid view of a FORC measurement. The
// zero value is not usable; construct with [New] or derive from an existing
// Dataset.
type Dataset struct {
	field        [][]float64
	reversal     [][]float64
	moment       [][]float64
	temperature  [][]float64
	distribution [][]float64
	uncertainty  [][]float64

	rows, cols int
	step       float64

	fieldRange    Range
	reversalRange Range
	dataRanges    [fieldCount]Range
}

// New builds a Dataset from matching 2-D arrays. temperature may be nil.
// New takes ownership of the slices; callers must not modify them afterwards.
//
// The coordinate grids must form a uniform mesh: every row shares one
// strictly ascending field axis, every column shares one strictly monotonic
// reversal axis, and both axes advance by the same absolute spacing. At
// least one axis needs two or more points. Violations return
// ConfigurationError-class errors.
func New(field, reversal, moment, temperature [][]float64) (*Dataset, error) {
	if field == nil || reversal == nil || moment == nil {
		return nil, ErrNilGrid
	}
	rows, cols, ok := gridmath.Shape(field)
	if !ok {
		return nil, fmt.Errorf("%w: field", ErrRaggedGrid)
	}
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyGrid
	}
	for name, g := range map[string][][]float64{"reversal": reversal, "moment": moment} {
		r, c, ok := gridmath.Shape(g)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRaggedGrid, name)
		}
		if r != rows || c != cols {
			return nil, fmt.Errorf("%w: %s is %dx%d, field is %dx%d", ErrShapeMismatch, name, r, c, rows, cols)
		}
	}
	if temperature != nil {
		r, c, ok := gridmath.Shape(temperature)
		if !ok {
			return nil, fmt.Errorf("%w: temperature", ErrRaggedGrid)
		}
		if r != rows || c != cols {
			return nil, fmt.Errorf("%w: temperature is %dx%d, field is %dx%d", ErrShapeMismatch, r, c, rows, cols)
		}
	}

	step, err := meshStep(field, reversal, rows, cols)
	if err != nil {
		return nil, err
	}

	d := &Dataset{
		field:       field,
		reversal:    reversal,
		moment:      moment,
		temperature: temperature,
		rows:        rows,
		cols:        cols,
		step:        step,
	}
	d.fieldRange = Range{Min: field[0][0], Max: field[0][cols-1]}
	lo, hi := reversal[0][0], reversal[rows-1][0]
	if lo > hi {
		lo, hi = hi, lo
	}
	d.reversalRange = Range{Min: lo, Max: hi}
	d.dataRanges[FieldMoment] = rangeOf(moment)
	if temperature != nil {
		d.dataRanges[FieldTemperature] = rangeOf(temperature)
	}
	return d, nil
}

// meshStep validates mesh geometry and returns the derived spacing.
func meshStep(field, reversal [][]float64, rows, cols int) (float64, error) {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(field[i][j]) || math.IsInf(field[i][j], 0) {
				return 0, fmt.Errorf("%w: field[%d][%d]", ErrBadGeometry, i, j)
			}
			if math.IsNaN(reversal[i][j]) || math.IsInf(reversal[i][j], 0) {
				return 0, fmt.Errorf("%w: reversal[%d][%d]", ErrBadGeometry, i, j)
			}
		}
	}
	if rows == 1 && cols == 1 {
		return 0, ErrDegenerateGrid
	}

	var step float64
	if cols >= 2 {
		step = field[0][1] - field[0][0]
		if step <= 0 {
			return 0, fmt.Errorf("%w: field axis must ascend", ErrNonUniformGrid)
		}
	} else {
		step = math.Abs(reversal[1][0] - reversal[0][0])
		if step == 0 {
			return 0, fmt.Errorf("%w: reversal axis must be strictly monotonic", ErrNonUniformGrid)
		}
	}

	// One field axis shared by every row, ascending at step.
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !gridmath.NearlyEqual(field[i][j], field[0][j], spacingTol) {
				return 0, fmt.Errorf("%w: field rows differ at [%d][%d]", ErrNonUniformGrid, i, j)
			}
			if j > 0 && !gridmath.NearlyEqual(field[i][j]-field[i][j-1], step, spacingTol) {
				return 0, fmt.Errorf("%w: field spacing at [%d][%d]", ErrNonUniformGrid, i, j)
			}
		}
	}
	// One reversal value per row, rows strictly monotonic at +-step.
	dir := 0.0
	for i := 0; i < rows; i++ {
		for j := 1; j < cols; j++ {
			if !gridmath.NearlyEqual(reversal[i][j], reversal[i][0], spacingTol) {
				return 0, fmt.Errorf("%w: reversal varies within row %d", ErrNonUniformGrid, i)
			}
		}
		if i == 0 {
			continue
		}
		diff := reversal[i][0] - reversal[i-1][0]
		if !gridmath.NearlyEqual(math.Abs(diff), step, spacingTol) {
			return 0, fmt.Errorf("%w: reversal spacing between rows %d and %d", ErrNonUniformGrid, i-1, i)
		}
		if dir == 0 {
			dir = diff
		} else if dir*diff < 0 {
			return 0, fmt.Errorf("%w: reversal axis changes direction at row %d", ErrNonUniformGrid, i)
		}
	}
	return step, nil
}

func rangeOf(g [][]float64) Range {
	min, max, ok := gridmath.MinMax(g)
	if !ok {
		return Range{Min: math.NaN(), Max: math.NaN()}
	}
	return Range{Min: min, Max: max}
}

// Shape returns the grid dimensions.
func (d *Dataset) Shape() (rows, cols int) { return d.rows, d.cols }

// Step returns the scalar grid spacing shared by both axes.
func (d *Dataset) Step() float64 { return d.step }

// FieldGrid returns the applied-field coordinate grid. Treat as read-only.
func (d *Dataset) FieldGrid() [][]float64 { return d.field }

// ReversalGrid returns the reversal-field coordinate grid. Treat as
// read-only.
func (d *Dataset) ReversalGrid() [][]float64 { return d.reversal }

// Has reports whether the Dataset carries field f.
func (d *Dataset) Has(f Field) bool { return d.grid(f) != nil }

// Data returns the live grid for f; treat it as read-only. Requesting an
// absent field is a ConfigurationError.
func (d *Dataset) Data(f Field) ([][]float64, error) {
	g := d.grid(f)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrAbsentField, f)
	}
	return g, nil
}

// DataRange returns the cached extrema of field f, ignoring NaN cells. ok
// is false when the Dataset does not carry f. A present but all-NaN field
// reports a NaN range.
func (d *Dataset) DataRange(f Field) (r Range, ok bool) {
	if d.grid(f) == nil {
		return Range{}, false
	}
	return d.dataRanges[f], true
}

// FieldRange returns the applied-field axis extent.
func (d *Dataset) FieldRange() Range { return d.fieldRange }

// ReversalRange returns the reversal-field axis extent.
func (d *Dataset) ReversalRange() Range { return d.reversalRange }

// CoercivityRange returns the extent of hc = (field - reversal)/2 over the
// grid.
func (d *Dataset) CoercivityRange() Range {
	return Range{
		Min: (d.fieldRange.Min - d.reversalRange.Max) / 2,
		Max: (d.fieldRange.Max - d.reversalRange.Min) / 2,
	}
}

// BiasRange returns the extent of hb = (field + reversal)/2 over the grid.
func (d *Dataset) BiasRange() Range {
	return Range{
		Min: (d.fieldRange.Min + d.reversalRange.Min) / 2,
		Max: (d.fieldRange.Max + d.reversalRange.Max) / 2,
	}
}

// WithMoment derives a new Dataset carrying moment in place of the current
// moment grid. Distribution grids are dropped: they describe the old moment.
// Takes ownership of moment.
func (d *Dataset) WithMoment(moment [][]float64) (*Dataset, error) {
	return New(gridmath.Clone(d.field), gridmath.Clone(d.reversal), moment, cloneOrNil(d.temperature))
}

// WithDistribution derives a new Dataset carrying the given distribution
// grid and, when non-nil, its per-cell standard error. Takes ownership of
// both.
func (d *Dataset) WithDistribution(rho, sigma [][]float64) (*Dataset, error) {
	if rho == nil {
		return nil, fmt.Errorf("%w: distribution", ErrNilGrid)
	}
	for name, g := range map[string][][]float64{"distribution": rho, "uncertainty": sigma} {
		if g == nil {
			continue
		}
		r, c, ok := gridmath.Shape(g)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrRaggedGrid, name)
		}
		if r != d.rows || c != d.cols {
			return nil, fmt.Errorf("%w: %s is %dx%d, grid is %dx%d", ErrShapeMismatch, name, r, c, d.rows, d.cols)
		}
	}
	nd, err := New(gridmath.Clone(d.field), gridmath.Clone(d.reversal), gridmath.Clone(d.moment), cloneOrNil(d.temperature))
	if err != nil {
		return nil, err
	}
	nd.distribution = rho
	nd.uncertainty = sigma
	nd.dataRanges[FieldDistribution] = rangeOf(rho)
	if sigma != nil {
		nd.dataRanges[FieldDistributionUncertainty] = rangeOf(sigma)
	}
	return nd, nil
}

func (d *Dataset) grid(f Field) [][]float64 {
	switch f {
	case FieldMoment:
		return d.moment
	case FieldDistribution:
		return d.distribution
	case FieldDistributionUncertainty:
		return d.uncertainty
	case FieldTemperature:
		return d.temperature
	default:
		return nil
	}
}

func cloneOrNil(g [][]float64) [][]float64 {
	if g == nil {
		return nil
	}
	return gridmath.Clone(g)
}

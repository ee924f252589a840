// Package transform applies moment-level corrections between gridding and
// distribution computation: removal of a field-proportional background and
// min-max normalization. Both operate on the full grid, skip missing cells,
// and return new datasets.
package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/thomasrockhu/goforc/forc/dataset"
	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/internal/gridmath"
)

var (
	// ErrAmbiguousSlope indicates that both a slope value and a
	// saturation field were supplied.
	ErrAmbiguousSlope = fmt.Errorf("transform: slope value and saturation field are mutually exclusive: %w", forcerr.ErrConfiguration)
	// ErrBadCoefficient indicates an infinite slope value.
	ErrBadCoefficient = fmt.Errorf("transform: slope value must be finite: %w", forcerr.ErrConfiguration)
	// ErrBadSaturation indicates an infinite saturation field.
	ErrBadSaturation = fmt.Errorf("transform: saturation field must be finite: %w", forcerr.ErrConfiguration)
	// ErrSlopeFit indicates too few valid samples to estimate a slope.
	ErrSlopeFit = fmt.Errorf("transform: too few valid samples for the slope fit: %w", forcerr.ErrNumerical)
	// ErrFlatMoment indicates a moment grid without a usable range.
	ErrFlatMoment = fmt.Errorf("transform: moment grid has no usable range: %w", forcerr.ErrNumerical)
)

// SlopeOptions configures SlopeCorrect. Value and HSat are NaN-sentinel
// optionals; setting both is an error.
type SlopeOptions struct {
	// Value is the background coefficient to subtract. NaN estimates it
	// from the data.
	Value float64
	// HSat is the saturation field. When set, the estimate averages the
	// moment across curves at fields beyond HSat; when NaN, it fits the
	// outermost reversal curve instead.
	HSat float64
}

// DefaultSlopeOptions returns options that estimate the slope from the
// outermost reversal curve.
func DefaultSlopeOptions() SlopeOptions {
	return SlopeOptions{Value: math.NaN(), HSat: math.NaN()}
}

// SlopeCorrect removes a field-proportional background from the moment
// grid: m' = m - slope*h. The coefficient is taken from opts.Value, or
// estimated from the saturated region beyond opts.HSat, or, with neither
// set, from a line fit through the finite samples of the
// highest-reversal-field curve. The result is a new dataset; derived
// distribution grids are not carried over.
func SlopeCorrect(d *dataset.Dataset, opts SlopeOptions) (*dataset.Dataset, error) {
	haveValue := !math.IsNaN(opts.Value)
	haveSat := !math.IsNaN(opts.HSat)
	if haveValue && haveSat {
		return nil, ErrAmbiguousSlope
	}
	if haveValue && math.IsInf(opts.Value, 0) {
		return nil, fmt.Errorf("%w: %g", ErrBadCoefficient, opts.Value)
	}
	if haveSat && math.IsInf(opts.HSat, 0) {
		return nil, fmt.Errorf("%w: %g", ErrBadSaturation, opts.HSat)
	}

	moment, err := d.Data(dataset.FieldMoment)
	if err != nil {
		return nil, err
	}
	field := d.FieldGrid()

	slope := opts.Value
	switch {
	case haveValue:
	case haveSat:
		slope, err = saturationSlope(field, moment, opts.HSat)
	default:
		rows, _ := d.Shape()
		slope, err = curveSlope(field[rows-1], moment[rows-1])
	}
	if err != nil {
		return nil, err
	}

	rows, cols := d.Shape()
	out := gridmath.Alloc(rows, cols)
	for i := range out {
		for j := range out[i] {
			out[i][j] = moment[i][j] - slope*field[i][j]
		}
	}
	return d.WithMoment(out)
}

// curveSlope fits a line through the finite samples of a single curve and
// returns its slope.
func curveSlope(field, moment []float64) (float64, error) {
	xs := make([]float64, 0, len(moment))
	ys := make([]float64, 0, len(moment))
	for j, v := range moment {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xs = append(xs, field[j])
		ys = append(ys, v)
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("%w: outermost curve has %d finite samples", ErrSlopeFit, len(xs))
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta, nil
}

// saturationSlope averages the moment across curves at every field column
// beyond hSat and fits a line through the averages.
func saturationSlope(field, moment [][]float64, hSat float64) (float64, error) {
	cols := len(field[0])
	xs := make([]float64, 0, cols)
	ys := make([]float64, 0, cols)
	for j := 0; j < cols; j++ {
		// The field grid repeats one axis down every column.
		if field[0][j] <= hSat {
			continue
		}
		var sum float64
		var n int
		for i := range moment {
			if v := moment[i][j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		xs = append(xs, field[0][j])
		ys = append(ys, sum/float64(n))
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("%w: %d usable field columns beyond %g", ErrSlopeFit, len(xs), hSat)
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta, nil
}

// Normalize rescales the moment grid to [-1, 1] by the min-max rule
// m' = 1 - 2*(max-m)/(max-min), skipping missing cells for the extrema.
// Missing cells stay missing. The result is a new dataset; derived
// distribution grids are not carried over.
func Normalize(d *dataset.Dataset) (*dataset.Dataset, error) {
	moment, err := d.Data(dataset.FieldMoment)
	if err != nil {
		return nil, err
	}

	lo, hi, ok := gridmath.MinMax(moment)
	if !ok {
		return nil, fmt.Errorf("%w: no finite moment", ErrFlatMoment)
	}
	if hi == lo {
		return nil, fmt.Errorf("%w: min equals max at %g", ErrFlatMoment, hi)
	}

	span := hi - lo
	rows, cols := d.Shape()
	out := gridmath.Alloc(rows, cols)
	for i := range out {
		for j := range out[i] {
			out[i][j] = 1 - 2*(hi-moment[i][j])/span
		}
	}
	return d.WithMoment(out)
}

package pmc

import (
	"fmt"

	"github.com/thomasrockhu/goforc/forc/forcerr"
)

// ErrStepUndefined indicates a file from which no field step can be
// estimated: no curve has two or more samples, or the mean spacing is not a
// positive number.
var ErrStepUndefined = fmt.Errorf("pmc: cannot estimate field step: %w", forcerr.ErrDataFormat)

// TotalSamples returns the number of measured samples across all curves.
func (cs *CurveSet) TotalSamples() int {
	n := 0
	for _, c := range cs.Curves {
		n += len(c.Field)
	}
	return n
}

// Fields returns the per-curve applied-field slices. The returned slices
// are live views into the CurveSet.
func (cs *CurveSet) Fields() [][]float64 {
	out := make([][]float64, len(cs.Curves))
	for i, c := range cs.Curves {
		out[i] = c.Field
	}
	return out
}

// ReversalFields returns the per-curve reversal-field slices (each constant
// within a curve). Live views, like Fields.
func (cs *CurveSet) ReversalFields() [][]float64 {
	out := make([][]float64, len(cs.Curves))
	for i, c := range cs.Curves {
		out[i] = c.ReversalField
	}
	return out
}

// Moments returns the per-curve moment slices. Live views, like Fields.
func (cs *CurveSet) Moments() [][]float64 {
	out := make([][]float64, len(cs.Curves))
	for i, c := range cs.Curves {
		out[i] = c.Moment
	}
	return out
}

// Temperatures returns the per-curve temperature slices, or nil when the
// file carried no temperature column. Live views, like Fields.
func (cs *CurveSet) Temperatures() [][]float64 {
	if !cs.HasTemperature {
		return nil
	}
	out := make([][]float64, len(cs.Curves))
	for i, c := range cs.Curves {
		out[i] = c.Temperature
	}
	return out
}

// EstimateStep returns the grid spacing implied by the measurements: the
// mean over curves of the mean first difference of applied field. Curves
// with fewer than two samples contribute nothing.
func (cs *CurveSet) EstimateStep() (float64, error) {
	var total float64
	count := 0
	for _, c := range cs.Curves {
		n := len(c.Field)
		if n < 2 {
			continue
		}
		var sum float64
		for j := 1; j < n; j++ {
			sum += c.Field[j] - c.Field[j-1]
		}
		total += sum / float64(n-1)
		count++
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: no curve has two samples", ErrStepUndefined)
	}
	step := total / float64(count)
	if !(step > 0) {
		return 0, fmt.Errorf("%w: mean spacing %v", ErrStepUndefined, step)
	}
	return step, nil
}

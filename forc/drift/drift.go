// Package drift removes slow instrument drift from a family of reversal
// curves.
//
// Instruments record one drift sample per curve at a fixed calibration
// field. The sequence of drift samples is smoothed with a centered moving
// average, thinned, and bridged by a cubic spline; the spline's deviation
// from the sequence mean is the per-curve drift estimate, subtracted from
// every moment of the corresponding curve.
package drift

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/internal/gridmath"
)

var (
	// ErrBadRadius indicates a negative smoothing radius.
	ErrBadRadius = fmt.Errorf("drift: radius must be >= 0: %w", forcerr.ErrConfiguration)
	// ErrBadDensity indicates a subsampling density below one.
	ErrBadDensity = fmt.Errorf("drift: density must be >= 1: %w", forcerr.ErrConfiguration)
	// ErrLengthMismatch indicates the drift sequence and curve count differ.
	ErrLengthMismatch = fmt.Errorf("drift: one drift sample per curve required: %w", forcerr.ErrConfiguration)
	// ErrTooFewPoints indicates too few control points remain after
	// thinning for a cubic spline.
	ErrTooFewPoints = fmt.Errorf("drift: spline needs at least four control points: %w", forcerr.ErrNumerical)
)

// Correct returns drift-corrected copies of the per-curve moment slices and
// of the drift sequence itself. radius sets the moving-average half-width
// (window 2*radius+1, edges replicated), density the thinning stride of the
// spline control points. Inputs are never modified. A single curve is
// returned unchanged: there is no drift trend to fit.
func Correct(moments [][]float64, drift []float64, radius, density int) ([][]float64, []float64, error) {
	if radius < 0 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrBadRadius, radius)
	}
	if density < 1 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrBadDensity, density)
	}
	if len(moments) != len(drift) {
		return nil, nil, fmt.Errorf("%w: %d curves, %d drift samples", ErrLengthMismatch, len(moments), len(drift))
	}

	outMoments := gridmath.Clone(moments)
	outDrift := make([]float64, len(drift))
	copy(outDrift, drift)
	if len(drift) <= 1 {
		return outMoments, outDrift, nil
	}

	smoothed := movingAverage(drift, radius)
	baseline := stat.Mean(drift, nil)
	xs, ys := thin(smoothed, density)
	if len(xs) < 4 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(xs))
	}

	var spline interp.NotAKnotCubic
	if err := spline.Fit(xs, ys); err != nil {
		return nil, nil, fmt.Errorf("drift: spline fit (%v): %w", err, forcerr.ErrNumerical)
	}

	for i := range outDrift {
		estimate := spline.Predict(float64(i)) - baseline
		outDrift[i] -= estimate
		for j := range outMoments[i] {
			outMoments[i][j] -= estimate
		}
	}
	return outMoments, outDrift, nil
}

// movingAverage smooths x with a centered boxcar of width 2*radius+1,
// replicating the edge values beyond either end.
func movingAverage(x []float64, radius int) []float64 {
	n := len(x)
	out := make([]float64, n)
	width := float64(2*radius + 1)
	for i := range out {
		var sum float64
		for k := -radius; k <= radius; k++ {
			idx := i + k
			if idx < 0 {
				idx = 0
			} else if idx >= n {
				idx = n - 1
			}
			sum += x[idx]
		}
		out[i] = sum / width
	}
	return out
}

// thin picks every density-th sample of x as spline control points, always
// keeping the final sample so the spline spans the whole sequence.
func thin(x []float64, density int) (xs, ys []float64) {
	for i := 0; i < len(x); i += density {
		xs = append(xs, float64(i))
		ys = append(ys, x[i])
	}
	last := len(x) - 1
	if xs[len(xs)-1] != float64(last) {
		xs = append(xs, float64(last))
		ys = append(ys, x[last])
	}
	return xs, ys
}

// Package gridmath provides small NaN-aware primitives for the 2-D grids
// used across the goforc packages. Missing values are NaN; reductions here
// either skip them (MinMax) or propagate them (Sum), as documented per
// function.
package gridmath

import "math"

// Alloc returns a rows x cols grid initialised to zero.
// Panics if either dimension is negative.
func Alloc(rows, cols int) [][]float64 {
	if rows < 0 || cols < 0 {
		panic("gridmath: negative dimension")
	}
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

// Fill sets every element of g to v.
func Fill(g [][]float64, v float64) {
	for i := range g {
		for j := range g[i] {
			g[i][j] = v
		}
	}
}

// Clone returns a deep copy of g. Rows may differ in length.
func Clone(g [][]float64) [][]float64 {
	out := make([][]float64, len(g))
	for i := range g {
		out[i] = make([]float64, len(g[i]))
		copy(out[i], g[i])
	}
	return out
}

// Shape returns the dimensions of g. ok is false when the rows are ragged.
// An empty grid has shape (0, 0).
func Shape(g [][]float64) (rows, cols int, ok bool) {
	rows = len(g)
	if rows == 0 {
		return 0, 0, true
	}
	cols = len(g[0])
	for _, row := range g[1:] {
		if len(row) != cols {
			return rows, cols, false
		}
	}
	return rows, cols, true
}

// Sum returns the sum of all elements in x. NaN elements propagate into the
// result. Returns 0 for an empty slice.
func Sum(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}
	return s
}

// MinMax returns the extrema of g ignoring NaN elements. Rows may differ in
// length. ok is false when g holds no non-NaN element.
func MinMax(g [][]float64) (min, max float64, ok bool) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for i := range g {
		for _, v := range g[i] {
			if math.IsNaN(v) {
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
			ok = true
		}
	}
	if !ok {
		return math.NaN(), math.NaN(), false
	}
	return min, max, true
}

// FirstValid returns the index of the first non-NaN element of x, or -1 when
// every element is NaN.
func FirstValid(x []float64) int {
	for i, v := range x {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

// NearlyEqual reports whether a and b are equal within eps, comparing
// relatively for large magnitudes and absolutely near zero.
func NearlyEqual(a, b, eps float64) bool {
	if a == b {
		return true
	}
	diff := math.Abs(a - b)
	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest <= 1 {
		return diff <= eps
	}
	return diff <= eps*largest
}

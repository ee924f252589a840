// Package grid computes summary statistics over 2-D measurement grids in
// which NaN marks missing cells. Missing cells count toward coverage but
// never toward the moments.
package grid

import (
	"fmt"
	"math"

	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/internal/gridmath"
)

// ErrRaggedGrid indicates rows of differing length.
var ErrRaggedGrid = fmt.Errorf("grid: rows differ in length: %w", forcerr.ErrConfiguration)

// Stats holds grid summary statistics. Positions are row-major flat
// indices into the grid.
type Stats struct {
	Cells    int     // total cells, missing included
	Count    int     // finite cells
	Coverage float64 // Count / Cells
	Min      float64
	MinPos   int
	Max      float64
	MaxPos   int
	Range    float64 // Max - Min
	Mean     float64
	Variance float64 // population variance
	StdDev   float64
	RMS      float64
}

// emptyStats returns the statistics of a grid without finite cells.
func emptyStats(cells int) Stats {
	return Stats{
		Cells:    cells,
		MinPos:   -1,
		MaxPos:   -1,
		Min:      math.NaN(),
		Max:      math.NaN(),
		Range:    math.NaN(),
		Mean:     math.NaN(),
		Variance: math.NaN(),
		StdDev:   math.NaN(),
		RMS:      math.NaN(),
	}
}

// Calculate computes all statistics of a rectangular grid in a single pass
// using Welford's online algorithm for a numerically stable variance.
func Calculate(g [][]float64) (Stats, error) {
	if _, _, ok := gridmath.Shape(g); !ok {
		return Stats{}, ErrRaggedGrid
	}

	var acc Accumulator
	for _, row := range g {
		acc.Update(row)
	}

	return acc.Result(), nil
}

// Accumulator builds grid statistics incrementally across blocks of cells.
// It processes each cell individually to guarantee bit-for-bit identical
// results with [Calculate]. The zero value is ready to use.
type Accumulator struct {
	cells   int
	count   int
	mean    float64
	m2      float64
	sumSq   float64
	minVal  float64
	minPos  int
	maxVal  float64
	maxPos  int
	hasData bool
}

// NewAccumulator creates a new Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Update adds a block of cells to the running statistics. NaN cells advance
// the position but leave the moments untouched.
func (a *Accumulator) Update(cells []float64) {
	for _, x := range cells {
		a.cells++
		if math.IsNaN(x) {
			continue
		}

		a.count++
		ni := float64(a.count)

		// Welford update.
		delta := x - a.mean
		deltaN := delta / ni
		a.m2 += delta * deltaN * float64(a.count-1)
		a.mean += deltaN

		// Energy (sum of squares).
		a.sumSq += x * x

		// Min / Max.
		if !a.hasData {
			a.minVal = x
			a.minPos = a.cells - 1
			a.maxVal = x
			a.maxPos = a.cells - 1
			a.hasData = true

			continue
		}

		if x < a.minVal {
			a.minVal = x
			a.minPos = a.cells - 1
		}

		if x > a.maxVal {
			a.maxVal = x
			a.maxPos = a.cells - 1
		}
	}
}

// Result computes the final statistics from accumulated cells.
func (a *Accumulator) Result() Stats {
	if a.count == 0 {
		return emptyStats(a.cells)
	}

	nf := float64(a.count)
	variance := a.m2 / nf

	return Stats{
		Cells:    a.cells,
		Count:    a.count,
		Coverage: nf / float64(a.cells),
		Min:      a.minVal,
		MinPos:   a.minPos,
		Max:      a.maxVal,
		MaxPos:   a.maxPos,
		Range:    a.maxVal - a.minVal,
		Mean:     a.mean,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		RMS:      math.Sqrt(a.sumSq / nf),
	}
}

// Reset clears all accumulated cells, allowing the Accumulator to be reused.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

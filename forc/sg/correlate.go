package sg

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/internal/gridmath"
)

var (
	// ErrRaggedGrid indicates input rows of differing length.
	ErrRaggedGrid = fmt.Errorf("sg: grid rows differ in length: %w", forcerr.ErrConfiguration)
	// ErrGridTooSmall indicates an input smaller than the kernel in either
	// dimension.
	ErrGridTooSmall = fmt.Errorf("sg: grid smaller than the kernel: %w", forcerr.ErrNumerical)
)

// Correlate applies the kernel to grid and returns the raw mixed
// coefficient at every interior cell. Border cells within sf of any edge,
// and cells whose window touches a NaN, are NaN in the result.
func (k *Kernel) Correlate(grid [][]float64) ([][]float64, error) {
	rows, cols, err := k.checkGrid(grid)
	if err != nil {
		return nil, err
	}

	n := k.Size()
	out := gridmath.Alloc(rows, cols)
	gridmath.Fill(out, math.NaN())

	scratch := make([]float64, n)
	for i := k.sf; i < rows-k.sf; i++ {
		for j := k.sf; j < cols-k.sf; j++ {
			acc := 0.0
			for m := 0; m < n; m++ {
				vecmath.MulBlock(scratch, grid[i-k.sf+m][j-k.sf:j-k.sf+n], k.weights[m])
				acc += floats.Sum(scratch)
			}
			out[i][j] = acc
		}
	}
	return out, nil
}

// CorrelateWithUncertainty is Correlate plus the standard error of the
// extracted coefficient per cell, from the residuals of each window's
// least-squares fit.
func (k *Kernel) CorrelateWithUncertainty(grid [][]float64) (coeff, stderr [][]float64, err error) {
	rows, cols, err := k.checkGrid(grid)
	if err != nil {
		return nil, nil, err
	}

	n := k.Size()
	size := n * n
	coeff = gridmath.Alloc(rows, cols)
	stderr = gridmath.Alloc(rows, cols)
	gridmath.Fill(coeff, math.NaN())
	gridmath.Fill(stderr, math.NaN())

	window := make([]float64, size)
	for i := k.sf; i < rows-k.sf; i++ {
		for j := k.sf; j < cols-k.sf; j++ {
			complete := true
			for m := 0; m < n; m++ {
				copy(window[m*n:(m+1)*n], grid[i-k.sf+m][j-k.sf:j-k.sf+n])
			}
			for _, v := range window {
				if math.IsNaN(v) {
					complete = false
					break
				}
			}
			if !complete {
				continue
			}

			coeff[i][j] = floats.Dot(window, k.flat)

			rss := 0.0
			for p := 0; p < size; p++ {
				r := window[p] - floats.Dot(k.hat.RawRowView(p), window)
				rss += r * r
			}
			stderr[i][j] = math.Sqrt(rss/float64(k.dof)) * k.norm
		}
	}
	return coeff, stderr, nil
}

func (k *Kernel) checkGrid(grid [][]float64) (rows, cols int, err error) {
	rows, cols, ok := gridmath.Shape(grid)
	if !ok {
		return 0, 0, ErrRaggedGrid
	}
	if n := k.Size(); rows < n || cols < n {
		return 0, 0, fmt.Errorf("%w: %dx%d input, %dx%d kernel", ErrGridTooSmall, rows, cols, n, n)
	}
	return rows, cols, nil
}

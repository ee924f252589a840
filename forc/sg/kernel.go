package sg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/internal/gridmath"
)

var (
	// ErrBadSmoothing indicates a smoothing factor below 1.
	ErrBadSmoothing = fmt.Errorf("sg: smoothing factor must be at least 1: %w", forcerr.ErrConfiguration)
	// ErrBadStep indicates a non-positive or non-finite grid step.
	ErrBadStep = fmt.Errorf("sg: step must be positive and finite: %w", forcerr.ErrConfiguration)
	// ErrKernelFactorization indicates that the design matrix could not
	// be decomposed.
	ErrKernelFactorization = fmt.Errorf("sg: kernel factorization failed: %w", forcerr.ErrNumerical)
)

// pinvCutoff relative to the largest singular value, matching the common
// pseudo-inverse truncation threshold.
const pinvCutoff = 1e-15

// Kernel is the precomputed Savitzky-Golay regression for one smoothing
// factor and grid step. A Kernel is immutable and safe for concurrent
// use.
type Kernel struct {
	sf      int
	step    float64
	weights [][]float64 // (2sf+1) x (2sf+1), the xy coefficient row
	flat    []float64   // row-major weights
	hat     *mat.Dense  // maps a window to its fitted values
	norm    float64     // Frobenius norm of weights
	dof     int         // window size minus fitted parameters
}

// NewKernel builds the kernel for smoothing factor sf on a grid of
// spacing step.
func NewKernel(sf int, step float64) (*Kernel, error) {
	if sf < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadSmoothing, sf)
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrBadStep, step)
	}

	n := 2*sf + 1
	k := n * n

	// Local offsets run from +sf*step down to -sf*step along both axes.
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = float64(sf-i) * step
	}

	design := mat.NewDense(k, 6, nil)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			x, y := axis[c], axis[r]
			p := r*n + c
			design.Set(p, 0, 1)
			design.Set(p, 1, x)
			design.Set(p, 2, x*x)
			design.Set(p, 3, y)
			design.Set(p, 4, y*y)
			design.Set(p, 5, x*y)
		}
	}

	pinv, err := pseudoInverse(design)
	if err != nil {
		return nil, err
	}

	flat := mat.Row(nil, 5, pinv)
	weights := gridmath.Alloc(n, n)
	norm := 0.0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			w := flat[r*n+c]
			weights[r][c] = w
			norm += w * w
		}
	}

	var hat mat.Dense
	hat.Mul(design, pinv)

	return &Kernel{
		sf:      sf,
		step:    step,
		weights: weights,
		flat:    flat,
		hat:     &hat,
		norm:    math.Sqrt(norm),
		dof:     k - 6,
	}, nil
}

// SF returns the smoothing factor the kernel was built for.
func (k *Kernel) SF() int { return k.sf }

// Step returns the grid spacing the kernel was built for.
func (k *Kernel) Step() float64 { return k.step }

// Size returns the kernel side length, 2*sf+1.
func (k *Kernel) Size() int { return 2*k.sf + 1 }

// Weights returns a copy of the kernel coefficients.
func (k *Kernel) Weights() [][]float64 { return gridmath.Clone(k.weights) }

// pseudoInverse computes the Moore-Penrose pseudo-inverse of a via a thin
// SVD, truncating singular values below pinvCutoff of the largest.
func pseudoInverse(a *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, ErrKernelFactorization
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	cut := pinvCutoff * s[0]
	inv := make([]float64, len(s))
	for i, sv := range s {
		if sv > cut {
			inv[i] = 1 / sv
		}
	}

	rows, cols := a.Dims()
	var scaled mat.Dense
	scaled.Mul(&v, mat.NewDiagDense(len(s), inv))
	pinv := mat.NewDense(cols, rows, nil)
	pinv.Mul(&scaled, u.T())
	return pinv, nil
}

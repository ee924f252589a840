package interp

import (
	"container/heap"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/thomasrockhu/goforc/forc/dataset"
	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/internal/gridmath"
)

var (
	// ErrUnknownMethod indicates a method name or value outside the known
	// set.
	ErrUnknownMethod = fmt.Errorf("interp: unknown method: %w", forcerr.ErrConfiguration)
	// ErrBadStep indicates a non-positive or non-finite grid step.
	ErrBadStep = fmt.Errorf("interp: step must be positive and finite: %w", forcerr.ErrConfiguration)
	// ErrShapeMismatch indicates per-curve slices of differing length.
	ErrShapeMismatch = fmt.Errorf("interp: per-curve slice lengths differ: %w", forcerr.ErrConfiguration)
	// ErrTooFewSamples indicates fewer usable scattered samples than the
	// method needs.
	ErrTooFewSamples = fmt.Errorf("interp: too few samples: %w", forcerr.ErrNumerical)
	// ErrDegenerateDomain indicates scattered samples that collapse to a
	// single grid node.
	ErrDegenerateDomain = fmt.Errorf("interp: scattered domain collapses to a point: %w", forcerr.ErrNumerical)
	// ErrSingularFit indicates a local least-squares system without a
	// stable solution, typically collinear samples.
	ErrSingularFit = fmt.Errorf("interp: local fit is singular: %w", forcerr.ErrNumerical)
)

// Grid interpolates scattered per-curve samples onto the uniform mesh
// spanning their extents at step. field, reversal, and moment hold one
// slice per curve; temperature may be nil. Cells below the reversal field
// are masked to NaN in the result's moment grid.
func Grid(field, reversal, moment, temperature [][]float64, step float64, method Method) (*dataset.Dataset, error) {
	if method < 0 || method >= methodCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(method))
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrBadStep, step)
	}
	if len(reversal) != len(field) || len(moment) != len(field) || (temperature != nil && len(temperature) != len(field)) {
		return nil, fmt.Errorf("%w: %d field curves, %d reversal, %d moment", ErrShapeMismatch, len(field), len(reversal), len(moment))
	}
	for i := range field {
		if len(reversal[i]) != len(field[i]) || len(moment[i]) != len(field[i]) || (temperature != nil && len(temperature[i]) != len(field[i])) {
			return nil, fmt.Errorf("%w: curve %d", ErrShapeMismatch, i)
		}
	}

	// Flatten to scattered samples, dropping entries with unusable
	// coordinates. Value NaNs stay: they propagate like any measurement.
	var (
		pts samplePoints
		ms  []float64
		ts  []float64
	)
	for i := range field {
		for j := range field[i] {
			h, hr := field[i][j], reversal[i][j]
			if math.IsNaN(h) || math.IsInf(h, 0) || math.IsNaN(hr) || math.IsInf(hr, 0) {
				continue
			}
			pts = append(pts, samplePoint{h: h, hr: hr, idx: len(ms)})
			ms = append(ms, moment[i][j])
			if temperature != nil {
				ts = append(ts, temperature[i][j])
			}
		}
	}
	if len(pts) < method.MinPoints() {
		return nil, fmt.Errorf("%w: have %d, need %d for %s", ErrTooFewSamples, len(pts), method.MinPoints(), method)
	}

	hMin, hMax := pts[0].h, pts[0].h
	hrMin, hrMax := pts[0].hr, pts[0].hr
	for _, p := range pts[1:] {
		hMin = math.Min(hMin, p.h)
		hMax = math.Max(hMax, p.h)
		hrMin = math.Min(hrMin, p.hr)
		hrMax = math.Max(hrMax, p.hr)
	}
	hAxis := axis(hMin, hMax, step)
	hrAxis := axis(hrMin, hrMax, step)
	if len(hAxis) == 1 && len(hrAxis) == 1 {
		return nil, ErrDegenerateDomain
	}

	e := &engine{
		tree:    kdtree.New(pts, true),
		total:   len(pts),
		moments: ms,
		temps:   ts,
		method:  method,
		step:    step,
	}
	switch method {
	case Linear:
		e.neighbors, e.terms = linearNeighbors, 3
	case Cubic:
		e.neighbors, e.terms = cubicNeighbors, 6
	}

	rows, cols := len(hrAxis), len(hAxis)
	fieldGrid := gridmath.Alloc(rows, cols)
	reversalGrid := gridmath.Alloc(rows, cols)
	momentGrid := gridmath.Alloc(rows, cols)
	var temperatureGrid [][]float64
	if ts != nil {
		temperatureGrid = gridmath.Alloc(rows, cols)
	}
	for i, hr := range hrAxis {
		for j, h := range hAxis {
			fieldGrid[i][j] = h
			reversalGrid[i][j] = hr
			mv, tv, err := e.cell(h, hr)
			if err != nil {
				return nil, err
			}
			momentGrid[i][j] = mv
			if temperatureGrid != nil {
				temperatureGrid[i][j] = tv
			}
		}
	}

	dataset.ApplyMask(momentGrid, fieldGrid, reversalGrid, step)
	return dataset.New(fieldGrid, reversalGrid, momentGrid, temperatureGrid)
}

// axis returns the inclusive arithmetic progression from min to max at
// step.
func axis(min, max, step float64) []float64 {
	n := int(math.Floor((max-min)/step+1e-9)) + 1
	if n < 2 {
		return []float64{min}
	}
	dst := make([]float64, n)
	floats.Span(dst, min, min+float64(n-1)*step)
	return dst
}

type engine struct {
	tree      *kdtree.Tree
	total     int
	moments   []float64
	temps     []float64
	method    Method
	step      float64
	neighbors int
	terms     int
}

// cell evaluates the moment (and temperature, when present) at one mesh
// node.
func (e *engine) cell(h, hr float64) (mv, tv float64, err error) {
	q := samplePoint{h: h, hr: hr, idx: -1}
	if e.method == Nearest {
		got, _ := e.tree.Nearest(q)
		p := got.(samplePoint)
		mv = e.moments[p.idx]
		if e.temps != nil {
			tv = e.temps[p.idx]
		}
		return mv, tv, nil
	}
	return e.localFit(q)
}

// localFit solves the moving least-squares system over the nearest
// neighbors of q. Coordinates are centered on q and scaled by the grid
// step to keep the system well conditioned; the fitted value at q is the
// intercept coefficient.
func (e *engine) localFit(q samplePoint) (mv, tv float64, err error) {
	nb := e.gather(q)
	n := len(nb)

	a := mat.NewDense(n, e.terms, nil)
	bm := mat.NewVecDense(n, nil)
	var bt *mat.VecDense
	if e.temps != nil {
		bt = mat.NewVecDense(n, nil)
	}
	for i, p := range nb {
		x := (p.h - q.h) / e.step
		y := (p.hr - q.hr) / e.step
		a.Set(i, 0, 1)
		a.Set(i, 1, x)
		a.Set(i, 2, y)
		if e.terms == 6 {
			a.Set(i, 3, x*x)
			a.Set(i, 4, y*y)
			a.Set(i, 5, x*y)
		}
		bm.SetVec(i, e.moments[p.idx])
		if bt != nil {
			bt.SetVec(i, e.temps[p.idx])
		}
	}

	var qr mat.QR
	qr.Factorize(a)
	coeffs := mat.NewDense(e.terms, 1, nil)
	if err := qr.SolveTo(coeffs, false, bm); err != nil {
		return 0, 0, fmt.Errorf("%w: cell (%g, %g): %v", ErrSingularFit, q.h, q.hr, err)
	}
	mv = coeffs.At(0, 0)
	if bt != nil {
		if err := qr.SolveTo(coeffs, false, bt); err != nil {
			return 0, 0, fmt.Errorf("%w: cell (%g, %g): %v", ErrSingularFit, q.h, q.hr, err)
		}
		tv = coeffs.At(0, 0)
	}
	return mv, tv, nil
}

// gather returns the nearest neighbors of q, at least e.terms of them and
// up to e.neighbors.
func (e *engine) gather(q samplePoint) []samplePoint {
	k := e.neighbors
	if k > e.total {
		k = e.total
	}
	keeper := kdtree.NewNKeeper(k)
	e.tree.NearestSet(keeper, q)
	out := make([]samplePoint, 0, k)
	for keeper.Len() > 0 {
		item := heap.Pop(keeper).(kdtree.ComparableDist)
		p, ok := item.Comparable.(samplePoint)
		if !ok {
			continue // capacity sentinel of an underfilled keeper
		}
		out = append(out, p)
	}
	return out
}

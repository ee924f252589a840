package interp_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrockhu/goforc/forc/dataset"
	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/forc/interp"
)

// family builds a reversal-curve staircase whose samples sit on exact mesh
// nodes: curve i reverses at hMax-(i+1)*step and sweeps back to hMax.
// moment is evaluated at each sample; temperature may be nil.
func family(nCurves int, hMax, step float64, moment, temperature func(h, hr float64) float64) (f, r, m, tp [][]float64) {
	f = make([][]float64, nCurves)
	r = make([][]float64, nCurves)
	m = make([][]float64, nCurves)
	if temperature != nil {
		tp = make([][]float64, nCurves)
	}
	for i := 0; i < nCurves; i++ {
		hr := hMax - float64(i+1)*step
		n := i + 2
		f[i] = make([]float64, n)
		r[i] = make([]float64, n)
		m[i] = make([]float64, n)
		if temperature != nil {
			tp[i] = make([]float64, n)
		}
		for j := 0; j < n; j++ {
			h := hr + float64(j)*step
			f[i][j] = h
			r[i][j] = hr
			m[i][j] = moment(h, hr)
			if temperature != nil {
				tp[i][j] = temperature(h, hr)
			}
		}
	}
	return f, r, m, tp
}

func TestGridNearestReproducesSamples(t *testing.T) {
	model := func(h, hr float64) float64 { return math.Tanh(2*h) - 0.1*hr }
	f, r, m, _ := family(4, 1, 0.5, model, nil)

	ds, err := interp.Grid(f, r, m, nil, 0.5, interp.Nearest)
	require.NoError(t, err, "nearest gridding should succeed")

	rows, cols := ds.Shape()
	assert.Equal(t, 4, rows, "one row per distinct reversal field")
	assert.Equal(t, 5, cols, "inclusive field axis over the sample extent")
	assert.InDelta(t, 0.5, ds.Step(), 1e-12, "step is taken verbatim")
	assert.False(t, ds.Has(dataset.FieldTemperature), "no temperature input, no temperature grid")

	grid, err := ds.Data(dataset.FieldMoment)
	require.NoError(t, err)
	fg, rg := ds.FieldGrid(), ds.ReversalGrid()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			h, hr := fg[i][j], rg[i][j]
			if h < hr-0.25 {
				assert.True(t, math.IsNaN(grid[i][j]), "cell (%d,%d) below the reversal field must be masked", i, j)
				continue
			}
			assert.InDelta(t, model(h, hr), grid[i][j], 1e-9, "cell (%d,%d) must carry its own sample", i, j)
		}
	}
}

func TestGridLinearExactOnPlane(t *testing.T) {
	plane := func(h, hr float64) float64 { return 2 + 0.5*h - 0.25*hr }
	tempPlane := func(h, hr float64) float64 { return 300 + h + 2*hr }
	f, r, m, tp := family(5, 1, 0.25, plane, tempPlane)

	ds, err := interp.Grid(f, r, m, tp, 0.25, interp.Linear)
	require.NoError(t, err, "linear gridding should succeed")

	moment, err := ds.Data(dataset.FieldMoment)
	require.NoError(t, err)
	temperature, err := ds.Data(dataset.FieldTemperature)
	require.NoError(t, err, "temperature input must yield a temperature grid")

	fg, rg := ds.FieldGrid(), ds.ReversalGrid()
	rows, cols := ds.Shape()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			h, hr := fg[i][j], rg[i][j]
			if math.IsNaN(moment[i][j]) {
				continue
			}
			assert.InDelta(t, plane(h, hr), moment[i][j], 1e-9, "linear fit must reproduce a plane at (%d,%d)", i, j)
			assert.InDelta(t, tempPlane(h, hr), temperature[i][j], 1e-9, "temperature rides the same fit at (%d,%d)", i, j)
		}
	}
}

func TestGridCubicExactOnQuadratic(t *testing.T) {
	quad := func(h, hr float64) float64 {
		return 1 + 0.5*h - 0.3*hr + 0.2*h*h + 0.1*hr*hr - 0.15*h*hr
	}
	f, r, m, _ := family(5, 1, 0.25, quad, nil)

	ds, err := interp.Grid(f, r, m, nil, 0.25, interp.Cubic)
	require.NoError(t, err, "cubic gridding should succeed")

	moment, err := ds.Data(dataset.FieldMoment)
	require.NoError(t, err)
	fg, rg := ds.FieldGrid(), ds.ReversalGrid()
	rows, cols := ds.Shape()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(moment[i][j]) {
				continue
			}
			h, hr := fg[i][j], rg[i][j]
			assert.InDelta(t, quad(h, hr), moment[i][j], 1e-8, "quadratic fit must reproduce a quadratic surface at (%d,%d)", i, j)
		}
	}
}

func TestGridMasksBelowReversal(t *testing.T) {
	f, r, m, _ := family(4, 1, 0.5, func(h, hr float64) float64 { return 1 }, nil)

	ds, err := interp.Grid(f, r, m, nil, 0.5, interp.Nearest)
	require.NoError(t, err)

	grid, err := ds.Data(dataset.FieldMoment)
	require.NoError(t, err)
	fg, rg := ds.FieldGrid(), ds.ReversalGrid()
	rows, cols := ds.Shape()
	masked := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			below := fg[i][j] < rg[i][j]-0.25
			assert.Equal(t, below, math.IsNaN(grid[i][j]), "mask at (%d,%d) must match the half-step predicate", i, j)
			if below {
				masked++
			}
		}
	}
	assert.Positive(t, masked, "a staircase family must leave masked cells")
}

func TestGridSkipsUnusableCoordinates(t *testing.T) {
	f := [][]float64{{0, 1}, {math.NaN(), math.Inf(1)}}
	r := [][]float64{{0, 0}, {2, 2}}
	m := [][]float64{{1, 2}, {9, 9}}

	ds, err := interp.Grid(f, r, m, nil, 1, interp.Nearest)
	require.NoError(t, err, "samples with NaN or Inf coordinates are dropped, not fatal")

	rows, cols := ds.Shape()
	assert.Equal(t, 1, rows, "only the finite curve defines the extent")
	assert.Equal(t, 2, cols)
	grid, err := ds.Data(dataset.FieldMoment)
	require.NoError(t, err)
	assert.Equal(t, 1.0, grid[0][0])
	assert.Equal(t, 2.0, grid[0][1])
}

func TestGridPropagatesMomentNaN(t *testing.T) {
	f := [][]float64{{0, 1, 2}}
	r := [][]float64{{0, 0, 0}}
	m := [][]float64{{1, math.NaN(), 3}}

	ds, err := interp.Grid(f, r, m, nil, 1, interp.Nearest)
	require.NoError(t, err, "NaN moments are data, not an input error")

	grid, err := ds.Data(dataset.FieldMoment)
	require.NoError(t, err)
	assert.Equal(t, 1.0, grid[0][0])
	assert.True(t, math.IsNaN(grid[0][1]), "a NaN sample must survive into its cell")
	assert.Equal(t, 3.0, grid[0][2])
}

func TestGridValidation(t *testing.T) {
	f := [][]float64{{0, 1}, {0.5, 1}}
	r := [][]float64{{0, 0}, {0.5, 0.5}}
	m := [][]float64{{1, 2}, {3, 4}}

	cases := []struct {
		name string
		call func() error
		want error
	}{
		{
			name: "unknown method",
			call: func() error {
				_, err := interp.Grid(f, r, m, nil, 0.5, interp.Method(99))
				return err
			},
			want: interp.ErrUnknownMethod,
		},
		{
			name: "zero step",
			call: func() error {
				_, err := interp.Grid(f, r, m, nil, 0, interp.Nearest)
				return err
			},
			want: interp.ErrBadStep,
		},
		{
			name: "NaN step",
			call: func() error {
				_, err := interp.Grid(f, r, m, nil, math.NaN(), interp.Nearest)
				return err
			},
			want: interp.ErrBadStep,
		},
		{
			name: "infinite step",
			call: func() error {
				_, err := interp.Grid(f, r, m, nil, math.Inf(1), interp.Nearest)
				return err
			},
			want: interp.ErrBadStep,
		},
		{
			name: "curve count mismatch",
			call: func() error {
				_, err := interp.Grid(f, r, m[:1], nil, 0.5, interp.Nearest)
				return err
			},
			want: interp.ErrShapeMismatch,
		},
		{
			name: "sample count mismatch",
			call: func() error {
				_, err := interp.Grid(f, r, [][]float64{{1, 2}, {3}}, nil, 0.5, interp.Nearest)
				return err
			},
			want: interp.ErrShapeMismatch,
		},
		{
			name: "temperature curve mismatch",
			call: func() error {
				_, err := interp.Grid(f, r, m, [][]float64{{300, 300}}, 0.5, interp.Nearest)
				return err
			},
			want: interp.ErrShapeMismatch,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, forcerr.ErrConfiguration, "validation failures are configuration errors")
		})
	}
}

func TestGridTooFewSamples(t *testing.T) {
	f := [][]float64{{0, 1}}
	r := [][]float64{{0, 0}}
	m := [][]float64{{1, 2}}

	_, err := interp.Grid(f, r, m, nil, 1, interp.Linear)
	require.Error(t, err, "two samples cannot support a linear fit")
	assert.ErrorIs(t, err, interp.ErrTooFewSamples)
	assert.ErrorIs(t, err, forcerr.ErrNumerical)

	_, err = interp.Grid(suffixCurves(5), suffixReversals(5), suffixMoments(5), nil, 1, interp.Cubic)
	require.Error(t, err, "five samples cannot support a cubic fit")
	assert.ErrorIs(t, err, interp.ErrTooFewSamples)
}

// suffixCurves and friends build a single five-sample curve without
// repeating literals at every call site.
func suffixCurves(n int) [][]float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = float64(i)
	}
	return [][]float64{c}
}

func suffixReversals(n int) [][]float64 { return [][]float64{make([]float64, n)} }

func suffixMoments(n int) [][]float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = 1
	}
	return [][]float64{c}
}

func TestGridDegenerateDomain(t *testing.T) {
	f := [][]float64{{0.5, 0.5, 0.5}}
	r := [][]float64{{0.5, 0.5, 0.5}}
	m := [][]float64{{1, 1, 1}}

	_, err := interp.Grid(f, r, m, nil, 1, interp.Nearest)
	require.Error(t, err, "coincident samples span no grid")
	assert.ErrorIs(t, err, interp.ErrDegenerateDomain)
	assert.ErrorIs(t, err, forcerr.ErrNumerical)
}

func TestGridSingleCurveLinearIsSingular(t *testing.T) {
	// One curve means one reversal field: the fit loses its second
	// coordinate and the normal equations collapse.
	f := [][]float64{{0, 1, 2, 3}}
	r := [][]float64{{0, 0, 0, 0}}
	m := [][]float64{{1, 2, 3, 4}}

	_, err := interp.Grid(f, r, m, nil, 1, interp.Linear)
	require.Error(t, err, "collinear samples cannot pin a plane")
	assert.ErrorIs(t, err, interp.ErrSingularFit)
	assert.ErrorIs(t, err, forcerr.ErrNumerical)
}

func TestParseMethod(t *testing.T) {
	for _, method := range []interp.Method{interp.Nearest, interp.Linear, interp.Cubic} {
		got, err := interp.ParseMethod(method.String())
		require.NoError(t, err, "canonical names must round-trip")
		assert.Equal(t, method, got)
	}

	got, err := interp.ParseMethod("  CUBIC ")
	require.NoError(t, err, "parsing folds case and trims spaces")
	assert.Equal(t, interp.Cubic, got)

	_, err = interp.ParseMethod("sinc")
	require.Error(t, err)
	assert.ErrorIs(t, err, interp.ErrUnknownMethod)

	assert.Equal(t, "method(42)", interp.Method(42).String())
}

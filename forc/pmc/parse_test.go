package pmc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/forc/pmc"
	"github.com/thomasrockhu/goforc/internal/testutil"
)

const simpleFile = `MicroMag 2900/3900 Data File (Series 0016.002)
First-order reversal curves

Averaging time                 +100.0000E-03

-1.00000E+00,-8.00000E-01
+0.00000E+00,+1.00000E-01
+1.00000E+00,+9.00000E-01

-5.00000E-01,-3.00000E-01
+5.00000E-01,+6.00000E-01
+1.00000E+00,+9.50000E-01
`

const driftFile = `MicroMag 2900/3900 Data File
First-order reversal curves

Hb1                            +0.000000E+00
Hb2                            +1.000000E+00

+1.00000E+04,+5.00000E-01

-1.00000E+00,-8.00000E-01
+0.00000E+00,+1.00000E-01

+1.00000E+04,+5.10000E-01

-5.00000E-01,-3.00000E-01
+5.00000E-01,+6.00000E-01
`

const temperatureFile = `MicroMag 2900/3900 Data File
First-order reversal curves

-1.00000E+00,-8.00000E-01,+2.98000E+02
+0.00000E+00,+1.00000E-01,+2.98100E+02

+0.00000E+00,+2.00000E-01,+2.98200E+02
+1.00000E+00,+9.00000E-01,+2.98300E+02
`

func TestParseSimple(t *testing.T) {
	cs, err := pmc.ParseBytes([]byte(simpleFile))
	require.NoError(t, err)

	assert.False(t, cs.HasTemperature)
	assert.False(t, cs.HasDriftPoints)
	require.Len(t, cs.Curves, 2)

	testutil.RequireSliceNearlyEqual(t, cs.Curves[0].Field, []float64{-1, 0, 1}, 0)
	testutil.RequireSliceNearlyEqual(t, cs.Curves[0].Moment, []float64{-0.8, 0.1, 0.9}, 0)
	testutil.RequireSliceNearlyEqual(t, cs.Curves[0].ReversalField, []float64{-1, -1, -1}, 0)
	assert.Nil(t, cs.Curves[0].Temperature)

	testutil.RequireSliceNearlyEqual(t, cs.Curves[1].Field, []float64{-0.5, 0.5, 1}, 0)
	testutil.RequireSliceNearlyEqual(t, cs.Curves[1].ReversalField, []float64{-0.5, -0.5, -0.5}, 0)

	// Without calibration lines the last moment of each curve doubles as
	// its drift sample.
	testutil.RequireSliceNearlyEqual(t, cs.Drift, []float64{0.9, 0.95}, 0)
	assert.Equal(t, 6, cs.TotalSamples())
}

func TestParseDriftPoints(t *testing.T) {
	cs, err := pmc.ParseBytes([]byte(driftFile))
	require.NoError(t, err)

	assert.True(t, cs.HasDriftPoints, "Hb1 header entry marks drift-point files")
	require.Len(t, cs.Curves, 2)
	testutil.RequireSliceNearlyEqual(t, cs.Drift, []float64{0.5, 0.51}, 0)

	testutil.RequireSliceNearlyEqual(t, cs.Curves[0].Field, []float64{-1, 0}, 0)
	testutil.RequireSliceNearlyEqual(t, cs.Curves[0].Moment, []float64{-0.8, 0.1}, 0)
	testutil.RequireSliceNearlyEqual(t, cs.Curves[1].Field, []float64{-0.5, 0.5}, 0)
}

func TestParseTemperature(t *testing.T) {
	cs, err := pmc.ParseBytes([]byte(temperatureFile))
	require.NoError(t, err)

	assert.True(t, cs.HasTemperature)
	require.Len(t, cs.Curves, 2)
	testutil.RequireSliceNearlyEqual(t, cs.Curves[0].Temperature, []float64{298, 298.1}, 0)
	testutil.RequireSliceNearlyEqual(t, cs.Curves[1].Temperature, []float64{298.2, 298.3}, 0)
	testutil.RequireSliceNearlyEqual(t, cs.Drift, []float64{0.1, 0.9}, 0)
}

func TestParseCRLF(t *testing.T) {
	content := strings.ReplaceAll(simpleFile, "\n", "\r\n")
	cs, err := pmc.ParseBytes([]byte(content))
	require.NoError(t, err, "Windows line endings must parse")
	require.Len(t, cs.Curves, 2)
	testutil.RequireSliceNearlyEqual(t, cs.Curves[1].Moment, []float64{-0.3, 0.6, 0.95}, 0)
}

func TestParseHeaderOnly(t *testing.T) {
	_, err := pmc.ParseBytes([]byte("MicroMag 2900/3900 Data File\nNo measurements here\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, pmc.ErrNoData)
	assert.ErrorIs(t, err, forcerr.ErrDataFormat)
}

func TestParseMalformedNumber(t *testing.T) {
	content := "header\n\n+1.00000E+00,ab.c\n"
	_, err := pmc.ParseBytes([]byte(content))
	require.Error(t, err)
	assert.ErrorIs(t, err, pmc.ErrBadNumber)
	assert.ErrorIs(t, err, forcerr.ErrDataFormat)
	assert.ErrorContains(t, err, "line 3", "parse errors carry the 1-based line number")
}

func TestParseBadValueCount(t *testing.T) {
	_, err := pmc.ParseBytes([]byte("header\n\n+1.00000E+00\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, pmc.ErrBadFieldCount)

	// A temperature file must carry three values on every data line.
	content := "header\n\n+0.00000E+00,+1.00000E-01,+2.98000E+02\n+1.00000E+00,+2.00000E-01\n"
	_, err = pmc.ParseBytes([]byte(content))
	require.Error(t, err)
	assert.ErrorIs(t, err, pmc.ErrBadFieldCount)
}

func TestParseExtraValuesIgnored(t *testing.T) {
	content := "header\n\n+0.00000E+00,+1.00000E-01\n+1.00000E+00,+2.00000E-01,+9.99999E+09\n"
	cs, err := pmc.ParseBytes([]byte(content))
	require.NoError(t, err, "values beyond the detected layout are ignored")
	require.Len(t, cs.Curves, 1)
	testutil.RequireSliceNearlyEqual(t, cs.Curves[0].Moment, []float64{0.1, 0.2}, 0)
	assert.False(t, cs.HasTemperature)
}

func TestParseStopsAtDoubleSeparator(t *testing.T) {
	content := "header\n\n+0.00000E+00,+1.00000E-01\n\n\n+1.00000E+00,+2.00000E-01\n"
	cs, err := pmc.ParseBytes([]byte(content))
	require.NoError(t, err)
	assert.Len(t, cs.Curves, 1, "curves are separated by exactly one non-data line")
}

func TestParseDriftPointWithoutCurve(t *testing.T) {
	content := "Hb1                            +0.000000E+00\n\n+1.00000E+04,+5.00000E-01\n"
	_, err := pmc.ParseBytes([]byte(content))
	require.Error(t, err)
	assert.ErrorIs(t, err, pmc.ErrTruncatedDrift)
	assert.ErrorIs(t, err, forcerr.ErrDataFormat)
}

func TestParseRoundTripSynthetic(t *testing.T) {
	for _, temperature := range []bool{false, true} {
		curves := testutil.CurveFamily(8, 1.0, 0.1, temperature)
		cs, err := pmc.ParseBytes([]byte(testutil.BuildPMC(curves, false, nil)))
		require.NoError(t, err)

		assert.Equal(t, temperature, cs.HasTemperature)
		require.Len(t, cs.Curves, 8)
		for i, c := range cs.Curves {
			assert.Len(t, c.Field, i+2, "curve %d sample count", i)
			assert.InDelta(t, 1.0-0.1*float64(i+1), c.ReversalField[0], 1e-9, "curve %d reversal field", i)
			assert.Equal(t, c.Moment[len(c.Moment)-1], cs.Drift[i], "curve %d implicit drift sample", i)
		}
	}
}

func TestParseRoundTripDriftPoints(t *testing.T) {
	curves := testutil.CurveFamily(6, 1.0, 0.1, false)
	drift := []float64{0.5, 0.51, 0.52, 0.51, 0.5, 0.49}
	cs, err := pmc.ParseBytes([]byte(testutil.BuildPMC(curves, true, drift)))
	require.NoError(t, err)

	assert.True(t, cs.HasDriftPoints)
	require.Len(t, cs.Curves, 6)
	testutil.RequireSliceNearlyEqual(t, cs.Drift, drift, 1e-9)
	for i, c := range cs.Curves {
		assert.Len(t, c.Field, i+2)
	}
}

func TestEstimateStep(t *testing.T) {
	cs, err := pmc.ParseBytes([]byte(simpleFile))
	require.NoError(t, err)
	step, err := cs.EstimateStep()
	require.NoError(t, err)
	// Curve 1 spacing averages 1.0, curve 2 averages 0.75.
	assert.InDelta(t, 0.875, step, 1e-12)

	single := &pmc.CurveSet{
		Curves: []pmc.Curve{{Field: []float64{1}, ReversalField: []float64{1}, Moment: []float64{0}}},
		Drift:  []float64{0},
	}
	_, err = single.EstimateStep()
	require.Error(t, err)
	assert.ErrorIs(t, err, pmc.ErrStepUndefined)
	assert.ErrorIs(t, err, forcerr.ErrDataFormat)
}

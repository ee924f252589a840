package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/internal/testutil"
)

// execute runs the command tree with a fresh output buffer.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestInfoCommand(t *testing.T) {
	curves := testutil.CurveFamily(4, 1, 0.5, true)
	path := testutil.WritePMC(t, testutil.BuildPMC(curves, false, nil))

	out, err := execute(t, "info", path)
	require.NoError(t, err)

	assert.Contains(t, out, path)
	assert.Regexp(t, `Curves\s+4`, out)
	assert.Regexp(t, `Samples\s+14`, out)
	assert.Regexp(t, `Temperature\s+yes`, out)
	assert.Regexp(t, `Drift points\s+no`, out)
	assert.Regexp(t, `Step estimate\s+0\.5`, out)
	assert.Regexp(t, `Moment range\s+\[`, out)
}

func TestInfoCommandMissingFile(t *testing.T) {
	_, err := execute(t, "info", filepath.Join(t.TempDir(), "absent.frc"))
	require.Error(t, err)
}

func TestProcessCommandDefaultRecipe(t *testing.T) {
	curves := testutil.CurveFamily(8, 1, 0.25, false)
	path := testutil.WritePMC(t, testutil.BuildPMC(curves, false, nil))
	outDir := t.TempDir()

	_, err := execute(t, "process", path, "-o", outDir, "--recipe", "")
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(outDir, exportName(path)))
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"row", "col", "field", "reversal", "moment", "rho", "sigma"}, records[0])
	// 8 reversal rows, 9 measured columns plus the 7-column extension pad.
	assert.Len(t, records, 1+8*16)
}

func TestProcessCommandWithRecipe(t *testing.T) {
	curves := testutil.CurveFamily(6, 1, 0.25, false)
	path := testutil.WritePMC(t, testutil.BuildPMC(curves, false, nil))
	outDir := t.TempDir()
	recipePath := filepath.Join(t.TempDir(), "recipe.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte("normalize: true\ndistribution:\n  enabled: false\n"), 0o644))

	_, err := execute(t, "process", path, "-o", outDir, "--recipe", recipePath)
	require.NoError(t, err)

	records := readCSV(t, filepath.Join(outDir, exportName(path)))
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"row", "col", "field", "reversal", "moment"}, records[0], "disabled distribution exports no rho")

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, rec := range records[1:] {
		v, err := strconv.ParseFloat(rec[4], 64)
		require.NoError(t, err)
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	assert.InDelta(t, -1, lo, 1e-12, "normalization pins the minimum")
	assert.InDelta(t, 1, hi, 1e-12, "normalization pins the maximum")
}

func TestProcessCommandBadRecipe(t *testing.T) {
	curves := testutil.CurveFamily(4, 1, 0.5, false)
	path := testutil.WritePMC(t, testutil.BuildPMC(curves, false, nil))
	recipePath := filepath.Join(t.TempDir(), "recipe.yaml")
	require.NoError(t, os.WriteFile(recipePath, []byte("method: spline\n"), 0o644))

	_, err := execute(t, "process", path, "-o", t.TempDir(), "--recipe", recipePath)
	require.Error(t, err)
	assert.ErrorIs(t, err, forcerr.ErrConfiguration)
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "data.csv", exportName(filepath.Join("some", "dir", "data.frc")))
	assert.Equal(t, "bare.csv", exportName("bare"))
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		err   error
		class string
		code  int
	}{
		{fmt.Errorf("parse: %w", forcerr.ErrDataFormat), "data format error", 2},
		{fmt.Errorf("options: %w", forcerr.ErrConfiguration), "configuration error", 3},
		{fmt.Errorf("fit: %w", forcerr.ErrNumerical), "numerical error", 4},
		{fmt.Errorf("plain failure"), "error", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.class, classify(tc.err))
		assert.Equal(t, tc.code, exitCode(tc.err))
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

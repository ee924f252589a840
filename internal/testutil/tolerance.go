package testutil

import (
	"fmt"
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance). NaN compares equal to
// NaN, so expected missing values can be asserted directly.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if math.IsNaN(got[i]) != math.IsNaN(want[i]) {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
		if math.IsNaN(want[i]) {
			continue
		}
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireGridNearlyEqual is RequireSliceNearlyEqual over 2-D grids.
func RequireGridNearlyEqual(t *testing.T, got, want [][]float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("row count mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("row %d length mismatch: got %d, want %d", i, len(got[i]), len(want[i]))
		}
		for j := range got[i] {
			if math.IsNaN(got[i][j]) != math.IsNaN(want[i][j]) {
				t.Fatalf("cell (%d,%d): got %v, want %v", i, j, got[i][j], want[i][j])
			}
			if math.IsNaN(want[i][j]) {
				continue
			}
			diff := math.Abs(got[i][j] - want[i][j])
			if diff > eps {
				t.Fatalf("cell (%d,%d): got %v, want %v (diff %v > eps %v)", i, j, got[i][j], want[i][j], diff, eps)
			}
		}
	}
}

// RequireGridFinite fails t if any cell is NaN or Inf.
func RequireGridFinite(t *testing.T, g [][]float64) {
	t.Helper()
	for i := range g {
		for j, v := range g[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("cell (%d,%d): non-finite value %v", i, j, v)
			}
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}

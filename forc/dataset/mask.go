package dataset

import (
	"fmt"
	"math"

	"github.com/thomasrockhu/goforc/internal/gridmath"
)

// ApplyMask blanks g to NaN at every cell whose applied field lies below the
// reversal field by more than half a step, the region a FORC measurement
// cannot reach. g is modified in place. All grids must share one shape;
// panics if they differ.
func ApplyMask(g, field, reversal [][]float64, step float64) {
	if len(g) != len(field) || len(g) != len(reversal) {
		panic("dataset: grid shape mismatch")
	}
	for i := range g {
		if len(g[i]) != len(field[i]) || len(g[i]) != len(reversal[i]) {
			panic("dataset: grid shape mismatch")
		}
		for j := range g[i] {
			if field[i][j] < reversal[i][j]-0.5*step {
				g[i][j] = math.NaN()
			}
		}
	}
}

// Masked returns a copy of field f with the unreachable region (applied
// field below reversal field) blanked to NaN. Requesting an absent field is
// a ConfigurationError.
func (d *Dataset) Masked(f Field) ([][]float64, error) {
	g := d.grid(f)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrAbsentField, f)
	}
	out := gridmath.Clone(g)
	ApplyMask(out, d.field, d.reversal, d.step)
	return out, nil
}

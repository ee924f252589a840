package testutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Mesh returns ascending uniform coordinate grids for a rows x cols layout:
// reversal advances along rows, field along columns, both at step.
func Mesh(fieldMin, reversalMin, step float64, rows, cols int) (field, reversal [][]float64) {
	field = make([][]float64, rows)
	reversal = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		field[i] = make([]float64, cols)
		reversal[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			field[i][j] = fieldMin + float64(j)*step
			reversal[i][j] = reversalMin + float64(i)*step
		}
	}
	return field, reversal
}

// SynthCurve is one reversal curve for BuildPMC. Temperature may be nil.
type SynthCurve struct {
	Field       []float64
	Moment      []float64
	Temperature []float64
}

// CurveFamily generates a deterministic family of reversal curves following
// a smooth saturating moment model. Curve i reverses at
// hMax - (i+1)*step and sweeps back up to hMax at step.
func CurveFamily(nCurves int, hMax, step float64, temperature bool) []SynthCurve {
	curves := make([]SynthCurve, nCurves)
	for i := range curves {
		hr := hMax - float64(i+1)*step
		n := i + 2
		c := SynthCurve{
			Field:  make([]float64, n),
			Moment: make([]float64, n),
		}
		if temperature {
			c.Temperature = make([]float64, n)
		}
		for j := 0; j < n; j++ {
			h := hr + float64(j)*step
			c.Field[j] = h
			c.Moment[j] = math.Tanh(4*h) - 0.1*hr
			if temperature {
				c.Temperature[j] = 300 + 0.01*float64(i) + 0.001*float64(j)
			}
		}
		curves[i] = c
	}
	return curves
}

// BuildPMC renders curves as PMC-style file text. With driftPoints, a
// "Hb1" header entry marks drift-point mode and each curve is preceded by a
// calibration line carrying the matching drift value; drift must then have
// one entry per curve. Without, the drift samples are implicit in the last
// line of each curve and drift is ignored.
func BuildPMC(curves []SynthCurve, driftPoints bool, drift []float64) string {
	if driftPoints && len(drift) != len(curves) {
		panic("testutil: drift length must match curve count")
	}
	var b strings.Builder
	b.WriteString("MicroMag 2900/3900 Data File (Series 0016.002)\n")
	b.WriteString("First-order reversal curves\n")
	b.WriteString("\n")
	b.WriteString("Configuration                   VSM\n")
	b.WriteString("Averaging time                 +100.0000E-03\n")
	if driftPoints {
		b.WriteString("Hb1                            +0.000000E+00\n")
		b.WriteString("Hb2                            +1.000000E+00\n")
	}
	fmt.Fprintf(&b, "Number of curves                %d\n", len(curves))
	b.WriteString("\n")
	for i, c := range curves {
		if driftPoints {
			fmt.Fprintf(&b, "%+.5E,%+.5E\n", 1e4, drift[i])
			b.WriteString("\n")
		}
		for j := range c.Field {
			if c.Temperature != nil {
				fmt.Fprintf(&b, "%+.5E,%+.5E,%+.5E\n", c.Field[j], c.Moment[j], c.Temperature[j])
			} else {
				fmt.Fprintf(&b, "%+.5E,%+.5E\n", c.Field[j], c.Moment[j])
			}
		}
		if i < len(curves)-1 || driftPoints {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// WritePMC writes content to a temp file and returns its path.
func WritePMC(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.frc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sample file: %v", err)
	}
	return path
}

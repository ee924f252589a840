// Package extend pads the low-field edge of a gridded dataset ahead of
// convolution. The Savitzky-Golay engine leaves a border of missing cells
// around every array edge; padding the measured region leftward lets the
// convolution reach the physically interesting low-field cells.
package extend

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/thomasrockhu/goforc/forc/dataset"
	"github.com/thomasrockhu/goforc/forc/forcerr"
	"github.com/thomasrockhu/goforc/internal/gridmath"
)

var (
	// ErrUnknownPolicy indicates a policy name or value outside the known
	// set.
	ErrUnknownPolicy = fmt.Errorf("extend: unknown extension policy: %w", forcerr.ErrConfiguration)
	// ErrBadSpan indicates a span below 1.
	ErrBadSpan = fmt.Errorf("extend: span must be at least 1: %w", forcerr.ErrConfiguration)
	// ErrBadFitPoints indicates a fit-point budget below 2.
	ErrBadFitPoints = fmt.Errorf("extend: fit points must be at least 2: %w", forcerr.ErrConfiguration)
	// ErrEmptyRow indicates a row with no finite moment to extend from.
	ErrEmptyRow = fmt.Errorf("extend: row holds no finite moment: %w", forcerr.ErrNumerical)
	// ErrShortFit indicates a row with fewer than two finite samples for
	// the slope fit.
	ErrShortFit = fmt.Errorf("extend: too few finite samples for a line fit: %w", forcerr.ErrNumerical)
)

// Policy selects how the padded region is filled.
type Policy int

const (
	// Leave keeps the padding missing.
	Leave Policy = iota
	// Flat fills each row's padding with its first finite moment.
	Flat
	// Slope continues each row's padding along a least-squares line
	// through its leading finite samples.
	Slope

	policyCount
)

// String returns the lower-case policy name.
func (p Policy) String() string {
	switch p {
	case Leave:
		return "leave"
	case Flat:
		return "flat"
	case Slope:
		return "slope"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a policy name to its Policy value, ignoring case.
func ParsePolicy(s string) (Policy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for p := Policy(0); p < policyCount; p++ {
		if name == p.String() {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Extend prepends 2*span+1 columns at the low-field edge of d, continuing
// the field axis downward at the grid step, and fills each moment row up
// to its first finite value according to policy. Temperature, when
// present, is padded with missing values and never extrapolated. fitPoints
// caps the samples used by the Slope fit.
func Extend(d *dataset.Dataset, span int, policy Policy, fitPoints int) (*dataset.Dataset, error) {
	if policy < 0 || policy >= policyCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(policy))
	}
	if span < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadSpan, span)
	}
	if fitPoints < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrBadFitPoints, fitPoints)
	}

	rows, cols := d.Shape()
	step := d.Step()
	pad := 2*span + 1
	field := d.FieldGrid()
	reversal := d.ReversalGrid()
	moment, err := d.Data(dataset.FieldMoment)
	if err != nil {
		return nil, err
	}

	outField := gridmath.Alloc(rows, pad+cols)
	outReversal := gridmath.Alloc(rows, pad+cols)
	outMoment := gridmath.Alloc(rows, pad+cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < pad; j++ {
			outField[i][j] = field[i][0] - float64(pad-j)*step
			outReversal[i][j] = reversal[i][0]
			outMoment[i][j] = math.NaN()
		}
		copy(outField[i][pad:], field[i])
		copy(outReversal[i][pad:], reversal[i])
		copy(outMoment[i][pad:], moment[i])
	}

	var outTemperature [][]float64
	if d.Has(dataset.FieldTemperature) {
		temperature, err := d.Data(dataset.FieldTemperature)
		if err != nil {
			return nil, err
		}
		outTemperature = gridmath.Alloc(rows, pad+cols)
		for i := 0; i < rows; i++ {
			for j := 0; j < pad; j++ {
				outTemperature[i][j] = math.NaN()
			}
			copy(outTemperature[i][pad:], temperature[i])
		}
	}

	if policy != Leave {
		for i := 0; i < rows; i++ {
			if err := fillRow(outField[i], outMoment[i], policy, fitPoints); err != nil {
				return nil, fmt.Errorf("%w: row %d", err, i)
			}
		}
	}

	return dataset.New(outField, outReversal, outMoment, outTemperature)
}

// fillRow fills moment[0:firstValid) in place.
func fillRow(field, moment []float64, policy Policy, fitPoints int) error {
	first := gridmath.FirstValid(moment)
	if first < 0 {
		return ErrEmptyRow
	}
	if first == 0 {
		return nil
	}
	switch policy {
	case Flat:
		v := moment[first]
		for j := 0; j < first; j++ {
			moment[j] = v
		}
	case Slope:
		xs := make([]float64, 0, fitPoints)
		ys := make([]float64, 0, fitPoints)
		for j := first; j < len(moment) && len(xs) < fitPoints; j++ {
			if math.IsNaN(moment[j]) {
				continue
			}
			xs = append(xs, field[j])
			ys = append(ys, moment[j])
		}
		if len(xs) < 2 {
			return fmt.Errorf("%w: have %d", ErrShortFit, len(xs))
		}
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		for j := 0; j < first; j++ {
			moment[j] = alpha + beta*field[j]
		}
	}
	return nil
}

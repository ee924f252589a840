package pmc

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thomasrockhu/goforc/forc/forcerr"
)

var (
	// ErrNoData indicates a file without a single data line.
	ErrNoData = fmt.Errorf("pmc: no data lines found: %w", forcerr.ErrDataFormat)
	// ErrBadFieldCount indicates a data line with an unexpected number of
	// comma-separated values.
	ErrBadFieldCount = fmt.Errorf("pmc: unexpected value count: %w", forcerr.ErrDataFormat)
	// ErrBadNumber indicates an unparseable numeric value.
	ErrBadNumber = fmt.Errorf("pmc: malformed number: %w", forcerr.ErrDataFormat)
	// ErrTruncatedDrift indicates a drift calibration line with no curve
	// following it.
	ErrTruncatedDrift = fmt.Errorf("pmc: drift point without curve: %w", forcerr.ErrDataFormat)
)

// Curve is one reversal curve: a run of samples measured after relaxing the
// sample to the curve's reversal field. ReversalField repeats that single
// value so the slices can be consumed as flat scattered coordinates.
// Temperature is nil when the file carries no temperature column.
type Curve struct {
	Field         []float64
	ReversalField []float64
	Moment        []float64
	Temperature   []float64
}

// CurveSet is the parsed content of one measurement file: the reversal
// curves in file order and one drift sample per curve.
type CurveSet struct {
	Curves         []Curve
	Drift          []float64
	HasTemperature bool
	HasDriftPoints bool
}

// Parse reads a PMC-style file into a CurveSet.
func Parse(r io.Reader) (*CurveSet, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pmc: read: %w", err)
	}
	return parseLines(lines)
}

// ParseBytes is Parse over in-memory file content.
func ParseBytes(data []byte) (*CurveSet, error) {
	return Parse(bytes.NewReader(data))
}

func parseLines(lines []string) (*CurveSet, error) {
	firstData := -1
	hasDriftPoints := false
	for i, line := range lines {
		if firstData < 0 && isDataLine(line) {
			firstData = i
		}
		if strings.HasPrefix(line, "Hb1") {
			hasDriftPoints = true
		}
	}
	if firstData < 0 {
		return nil, ErrNoData
	}

	// The value count of the first data line fixes the column layout for
	// the whole file.
	nValues := len(strings.Split(lines[firstData], ","))
	if nValues != 2 && nValues != 3 {
		return nil, fmt.Errorf("%w: line %d has %d values, want 2 or 3", ErrBadFieldCount, firstData+1, nValues)
	}

	cs := &CurveSet{
		HasTemperature: nValues == 3,
		HasDriftPoints: hasDriftPoints,
	}

	i := firstData
	for i < len(lines) && isDataLine(lines[i]) {
		if hasDriftPoints {
			driftValue, err := lastValue(lines[i], i)
			if err != nil {
				return nil, err
			}
			i += 2 // calibration line plus its separator
			if i >= len(lines) || !isDataLine(lines[i]) {
				return nil, fmt.Errorf("%w: near line %d", ErrTruncatedDrift, i)
			}
			curve, consumed, err := extractCurve(lines, i, cs.HasTemperature)
			if err != nil {
				return nil, err
			}
			cs.Curves = append(cs.Curves, curve)
			cs.Drift = append(cs.Drift, driftValue)
			i += consumed + 1
			continue
		}

		curve, consumed, err := extractCurve(lines, i, cs.HasTemperature)
		if err != nil {
			return nil, err
		}
		cs.Curves = append(cs.Curves, curve)
		// The final sample of the curve doubles as its drift measurement.
		cs.Drift = append(cs.Drift, curve.Moment[len(curve.Moment)-1])
		i += consumed + 1
	}
	return cs, nil
}

// extractCurve reads the maximal run of data lines starting at start and
// returns the curve plus the number of lines consumed.
func extractCurve(lines []string, start int, hasTemperature bool) (Curve, int, error) {
	n := 0
	for start+n < len(lines) && isDataLine(lines[start+n]) {
		n++
	}
	c := Curve{
		Field:         make([]float64, n),
		ReversalField: make([]float64, n),
		Moment:        make([]float64, n),
	}
	if hasTemperature {
		c.Temperature = make([]float64, n)
	}
	for k := 0; k < n; k++ {
		lineIdx := start + k
		parts := strings.Split(lines[lineIdx], ",")
		want := 2
		if hasTemperature {
			want = 3
		}
		if len(parts) < want {
			return Curve{}, 0, fmt.Errorf("%w: line %d has %d values, want %d", ErrBadFieldCount, lineIdx+1, len(parts), want)
		}
		var err error
		if c.Field[k], err = parseValue(parts[0], lineIdx); err != nil {
			return Curve{}, 0, err
		}
		if c.Moment[k], err = parseValue(parts[1], lineIdx); err != nil {
			return Curve{}, 0, err
		}
		if hasTemperature {
			if c.Temperature[k], err = parseValue(parts[2], lineIdx); err != nil {
				return Curve{}, 0, err
			}
		}
	}
	reversal := c.Field[0]
	for k := range c.ReversalField {
		c.ReversalField[k] = reversal
	}
	return c, n, nil
}

// isDataLine reports whether line opens with an explicitly signed number,
// the marker distinguishing measurements from header and separator lines.
func isDataLine(line string) bool {
	return len(line) > 0 && (line[0] == '+' || line[0] == '-')
}

// lastValue parses the final comma-separated value of a calibration line.
func lastValue(line string, lineIdx int) (float64, error) {
	parts := strings.Split(line, ",")
	return parseValue(parts[len(parts)-1], lineIdx)
}

func parseValue(s string, lineIdx int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q at line %d", ErrBadNumber, s, lineIdx+1)
	}
	return v, nil
}

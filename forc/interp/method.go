package interp

import (
	"fmt"
	"strings"
)

// Method selects the scattered-data interpolation scheme.
type Method int

const (
	// Nearest copies the value of the closest scattered sample.
	Nearest Method = iota
	// Linear fits a moving least-squares plane through nearby samples.
	Linear
	// Cubic fits a moving least-squares quadratic through nearby samples.
	Cubic

	methodCount
)

// String returns the lower-case method name.
func (m Method) String() string {
	switch m {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod maps a method name to its Method value, ignoring case.
func ParseMethod(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m := Method(0); m < methodCount; m++ {
		if name == m.String() {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// MinPoints returns the smallest scattered sample count the method can
// work from: one value for Nearest, a plane for Linear, a quadratic for
// Cubic.
func (m Method) MinPoints() int {
	switch m {
	case Linear:
		return 3
	case Cubic:
		return 6
	default:
		return 1
	}
}

// neighbor counts for the local least-squares fits.
const (
	linearNeighbors = 8
	cubicNeighbors  = 12
)

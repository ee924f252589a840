package dataset

import "fmt"

// Field identifies one of the value grids a Dataset can carry.
type Field int

const (
	// FieldMoment is the measured (or corrected) magnetic moment. Always
	// present.
	FieldMoment Field = iota
	// FieldDistribution is the FORC distribution, present once the
	// convolution engine has run.
	FieldDistribution
	// FieldDistributionUncertainty is the standard error of the
	// distribution estimate, present when the engine computed it.
	FieldDistributionUncertainty
	// FieldTemperature is the per-sample temperature channel, present when
	// the source file carried one.
	FieldTemperature

	fieldCount = iota
)

// String returns the canonical lower-case name of f.
func (f Field) String() string {
	switch f {
	case FieldMoment:
		return "moment"
	case FieldDistribution:
		return "distribution"
	case FieldDistributionUncertainty:
		return "distribution-uncertainty"
	case FieldTemperature:
		return "temperature"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// ParseField maps a canonical field name to its Field value.
func ParseField(s string) (Field, error) {
	for f := Field(0); f < fieldCount; f++ {
		if s == f.String() {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

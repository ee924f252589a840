// Package dataset provides the immutable grid value type shared by the
// goforc processing stages.
//
// A [Dataset] couples the applied-field and reversal-field coordinate grids
// with the measured moment grid, an optional temperature grid, and the
// derived distribution grids once they have been computed. All grids share
// one shape and one scalar spacing. Missing values are NaN.
//
// # Construction
//
// Build a Dataset from matching 2-D arrays:
//
//	d, err := dataset.New(field, reversal, moment, nil)
//
// New validates shape, finiteness, monotonicity, and spacing uniformity, and
// takes ownership of the slices it is given; callers must not modify them
// afterwards. Datasets produced by the library never share backing arrays
// with each other.
//
// # Fields
//
// Value grids are addressed through the [Field] enum:
//
//	if d.Has(dataset.FieldTemperature) {
//		t, _ := d.Data(dataset.FieldTemperature)
//		...
//	}
//
// Data returns the live grid for reading; treat it as read-only. Masked
// returns a copy with all cells below the reversal field blanked to NaN,
// which is the form plotting front-ends want.
package dataset

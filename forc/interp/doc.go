// Package interp grids scattered FORC measurements.
//
// Measured samples live at irregular (field, reversal-field) coordinates:
// every curve covers a different field range and instruments drop or repeat
// points. This package builds the uniform mesh spanning the scattered
// extents at a caller-chosen step and fills it from the samples:
//
//	d, err := interp.Grid(fields, reversals, moments, nil, 5e-3, interp.Cubic)
//
// # Methods
//
// [Nearest] copies the value of the closest sample and is exact at sample
// coordinates. [Linear] and [Cubic] fit a moving least-squares plane or
// full quadratic through the nearest samples of each grid node; Cubic
// reproduces quadratic surfaces exactly. Neighbor queries run on a k-d
// tree, so gridding large files stays close to linear in sample count.
//
// Cells whose applied field lies below the reversal field cannot be
// measured and are blanked to NaN before the Dataset is built.
package interp

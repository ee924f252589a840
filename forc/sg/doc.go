// Package sg computes the FORC distribution by Savitzky-Golay style
// local polynomial regression over a uniform grid.
//
// # Kernel
//
// [NewKernel] precomputes the regression for one smoothing factor and
// grid step: a quadratic surface [1, x, x², y, y², xy] is fitted by least
// squares over the (2sf+1)×(2sf+1) neighborhood of every grid cell, and
// the row of the design matrix pseudo-inverse belonging to the xy term
// becomes a correlation kernel. Applying the kernel with
// [Kernel.Correlate] therefore evaluates the mixed second derivative of
// the fitted surface at every interior cell in a single pass. The kernel
// depends on both the smoothing factor and the grid spacing; a kernel
// built for one step must not be reused for another.
//
// # Missing values
//
// Grid cells holding NaN mark unmeasured points. Any window touching a
// NaN produces a NaN output cell, and a sf-wide border of NaN always
// remains along the array edges. Pad the measured region first (package
// extend) when edge coverage matters.
//
// # Pipeline
//
// [ComputeDistribution] chains extension, correlation, the physical
// -0.5 scale, and the per-cell standard error into one call, producing a
// new dataset carrying the distribution fields.
package sg

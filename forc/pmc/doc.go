// Package pmc reads PMC-style FORC measurement files and drives the
// processing pipeline that turns them into uniform-grid datasets.
//
// # File format
//
// A file opens with a free-form instrument header. Data lines are exactly
// the lines whose first byte is '+' or '-'; everything before the first data
// line is header. Each data line holds comma-separated applied field and
// moment, plus a temperature column when the instrument recorded one.
// Reversal curves are runs of consecutive data lines separated by a single
// non-data line. A curve's reversal field is the applied field of its first
// sample.
//
// Files written with dedicated drift measurements announce themselves with
// a "Hb1" header entry; each curve is then preceded by a single calibration
// line whose last value is the drift sample. Without drift measurements,
// the moment of a curve's final line doubles as the drift sample.
//
// # Usage
//
// Parse only:
//
//	cs, err := pmc.Parse(file)
//
// Full pipeline to a Dataset:
//
//	opts := pmc.DefaultLoadOptions()
//	opts.DriftCorrection = true
//	d, err := pmc.Load("measurement.frc", opts)
package pmc

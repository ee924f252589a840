// Package forcerr defines the error classes shared by all goforc packages.
//
// Every error returned by the library wraps exactly one of the three class
// sentinels below, so callers can route failures with errors.Is without
// inspecting message text:
//
//	if errors.Is(err, forcerr.ErrDataFormat) {
//		// reject the input file
//	}
package forcerr

import "errors"

var (
	// ErrDataFormat reports malformed or unparseable input text. It is
	// returned by the parser and by load-time validation only; downstream
	// stages may assume structurally valid input.
	ErrDataFormat = errors.New("forc: malformed data file")

	// ErrConfiguration reports invalid parameters or unknown method and
	// policy names, detected before any computation starts.
	ErrConfiguration = errors.New("forc: invalid configuration")

	// ErrNumerical reports data-dependent failures discovered during a
	// computation, such as too few points for the requested method or an
	// all-missing row where values are required. It fails the single
	// operation, never the process.
	ErrNumerical = errors.New("forc: numerical failure")
)

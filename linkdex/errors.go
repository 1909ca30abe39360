// CLAUDE:SUMMARY Sentinel errors for the linkdex service: fetch failure, save failure, invalid input.
package linkdex

import "errors"

// ErrFetch wraps any failure to obtain the document. Nothing is parsed or saved.
var ErrFetch = errors.New("linkdex: fetch failed")

// ErrSave wraps a sink failure. The previous result is left in place.
var ErrSave = errors.New("linkdex: save failed")

// ErrInvalidInput is returned when a request fails validation.
var ErrInvalidInput = errors.New("linkdex: invalid input")

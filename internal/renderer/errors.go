package renderer

import "fmt"

// ColorParseError reports a background colour the engine's colour grammar
// does not accept.
type ColorParseError struct {
	Value string
	Err   error
}

func (e *ColorParseError) Error() string {
	return fmt.Sprintf("failed to parse background color %q: %v", e.Value, e.Err)
}

func (e *ColorParseError) Unwrap() error { return e.Err }

// DocumentParseError carries the engine's diagnostic for a malformed document.
type DocumentParseError struct {
	Err error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("failed to parse SVG: %v", e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }

// EncodeError reports a failure while encoding the raster to PNG.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode PNG: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

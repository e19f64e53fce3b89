// Package options turns a render configuration payload into fully populated
// RenderSettings. Payloads may arrive as JSON, HCL or as a RawOptions value
// built by the Terraform schema layer; all three are resolved the same way.
package options

import (
	"fmt"
	"math"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// RawOptions is a configuration payload as received. Every field is optional;
// nil means "use the default".
type RawOptions struct {
	Path           *string         `json:"path"`
	Font           *RawFontOptions `json:"font"`
	DPI            *float64        `json:"dpi"`
	Languages      []string        `json:"languages"`
	ShapeRendering *int64          `json:"shapeRendering"`
	TextRendering  *int64          `json:"textRendering"`
	ImageRendering *int64          `json:"imageRendering"`
	FitTo          *RawFitTo       `json:"fitTo"`
	Background     *string         `json:"background"`
}

// RawFontOptions is the "font" section of a payload.
type RawFontOptions struct {
	LoadSystemFonts   *bool    `json:"loadSystemFonts"`
	FontFiles         []string `json:"fontFiles"`
	FontDirs          []string `json:"fontDirs"`
	DefaultFontFamily *string  `json:"defaultFontFamily"`
	DefaultFontSize   *float64 `json:"defaultFontSize"`
	SerifFamily       *string  `json:"serifFamily"`
	SansSerifFamily   *string  `json:"sansSerifFamily"`
	CursiveFamily     *string  `json:"cursiveFamily"`
	FantasyFamily     *string  `json:"fantasyFamily"`
	MonospaceFamily   *string  `json:"monospaceFamily"`
}

// RawFitTo is the tagged fit value: {"mode": "...", "value": n}.
type RawFitTo struct {
	Mode  *string  `json:"mode"`
	Value *float64 `json:"value"`
}

// ValidationError reports a malformed payload: an unknown field, a value of
// the wrong type or an out of range enumeration code.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid render options: %s", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Err: fmt.Errorf(format, args...)}
}

// listFormat renders aggregated problems on a single line.
func listFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d problems: %s", len(errs), strings.Join(msgs, "; "))
}

// ShapeRenderingFromCode maps 0, 1, 2 to optimizeSpeed, crispEdges and
// geometricPrecision.
func ShapeRenderingFromCode(code int64) (ShapeRendering, error) {
	switch code {
	case 0:
		return ShapeOptimizeSpeed, nil
	case 1:
		return ShapeCrispEdges, nil
	case 2:
		return ShapeGeometricPrecision, nil
	}
	return 0, newValidationError("invalid shapeRendering value: %d. Expected 0 (optimizeSpeed), 1 (crispEdges), or 2 (geometricPrecision)", code)
}

// TextRenderingFromCode maps 0, 1, 2 to optimizeSpeed, optimizeLegibility and
// geometricPrecision.
func TextRenderingFromCode(code int64) (TextRendering, error) {
	switch code {
	case 0:
		return TextOptimizeSpeed, nil
	case 1:
		return TextOptimizeLegibility, nil
	case 2:
		return TextGeometricPrecision, nil
	}
	return 0, newValidationError("invalid textRendering value: %d. Expected 0 (optimizeSpeed), 1 (optimizeLegibility), or 2 (geometricPrecision)", code)
}

// ImageRenderingFromCode maps 0, 1 to optimizeQuality and optimizeSpeed.
func ImageRenderingFromCode(code int64) (ImageRendering, error) {
	switch code {
	case 0:
		return ImageOptimizeQuality, nil
	case 1:
		return ImageOptimizeSpeed, nil
	}
	return 0, newValidationError("invalid imageRendering value: %d. Expected 0 (optimizeQuality) or 1 (optimizeSpeed)", code)
}

// FitToFromRaw maps the tagged fit value to a FitTo.
func FitToFromRaw(raw *RawFitTo) (FitTo, error) {
	if raw == nil {
		return FitOriginal(), nil
	}
	if raw.Mode == nil {
		return FitTo{}, newValidationError("fitTo: missing field \"mode\"")
	}

	mode := *raw.Mode
	switch mode {
	case "original":
		if raw.Value != nil {
			return FitTo{}, newValidationError("fitTo: mode \"original\" does not take a value")
		}
		return FitOriginal(), nil
	case "width", "height":
		if raw.Value == nil {
			return FitTo{}, newValidationError("fitTo: mode %q requires a value", mode)
		}
		v := *raw.Value
		if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) || math.IsNaN(v) {
			return FitTo{}, newValidationError("fitTo: invalid %s value %v, expected a whole number of pixels between 0 and %d", mode, v, uint32(math.MaxUint32))
		}
		if mode == "width" {
			return FitWidth(uint32(v)), nil
		}
		return FitHeight(uint32(v)), nil
	case "zoom":
		if raw.Value == nil {
			return FitTo{}, newValidationError("fitTo: mode \"zoom\" requires a value")
		}
		v := *raw.Value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return FitTo{}, newValidationError("fitTo: invalid zoom value %v", v)
		}
		return FitZoom(v), nil
	}
	return FitTo{}, newValidationError("fitTo: unknown mode %q, expected one of original, width, height, zoom", mode)
}

// Resolve fills every missing field of raw from the defaults and maps the
// enumeration codes. A nil raw yields Defaults(). Every problem found is
// reported in a single ValidationError.
func Resolve(raw *RawOptions) (*RenderSettings, error) {
	settings := Defaults()
	if raw == nil {
		return &settings, nil
	}

	var errs *multierror.Error
	check := func(err error) {
		if err == nil {
			return
		}
		// Unwrap so the aggregate is not "invalid render options" repeated.
		if ve, ok := err.(*ValidationError); ok {
			err = ve.Err
		}
		errs = multierror.Append(errs, err)
	}

	if raw.Path != nil {
		p := *raw.Path
		settings.Path = &p
	}
	if raw.DPI != nil {
		if *raw.DPI <= 0 || math.IsNaN(*raw.DPI) || math.IsInf(*raw.DPI, 0) {
			check(fmt.Errorf("invalid dpi value: %v, expected a positive number", *raw.DPI))
		} else {
			settings.DPI = *raw.DPI
		}
	}
	if raw.Languages != nil {
		settings.Languages = append([]string{}, raw.Languages...)
	}
	if raw.ShapeRendering != nil {
		v, err := ShapeRenderingFromCode(*raw.ShapeRendering)
		check(err)
		if err == nil {
			settings.ShapeRendering = v
		}
	}
	if raw.TextRendering != nil {
		v, err := TextRenderingFromCode(*raw.TextRendering)
		check(err)
		if err == nil {
			settings.TextRendering = v
		}
	}
	if raw.ImageRendering != nil {
		v, err := ImageRenderingFromCode(*raw.ImageRendering)
		check(err)
		if err == nil {
			settings.ImageRendering = v
		}
	}
	fit, err := FitToFromRaw(raw.FitTo)
	check(err)
	if err == nil {
		settings.FitTo = fit
	}
	if raw.Background != nil {
		bg := *raw.Background
		settings.Background = &bg
	}
	if raw.Font != nil {
		resolveFont(&settings.Font, raw.Font, check)
	}

	if errs != nil {
		errs.ErrorFormat = listFormat
		return nil, &ValidationError{Err: errs}
	}
	return &settings, nil
}

func resolveFont(font *FontSettings, raw *RawFontOptions, check func(error)) {
	if raw.LoadSystemFonts != nil {
		font.LoadSystemFonts = *raw.LoadSystemFonts
	}
	if raw.FontFiles != nil {
		font.FontFiles = append([]string{}, raw.FontFiles...)
	}
	if raw.FontDirs != nil {
		font.FontDirs = append([]string{}, raw.FontDirs...)
	}
	if raw.DefaultFontSize != nil {
		if *raw.DefaultFontSize <= 0 || math.IsNaN(*raw.DefaultFontSize) || math.IsInf(*raw.DefaultFontSize, 0) {
			check(fmt.Errorf("invalid font.defaultFontSize value: %v, expected a positive number", *raw.DefaultFontSize))
		} else {
			font.DefaultFontSize = *raw.DefaultFontSize
		}
	}

	families := []struct {
		name string
		src  *string
		dst  *string
	}{
		{"defaultFontFamily", raw.DefaultFontFamily, &font.DefaultFontFamily},
		{"serifFamily", raw.SerifFamily, &font.SerifFamily},
		{"sansSerifFamily", raw.SansSerifFamily, &font.SansSerifFamily},
		{"cursiveFamily", raw.CursiveFamily, &font.CursiveFamily},
		{"fantasyFamily", raw.FantasyFamily, &font.FantasyFamily},
		{"monospaceFamily", raw.MonospaceFamily, &font.MonospaceFamily},
	}
	for _, f := range families {
		if f.src == nil {
			continue
		}
		if strings.TrimSpace(*f.src) == "" {
			check(fmt.Errorf("invalid font.%s: family name must not be empty", f.name))
			continue
		}
		*f.dst = *f.src
	}
}

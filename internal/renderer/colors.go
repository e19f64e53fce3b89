package renderer

import (
	"errors"
	"image/color"
	"strings"

	"github.com/srwiley/oksvg"
)

// parseBackground parses a background colour with the SVG colour grammar
// (named colours, #rgb, #rrggbb, rgb(), transparent). A nil value means a
// transparent background.
func parseBackground(value *string) (color.Color, error) {
	if value == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*value)
	if s == "" {
		return nil, &ColorParseError{Value: *value, Err: errors.New("empty color")}
	}
	if strings.EqualFold(s, "transparent") {
		return color.Transparent, nil
	}
	if strings.EqualFold(s, "none") {
		return nil, &ColorParseError{Value: *value, Err: errors.New("not a color")}
	}

	c, err := oksvg.ParseSVGColor(s)
	if err != nil {
		return nil, &ColorParseError{Value: *value, Err: err}
	}
	if c == nil {
		return nil, &ColorParseError{Value: *value, Err: errors.New("not a color")}
	}
	return c, nil
}

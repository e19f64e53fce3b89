package renderer

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"golang.org/x/net/html/charset"
)

// rootInfo is what the adapter needs from the root <svg> element.
type rootInfo struct {
	// Width and Height are the intrinsic size in pixels.
	Width, Height float64
	ViewBox       viewBox
	// FontFamilies lists every distinct font-family value in the document,
	// in order of appearance.
	FontFamilies []string
}

type viewBox struct {
	X, Y, W, H float64
	Set        bool
}

// inspectRoot checks that document is a well-formed SVG and computes its
// intrinsic size. Absolute units are converted with dpi; percentages fall
// back to the viewBox.
func inspectRoot(document string, dpi, fontSize float64) (*rootInfo, error) {
	decoder := xml.NewDecoder(strings.NewReader(document))
	decoder.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("document has no root element")
			}
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return nil, fmt.Errorf("unexpected root element <%s>, expected <svg>", start.Name.Local)
		}
		info := rootFromAttrs(start.Attr, dpi, fontSize)
		info.collectFamilies(start.Attr)
		if err := drain(decoder, info); err != nil {
			return nil, err
		}
		return info, nil
	}
}

// drain reads the rest of the document so syntax errors surface here.
func drain(decoder *xml.Decoder, info *rootInfo) error {
	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if start, ok := tok.(xml.StartElement); ok {
			info.collectFamilies(start.Attr)
		}
	}
}

// collectFamilies records font-family values set as attribute or inline style.
func (info *rootInfo) collectFamilies(attrs []xml.Attr) {
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "font-family":
			info.addFamily(attr.Value)
		case "style":
			for _, decl := range strings.Split(attr.Value, ";") {
				name, value, ok := strings.Cut(decl, ":")
				if ok && strings.TrimSpace(name) == "font-family" {
					info.addFamily(value)
				}
			}
		}
	}
}

func (info *rootInfo) addFamily(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	for _, f := range info.FontFamilies {
		if f == value {
			return
		}
	}
	info.FontFamilies = append(info.FontFamilies, value)
}

func rootFromAttrs(attrs []xml.Attr, dpi, fontSize float64) *rootInfo {
	info := &rootInfo{}
	var (
		width, height       float64
		hasWidth, hasHeight bool
	)
	for _, attr := range attrs {
		switch attr.Name.Local {
		case "width":
			width, hasWidth = parseLength(attr.Value, dpi, fontSize)
		case "height":
			height, hasHeight = parseLength(attr.Value, dpi, fontSize)
		case "viewBox":
			info.ViewBox = parseViewBox(attr.Value)
		}
	}

	vb := info.ViewBox
	switch {
	case hasWidth && hasHeight:
		info.Width, info.Height = width, height
	case hasWidth && vb.Set && vb.W > 0:
		info.Width, info.Height = width, width*vb.H/vb.W
	case hasHeight && vb.Set && vb.H > 0:
		info.Width, info.Height = height*vb.W/vb.H, height
	case vb.Set:
		info.Width, info.Height = vb.W, vb.H
		if hasWidth {
			info.Width = width
		}
		if hasHeight {
			info.Height = height
		}
	default:
		info.Width, info.Height = width, height
	}
	return info
}

// parseLength converts an SVG length to pixels. The second result is false
// for percentages and values that cannot be parsed.
func parseLength(value string, dpi, fontSize float64) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasSuffix(value, "%") {
		return 0, false
	}

	end, unit := parse.Dimension([]byte(value))
	if end == 0 || end+unit != len(value) {
		return 0, false
	}
	num, err := strconv.ParseFloat(value[:end], 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(value[end:]) {
	case "", "px":
		return num, true
	case "in":
		return num * dpi, true
	case "cm":
		return num * dpi / 2.54, true
	case "mm":
		return num * dpi / 25.4, true
	case "pt":
		return num * dpi / 72, true
	case "pc":
		return num * dpi / 6, true
	case "em":
		return num * fontSize, true
	case "ex":
		return num * fontSize / 2, true
	}
	return 0, false
}

func parseViewBox(value string) viewBox {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return viewBox{}
	}
	var nums [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return viewBox{}
		}
		nums[i] = n
	}
	return viewBox{X: nums[0], Y: nums[1], W: nums[2], H: nums[3], Set: true}
}

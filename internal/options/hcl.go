package options

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclOptions mirrors RawOptions using snake_case names and blocks for the
// nested sections:
//
//	dpi             = 150
//	shape_rendering = 1
//	font {
//	  load_system_fonts = false
//	  font_dirs         = ["${env.HOME}/.fonts"]
//	}
//	fit_to {
//	  mode  = "zoom"
//	  value = 2
//	}
type hclOptions struct {
	Path           *string   `hcl:"path,optional"`
	Font           *hclFont  `hcl:"font,block"`
	DPI            *float64  `hcl:"dpi,optional"`
	Languages      []string  `hcl:"languages,optional"`
	ShapeRendering *int64    `hcl:"shape_rendering,optional"`
	TextRendering  *int64    `hcl:"text_rendering,optional"`
	ImageRendering *int64    `hcl:"image_rendering,optional"`
	FitTo          *hclFitTo `hcl:"fit_to,block"`
	Background     *string   `hcl:"background,optional"`
}

type hclFont struct {
	LoadSystemFonts   *bool    `hcl:"load_system_fonts,optional"`
	FontFiles         []string `hcl:"font_files,optional"`
	FontDirs          []string `hcl:"font_dirs,optional"`
	DefaultFontFamily *string  `hcl:"default_font_family,optional"`
	DefaultFontSize   *float64 `hcl:"default_font_size,optional"`
	SerifFamily       *string  `hcl:"serif_family,optional"`
	SansSerifFamily   *string  `hcl:"sans_serif_family,optional"`
	CursiveFamily     *string  `hcl:"cursive_family,optional"`
	FantasyFamily     *string  `hcl:"fantasy_family,optional"`
	MonospaceFamily   *string  `hcl:"monospace_family,optional"`
}

type hclFitTo struct {
	Mode  string   `hcl:"mode"`
	Value *float64 `hcl:"value,optional"`
}

// DecodeHCL decodes an HCL options file. Unsupported arguments and blocks
// are rejected. Expressions may refer to environment variables as env.NAME.
func DecodeHCL(src []byte, filename string) (*RawOptions, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &ValidationError{Err: fmt.Errorf("HCL parse errors: %s", diags.Error())}
	}

	var decoded hclOptions
	diags = gohcl.DecodeBody(file.Body, evalContext(), &decoded)
	if diags.HasErrors() {
		return nil, &ValidationError{Err: fmt.Errorf("%s", diags.Error())}
	}

	raw := &RawOptions{
		Path:           decoded.Path,
		DPI:            decoded.DPI,
		Languages:      decoded.Languages,
		ShapeRendering: decoded.ShapeRendering,
		TextRendering:  decoded.TextRendering,
		ImageRendering: decoded.ImageRendering,
		Background:     decoded.Background,
	}
	if f := decoded.Font; f != nil {
		raw.Font = &RawFontOptions{
			LoadSystemFonts:   f.LoadSystemFonts,
			FontFiles:         f.FontFiles,
			FontDirs:          f.FontDirs,
			DefaultFontFamily: f.DefaultFontFamily,
			DefaultFontSize:   f.DefaultFontSize,
			SerifFamily:       f.SerifFamily,
			SansSerifFamily:   f.SansSerifFamily,
			CursiveFamily:     f.CursiveFamily,
			FantasyFamily:     f.FantasyFamily,
			MonospaceFamily:   f.MonospaceFamily,
		}
	}
	if fit := decoded.FitTo; fit != nil {
		mode := fit.Mode
		raw.FitTo = &RawFitTo{Mode: &mode, Value: fit.Value}
	}
	return raw, nil
}

// ParseHCL decodes and resolves an HCL options file.
func ParseHCL(src []byte, filename string) (*RenderSettings, error) {
	raw, err := DecodeHCL(src, filename)
	if err != nil {
		return nil, err
	}
	return Resolve(raw)
}

func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !hclIdentifier(name) {
			continue
		}
		env[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

// hclIdentifier reports whether name can be used as env.<name>.
func hclIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9', r == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

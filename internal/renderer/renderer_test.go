package renderer

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ankek/terraform-provider-svgraster/internal/options"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="20" viewBox="0 0 10 20">
  <rect x="0" y="0" width="10" height="20" fill="#0000ff"/>
</svg>`

func boolPtr(b bool) *bool        { return &b }
func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int64) *int64       { return &i }

func fitPtr(mode string, value float64) *options.RawFitTo {
	return &options.RawFitTo{Mode: strPtr(mode), Value: floatPtr(value)}
}

// testOptions returns a payload that keeps system fonts out of the test.
func testOptions() *options.RawOptions {
	return &options.RawOptions{
		Font: &options.RawFontOptions{LoadSystemFonts: boolPtr(false)},
	}
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestRender(t *testing.T) {
	tests := []struct {
		name       string
		fit        *options.RawFitTo
		wantWidth  int
		wantHeight int
	}{
		{name: "original", fit: nil, wantWidth: 10, wantHeight: 20},
		{name: "zoom", fit: fitPtr("zoom", 2), wantWidth: 20, wantHeight: 40},
		{name: "fractional zoom rounds up", fit: fitPtr("zoom", 0.25), wantWidth: 3, wantHeight: 5},
		{name: "width", fit: fitPtr("width", 50), wantWidth: 50, wantHeight: 100},
		{name: "height", fit: fitPtr("height", 10), wantWidth: 5, wantHeight: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testOptions()
			raw.FitTo = tt.fit

			result, err := Render(context.Background(), squareSVG, raw)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if result.Empty() {
				t.Fatal("Render() produced no image")
			}
			w, h := decodeSize(t, result.PNG)
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("PNG size = %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
			}
			if result.Width != w || result.Height != h {
				t.Errorf("Result size = %dx%d, PNG says %dx%d", result.Width, result.Height, w, h)
			}
		})
	}
}

func TestRenderFitToExactSize(t *testing.T) {
	tests := []struct {
		name       string
		document   string
		fit        *options.RawFitTo
		wantWidth  int
		wantHeight int
	}{
		{
			name:      "width not divisible",
			document:  `<svg xmlns="http://www.w3.org/2000/svg" width="7" height="7"><rect width="7" height="7"/></svg>`,
			fit:       fitPtr("width", 29),
			wantWidth: 29, wantHeight: 29,
		},
		{
			name:      "height not divisible",
			document:  `<svg xmlns="http://www.w3.org/2000/svg" width="7" height="7"><rect width="7" height="7"/></svg>`,
			fit:       fitPtr("height", 29),
			wantWidth: 29, wantHeight: 29,
		},
		{
			name:      "other side rounds up",
			document:  `<svg xmlns="http://www.w3.org/2000/svg" width="7" height="3"><rect width="7" height="3"/></svg>`,
			fit:       fitPtr("width", 29),
			wantWidth: 29, wantHeight: 13,
		},
	}

	for _, engine := range []Engine{OKSVGEngine{}, CanvasEngine{}} {
		for _, tt := range tests {
			t.Run(engine.Name()+"/"+tt.name, func(t *testing.T) {
				raw := testOptions()
				raw.FitTo = tt.fit

				result, err := Render(context.Background(), tt.document, raw, WithEngine(engine))
				if err != nil {
					t.Fatalf("Render() error = %v", err)
				}
				if w, h := decodeSize(t, result.PNG); w != tt.wantWidth || h != tt.wantHeight {
					t.Errorf("PNG size = %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
				}
			})
		}
	}
}

type sizedTree struct{ w, h float64 }

func (s sizedTree) Size() (float64, float64) { return s.w, s.h }

func TestTargetSizeFitsExactly(t *testing.T) {
	for side := 1; side <= 120; side++ {
		for px := uint32(1); px <= 120; px++ {
			tree := sizedTree{w: float64(side), h: float64(side) / 3}
			if w, _, ok := targetSize(tree, options.FitWidth(px)); !ok || w != int(px) {
				t.Fatalf("width %d over %v: got %d, ok=%t", px, tree.w, w, ok)
			}
			if _, h, ok := targetSize(tree, options.FitHeight(px)); !ok || h != int(px) {
				t.Fatalf("height %d over %v: got %d, ok=%t", px, tree.h, h, ok)
			}
		}
	}
}

func TestRenderEmptyImage(t *testing.T) {
	tests := []struct {
		name     string
		document string
		fit      *options.RawFitTo
	}{
		{
			name:     "zero size",
			document: `<svg xmlns="http://www.w3.org/2000/svg" width="0" height="0"/>`,
		},
		{
			name:     "zero zoom",
			document: squareSVG,
			fit:      fitPtr("zoom", 0),
		},
		{
			name:     "negative zoom",
			document: squareSVG,
			fit:      fitPtr("zoom", -1),
		},
		{
			name:     "zero width",
			document: squareSVG,
			fit:      fitPtr("width", 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testOptions()
			raw.FitTo = tt.fit

			result, err := Render(context.Background(), tt.document, raw)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if result.PNG == nil {
				t.Error("PNG is nil, want empty buffer")
			}
			if len(result.PNG) != 0 {
				t.Errorf("PNG has %d bytes, want 0", len(result.PNG))
			}
		})
	}
}

func TestRenderBackground(t *testing.T) {
	document := `<svg xmlns="http://www.w3.org/2000/svg" width="4" height="4"></svg>`

	tests := []struct {
		name       string
		background *string
		want       [4]uint32
	}{
		{name: "transparent by default", background: nil, want: [4]uint32{0, 0, 0, 0}},
		{name: "hex", background: strPtr("#ff0000"), want: [4]uint32{0xffff, 0, 0, 0xffff}},
		{name: "named", background: strPtr("white"), want: [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testOptions()
			raw.Background = tt.background

			result, err := Render(context.Background(), document, raw)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			img, err := png.Decode(bytes.NewReader(result.PNG))
			if err != nil {
				t.Fatalf("png.Decode() error = %v", err)
			}
			r, g, b, a := img.At(1, 1).RGBA()
			if got := [4]uint32{r, g, b, a}; got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderColorParseError(t *testing.T) {
	for _, bg := range []string{"not-a-color", "", "none"} {
		raw := testOptions()
		raw.Background = strPtr(bg)

		_, err := Render(context.Background(), squareSVG, raw)
		var colorErr *ColorParseError
		if !errors.As(err, &colorErr) {
			t.Errorf("background %q: error = %v, want ColorParseError", bg, err)
			continue
		}
		if colorErr.Value != bg {
			t.Errorf("ColorParseError.Value = %q, want %q", colorErr.Value, bg)
		}
	}
}

func TestRenderDocumentParseError(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{name: "plain text", document: "hello"},
		{name: "empty", document: ""},
		{name: "html root", document: "<html><body/></html>"},
		{name: "truncated", document: `<svg xmlns="http://www.w3.org/2000/svg" width="10"`},
		{name: "mismatched tags", document: `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><g></svg>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(context.Background(), tt.document, testOptions())
			var docErr *DocumentParseError
			if !errors.As(err, &docErr) {
				t.Fatalf("error = %v, want DocumentParseError", err)
			}
			if docErr.Err == nil {
				t.Error("DocumentParseError carries no engine diagnostic")
			}
		})
	}
}

func TestRenderValidationError(t *testing.T) {
	raw := testOptions()
	raw.ShapeRendering = intPtr(7)

	_, err := Render(context.Background(), squareSVG, raw)
	var validationErr *options.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestRenderCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Render(ctx, squareSVG, testOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRenderPNG(t *testing.T) {
	payload := []byte(`{"fitTo": {"mode": "zoom", "value": 2}, "font": {"loadSystemFonts": false}}`)

	data, err := RenderPNG(context.Background(), squareSVG, payload)
	if err != nil {
		t.Fatalf("RenderPNG() error = %v", err)
	}
	if w, h := decodeSize(t, data); w != 20 || h != 40 {
		t.Errorf("size = %dx%d, want 20x40", w, h)
	}

	_, err = RenderPNG(context.Background(), squareSVG, []byte(`{"bogus": 1}`))
	var validationErr *options.ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("unknown field: error = %v, want ValidationError", err)
	}
}

func TestRenderReportsFontWarnings(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.ttf")
	raw := testOptions()
	raw.Font.FontFiles = []string{missing}

	result, err := Render(context.Background(), squareSVG, raw)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Path != missing {
		t.Errorf("Warnings = %v, want one for %s", result.Warnings, missing)
	}
	if result.Empty() {
		t.Error("font warnings must not abort the render")
	}
}

func TestExportPNG(t *testing.T) {
	settings, err := options.Resolve(testOptions())
	if err != nil {
		t.Fatal(err)
	}
	outputPath := filepath.Join(t.TempDir(), "nested", "out.png")

	result, err := ExportPNG(context.Background(), squareSVG, settings, outputPath)
	if err != nil {
		t.Fatalf("ExportPNG() error = %v", err)
	}
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !bytes.Equal(data, result.PNG) {
		t.Error("file contents differ from the rendered PNG")
	}
}

func TestEngineByName(t *testing.T) {
	for _, name := range []string{"oksvg", "OKSVG", "canvas"} {
		e, err := EngineByName(name)
		if err != nil {
			t.Errorf("EngineByName(%q) error = %v", name, err)
			continue
		}
		if e.Name() == "" {
			t.Errorf("EngineByName(%q) has no name", name)
		}
	}
	if _, err := EngineByName("cairo"); err == nil {
		t.Error("EngineByName(cairo) should fail")
	}
	if DefaultEngine().Name() != "oksvg" {
		t.Errorf("DefaultEngine() = %s", DefaultEngine().Name())
	}
}

package options

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestResolveDefaults(t *testing.T) {
	empty, err := Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve(nil) error = %v", err)
	}

	explicit, err := ParseJSON([]byte(`{
		"font": {
			"loadSystemFonts": true,
			"fontFiles": [],
			"fontDirs": [],
			"defaultFontFamily": "Times New Roman",
			"defaultFontSize": 12,
			"serifFamily": "Times New Roman",
			"sansSerifFamily": "Arial",
			"cursiveFamily": "Comic Sans MS",
			"fantasyFamily": "Impact",
			"monospaceFamily": "Courier New"
		},
		"dpi": 96,
		"languages": ["en"],
		"shapeRendering": 2,
		"textRendering": 1,
		"imageRendering": 0,
		"fitTo": {"mode": "original"}
	}`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}

	if !reflect.DeepEqual(empty, explicit) {
		t.Errorf("explicit defaults differ from empty payload:\n got  %+v\n want %+v", explicit, empty)
	}

	fromEmptyObject, err := ParseJSON([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParseJSON({}) error = %v", err)
	}
	if !reflect.DeepEqual(empty, fromEmptyObject) {
		t.Errorf("{} differs from nil payload")
	}
}

func TestDefaultValues(t *testing.T) {
	s := Defaults()

	if s.DPI != 96 {
		t.Errorf("DPI = %v, want 96", s.DPI)
	}
	if !reflect.DeepEqual(s.Languages, []string{"en"}) {
		t.Errorf("Languages = %v, want [en]", s.Languages)
	}
	if s.ShapeRendering != ShapeGeometricPrecision {
		t.Errorf("ShapeRendering = %v", s.ShapeRendering)
	}
	if s.TextRendering != TextOptimizeLegibility {
		t.Errorf("TextRendering = %v", s.TextRendering)
	}
	if s.ImageRendering != ImageOptimizeQuality {
		t.Errorf("ImageRendering = %v", s.ImageRendering)
	}
	if s.FitTo != FitOriginal() {
		t.Errorf("FitTo = %v", s.FitTo)
	}
	if s.Background != nil || s.Path != nil {
		t.Errorf("Background/Path should be unset")
	}
	if !s.Font.LoadSystemFonts {
		t.Error("LoadSystemFonts should default to true")
	}
	for name, v := range map[string]string{
		"default":   s.Font.DefaultFontFamily,
		"serif":     s.Font.SerifFamily,
		"sans":      s.Font.SansSerifFamily,
		"cursive":   s.Font.CursiveFamily,
		"fantasy":   s.Font.FantasyFamily,
		"monospace": s.Font.MonospaceFamily,
	} {
		if v == "" {
			t.Errorf("%s family is empty", name)
		}
	}
}

func TestEnumCodes(t *testing.T) {
	shapes := map[int64]ShapeRendering{0: ShapeOptimizeSpeed, 1: ShapeCrispEdges, 2: ShapeGeometricPrecision}
	for code, want := range shapes {
		got, err := ShapeRenderingFromCode(code)
		if err != nil || got != want {
			t.Errorf("ShapeRenderingFromCode(%d) = %v, %v; want %v", code, got, err, want)
		}
	}
	texts := map[int64]TextRendering{0: TextOptimizeSpeed, 1: TextOptimizeLegibility, 2: TextGeometricPrecision}
	for code, want := range texts {
		got, err := TextRenderingFromCode(code)
		if err != nil || got != want {
			t.Errorf("TextRenderingFromCode(%d) = %v, %v; want %v", code, got, err, want)
		}
	}
	images := map[int64]ImageRendering{0: ImageOptimizeQuality, 1: ImageOptimizeSpeed}
	for code, want := range images {
		got, err := ImageRenderingFromCode(code)
		if err != nil || got != want {
			t.Errorf("ImageRenderingFromCode(%d) = %v, %v; want %v", code, got, err, want)
		}
	}
}

func TestInvalidEnumCodes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantMsg string
	}{
		{"shape 3", `{"shapeRendering": 3}`, "invalid shapeRendering value: 3"},
		{"shape negative", `{"shapeRendering": -1}`, "invalid shapeRendering value: -1"},
		{"text 7", `{"textRendering": 7}`, "invalid textRendering value: 7"},
		{"image 2", `{"imageRendering": 2}`, "invalid imageRendering value: 2"},
		{"image large", `{"imageRendering": 4294967296}`, "4294967296"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.payload))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ParseJSON() error = %v, want ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestUnknownFieldsRejected(t *testing.T) {
	payloads := []string{
		`{"colour": "red"}`,
		`{"font": {"loadSystemFont": false}}`,
		`{"fitTo": {"mode": "zoom", "value": 2, "extra": 1}}`,
		`{"shape_rendering": 1}`,
		`{"DPI": 300}`,
		`{"FitTo": {"mode": "zoom", "value": 2}}`,
		`{"fitTo": {"MODE": "zoom", "Value": 2}}`,
		`{"font": {"LOADSYSTEMFONTS": false}}`,
		`{"Font": {"loadSystemFonts": false}}`,
	}

	for _, p := range payloads {
		_, err := ParseJSON([]byte(p))
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("ParseJSON(%s) error = %v, want ValidationError", p, err)
			continue
		}
		if !strings.Contains(err.Error(), "unknown field") {
			t.Errorf("ParseJSON(%s) error = %q, want unknown field message", p, err)
		}
	}
}

func TestMalformedJSON(t *testing.T) {
	payloads := []string{
		`{"dpi": "high"}`,
		`{"shapeRendering": 1.5}`,
		`[1, 2]`,
		`{"dpi": 96} {"dpi": 72}`,
		`{"dpi": 96`,
	}
	for _, p := range payloads {
		_, err := ParseJSON([]byte(p))
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("ParseJSON(%s) error = %v, want ValidationError", p, err)
		}
	}
}

func TestEmptyPayload(t *testing.T) {
	for _, p := range []string{"", "  ", "null"} {
		raw, err := DecodeJSON([]byte(p))
		if err != nil || raw != nil {
			t.Errorf("DecodeJSON(%q) = %v, %v; want nil, nil", p, raw, err)
		}
	}
}

func TestFitTo(t *testing.T) {
	tests := []struct {
		payload string
		want    FitTo
		wantErr bool
	}{
		{`{"fitTo": {"mode": "original"}}`, FitOriginal(), false},
		{`{"fitTo": {"mode": "width", "value": 300}}`, FitWidth(300), false},
		{`{"fitTo": {"mode": "height", "value": 0}}`, FitHeight(0), false},
		{`{"fitTo": {"mode": "zoom", "value": 2.5}}`, FitZoom(2.5), false},
		{`{"fitTo": {"mode": "width"}}`, FitTo{}, true},
		{`{"fitTo": {"mode": "zoom"}}`, FitTo{}, true},
		{`{"fitTo": {"mode": "width", "value": 10.5}}`, FitTo{}, true},
		{`{"fitTo": {"mode": "height", "value": -4}}`, FitTo{}, true},
		{`{"fitTo": {"mode": "stretch", "value": 1}}`, FitTo{}, true},
		{`{"fitTo": {"mode": "original", "value": 1}}`, FitTo{}, true},
		{`{"fitTo": {"value": 1}}`, FitTo{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			s, err := ParseJSON([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Errorf("error %v is not a ValidationError", err)
				}
				return
			}
			if s.FitTo != tt.want {
				t.Errorf("FitTo = %v, want %v", s.FitTo, tt.want)
			}
		})
	}
}

func TestFitToScale(t *testing.T) {
	tests := []struct {
		fit  FitTo
		want float64
	}{
		{FitOriginal(), 1},
		{FitWidth(200), 2},
		{FitHeight(25), 0.5},
		{FitZoom(3), 3},
	}
	for _, tt := range tests {
		if got := tt.fit.Scale(100, 50); got != tt.want {
			t.Errorf("%v.Scale(100, 50) = %v, want %v", tt.fit, got, tt.want)
		}
	}
	if got := FitWidth(10).Scale(0, 10); got != 0 {
		t.Errorf("Scale on zero width = %v, want 0", got)
	}
}

func TestResolveOverrides(t *testing.T) {
	s, err := ParseJSON([]byte(`{
		"path": "/tmp/doc.svg",
		"dpi": 300,
		"languages": ["de", "en-US"],
		"shapeRendering": 1,
		"background": "#ff000080",
		"font": {"loadSystemFonts": false, "fontFiles": ["a.ttf"], "monospaceFamily": "Fira Code"}
	}`))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if s.Path == nil || *s.Path != "/tmp/doc.svg" {
		t.Errorf("Path = %v", s.Path)
	}
	if s.DPI != 300 {
		t.Errorf("DPI = %v", s.DPI)
	}
	if !reflect.DeepEqual(s.Languages, []string{"de", "en-US"}) {
		t.Errorf("Languages = %v", s.Languages)
	}
	if s.ShapeRendering != ShapeCrispEdges {
		t.Errorf("ShapeRendering = %v", s.ShapeRendering)
	}
	if s.Background == nil || *s.Background != "#ff000080" {
		t.Errorf("Background = %v", s.Background)
	}
	if s.Font.LoadSystemFonts {
		t.Error("LoadSystemFonts should be false")
	}
	if s.Font.MonospaceFamily != "Fira Code" || s.Font.SerifFamily != DefaultSerifFamily {
		t.Errorf("font families = %+v", s.Font)
	}
}

func TestResolveAggregatesProblems(t *testing.T) {
	_, err := ParseJSON([]byte(`{"shapeRendering": 9, "imageRendering": 5, "dpi": 0, "font": {"serifFamily": ""}}`))
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	for _, want := range []string{"4 problems", "shapeRendering value: 9", "imageRendering value: 5", "dpi", "serifFamily"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestResolveDoesNotAliasInput(t *testing.T) {
	raw := &RawOptions{Languages: []string{"fr"}}
	s, err := Resolve(raw)
	if err != nil {
		t.Fatal(err)
	}
	raw.Languages[0] = "xx"
	if s.Languages[0] != "fr" {
		t.Errorf("settings changed with the payload: %v", s.Languages)
	}
}

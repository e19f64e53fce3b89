package options

import "fmt"

// ShapeRendering is the default shape rendering method, used when an element's
// shape-rendering property is "auto".
type ShapeRendering int

const (
	ShapeOptimizeSpeed ShapeRendering = iota
	ShapeCrispEdges
	ShapeGeometricPrecision
)

func (s ShapeRendering) String() string {
	switch s {
	case ShapeOptimizeSpeed:
		return "optimizeSpeed"
	case ShapeCrispEdges:
		return "crispEdges"
	case ShapeGeometricPrecision:
		return "geometricPrecision"
	default:
		return fmt.Sprintf("ShapeRendering(%d)", int(s))
	}
}

// TextRendering is the default text rendering method.
type TextRendering int

const (
	TextOptimizeSpeed TextRendering = iota
	TextOptimizeLegibility
	TextGeometricPrecision
)

func (t TextRendering) String() string {
	switch t {
	case TextOptimizeSpeed:
		return "optimizeSpeed"
	case TextOptimizeLegibility:
		return "optimizeLegibility"
	case TextGeometricPrecision:
		return "geometricPrecision"
	default:
		return fmt.Sprintf("TextRendering(%d)", int(t))
	}
}

// ImageRendering is the default image rendering method.
type ImageRendering int

const (
	ImageOptimizeQuality ImageRendering = iota
	ImageOptimizeSpeed
)

func (i ImageRendering) String() string {
	switch i {
	case ImageOptimizeQuality:
		return "optimizeQuality"
	case ImageOptimizeSpeed:
		return "optimizeSpeed"
	default:
		return fmt.Sprintf("ImageRendering(%d)", int(i))
	}
}

// FitMode selects how the output size relates to the document size.
type FitMode int

const (
	FitModeOriginal FitMode = iota
	FitModeWidth
	FitModeHeight
	FitModeZoom
)

func (m FitMode) String() string {
	switch m {
	case FitModeOriginal:
		return "original"
	case FitModeWidth:
		return "width"
	case FitModeHeight:
		return "height"
	case FitModeZoom:
		return "zoom"
	default:
		return fmt.Sprintf("FitMode(%d)", int(m))
	}
}

// FitTo is a tagged variant. Pixels is set for width/height, Factor for zoom.
type FitTo struct {
	Mode   FitMode
	Pixels uint32
	Factor float64
}

// FitOriginal keeps the document's intrinsic size.
func FitOriginal() FitTo { return FitTo{Mode: FitModeOriginal} }

// FitWidth scales the document to the given pixel width.
func FitWidth(px uint32) FitTo { return FitTo{Mode: FitModeWidth, Pixels: px} }

// FitHeight scales the document to the given pixel height.
func FitHeight(px uint32) FitTo { return FitTo{Mode: FitModeHeight, Pixels: px} }

// FitZoom scales the document by factor.
func FitZoom(factor float64) FitTo { return FitTo{Mode: FitModeZoom, Factor: factor} }

// Scale returns the factor to apply to a document of the given intrinsic size.
func (f FitTo) Scale(width, height float64) float64 {
	switch f.Mode {
	case FitModeWidth:
		if width <= 0 {
			return 0
		}
		return float64(f.Pixels) / width
	case FitModeHeight:
		if height <= 0 {
			return 0
		}
		return float64(f.Pixels) / height
	case FitModeZoom:
		return f.Factor
	default:
		return 1
	}
}

func (f FitTo) String() string {
	switch f.Mode {
	case FitModeWidth, FitModeHeight:
		return fmt.Sprintf("%s(%d)", f.Mode, f.Pixels)
	case FitModeZoom:
		return fmt.Sprintf("%s(%g)", f.Mode, f.Factor)
	default:
		return f.Mode.String()
	}
}

// FontSettings holds font related options.
type FontSettings struct {
	LoadSystemFonts bool
	FontFiles       []string
	FontDirs        []string

	// Used when a document sets no font-family / font-size.
	DefaultFontFamily string
	DefaultFontSize   float64

	SerifFamily     string
	SansSerifFamily string
	CursiveFamily   string
	FantasyFamily   string
	MonospaceFamily string
}

// RenderSettings is the resolved configuration for a single render call.
type RenderSettings struct {
	// Path is the document location, used to resolve relative references.
	Path *string
	// DPI affects conversion of absolute units (in, cm, mm, pt, pc).
	DPI float64
	// Languages resolves systemLanguage conditionals. Format: en, en-US.
	Languages      []string
	ShapeRendering ShapeRendering
	TextRendering  TextRendering
	ImageRendering ImageRendering
	FitTo          FitTo
	// Background is the unparsed background colour; nil means transparent.
	Background *string
	Font       FontSettings
}

// Default values.
const (
	DefaultDPI             = 96.0
	DefaultFontFamily      = "Times New Roman"
	DefaultFontSize        = 12.0
	DefaultSerifFamily     = "Times New Roman"
	DefaultSansSerifFamily = "Arial"
	DefaultCursiveFamily   = "Comic Sans MS"
	DefaultFantasyFamily   = "Impact"
	DefaultMonospaceFamily = "Courier New"
)

// DefaultFontSettings returns the font settings used when none are given.
func DefaultFontSettings() FontSettings {
	return FontSettings{
		LoadSystemFonts:   true,
		FontFiles:         []string{},
		FontDirs:          []string{},
		DefaultFontFamily: DefaultFontFamily,
		DefaultFontSize:   DefaultFontSize,
		SerifFamily:       DefaultSerifFamily,
		SansSerifFamily:   DefaultSansSerifFamily,
		CursiveFamily:     DefaultCursiveFamily,
		FantasyFamily:     DefaultFantasyFamily,
		MonospaceFamily:   DefaultMonospaceFamily,
	}
}

// Defaults returns the settings produced by an empty payload.
func Defaults() RenderSettings {
	return RenderSettings{
		DPI:            DefaultDPI,
		Languages:      []string{"en"},
		ShapeRendering: ShapeGeometricPrecision,
		TextRendering:  TextOptimizeLegibility,
		ImageRendering: ImageOptimizeQuality,
		FitTo:          FitOriginal(),
		Font:           DefaultFontSettings(),
	}
}

package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"

	"github.com/ankek/terraform-provider-svgraster/internal/fonts"
	"github.com/ankek/terraform-provider-svgraster/internal/options"
)

// maxPixels bounds the raster allocation; larger targets produce no image.
const maxPixels = 1 << 27

// Tree is a parsed document ready to be rasterized.
type Tree interface {
	// Size is the intrinsic size in pixels.
	Size() (width, height float64)
}

// Engine parses and rasterizes documents.
type Engine interface {
	Name() string
	// Parse builds a tree from document. Errors are reported as the
	// engine's diagnostic text.
	Parse(document string, settings *options.RenderSettings, db *fonts.Database) (Tree, error)
	// Rasterize draws tree at the size selected by fit over background
	// (nil for transparent). It returns nil when the target is empty.
	Rasterize(tree Tree, fit options.FitTo, background color.Color) *image.RGBA
}

var engines = map[string]Engine{
	"oksvg":  OKSVGEngine{},
	"canvas": CanvasEngine{},
}

// DefaultEngine is used when no engine is selected.
func DefaultEngine() Engine { return OKSVGEngine{} }

// EngineByName looks up an engine by name.
func EngineByName(name string) (Engine, error) {
	if e, ok := engines[strings.ToLower(name)]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("unknown engine %q (available: %s)", name, strings.Join(EngineNames(), ", "))
}

// EngineNames lists the available engines.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// targetSize computes the output size in pixels. A width or height fit sets
// that side exactly and scales the other, rounding up like the intrinsic
// size itself. ok is false for empty or oversized targets.
func targetSize(tree Tree, fit options.FitTo) (w, h int, ok bool) {
	iw, ih := tree.Size()
	if iw <= 0 || ih <= 0 {
		return 0, 0, false
	}
	var fw, fh float64
	switch fit.Mode {
	case options.FitModeWidth:
		fw = float64(fit.Pixels)
		fh = math.Ceil(ih * fw / iw)
	case options.FitModeHeight:
		fh = float64(fit.Pixels)
		fw = math.Ceil(iw * fh / ih)
	default:
		scale := fit.Scale(iw, ih)
		fw = math.Ceil(iw * scale)
		fh = math.Ceil(ih * scale)
	}
	if math.IsNaN(fw) || math.IsNaN(fh) || fw < 1 || fh < 1 || fw*fh > maxPixels {
		return 0, 0, false
	}
	return int(fw), int(fh), true
}

// newCanvas allocates the output image, filled with background if any.
func newCanvas(w, h int, background color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	}
	return img
}

// OKSVGEngine renders with github.com/srwiley/oksvg and rasterx.
type OKSVGEngine struct{}

type oksvgTree struct {
	icon          *oksvg.SvgIcon
	root          *rootInfo
	width, height float64
}

func (t *oksvgTree) Size() (float64, float64) { return t.width, t.height }

func (OKSVGEngine) Name() string { return "oksvg" }

// Parse reads the document with oksvg. Elements oksvg does not support are
// skipped. The font database is not consulted: oksvg does not draw text.
func (OKSVGEngine) Parse(document string, settings *options.RenderSettings, _ *fonts.Database) (Tree, error) {
	root, err := inspectRoot(document, settings.DPI, settings.Font.DefaultFontSize)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(document), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}

	width, height := root.Width, root.Height
	if width <= 0 && height <= 0 && !root.ViewBox.Set {
		width, height = icon.ViewBox.W, icon.ViewBox.H
	}
	return &oksvgTree{icon: icon, root: root, width: width, height: height}, nil
}

func (OKSVGEngine) Rasterize(tree Tree, fit options.FitTo, background color.Color) *image.RGBA {
	t, ok := tree.(*oksvgTree)
	if !ok {
		return nil
	}
	w, h, ok := targetSize(t, fit)
	if !ok {
		return nil
	}

	img := newCanvas(w, h, background)

	// Fit the viewBox into the target keeping its aspect ratio, centred.
	x, y, tw, th := 0.0, 0.0, float64(w), float64(h)
	vb := t.icon.ViewBox
	if vb.W > 0 && vb.H > 0 {
		s := math.Min(tw/vb.W, th/vb.H)
		x, y = (tw-vb.W*s)/2, (th-vb.H*s)/2
		tw, th = vb.W*s, vb.H*s
	}
	t.icon.SetTarget(x, y, tw, th)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	t.icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img
}

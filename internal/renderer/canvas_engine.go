package renderer

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	tdfont "github.com/tdewolff/font"
	"golang.org/x/image/draw"

	"github.com/ankek/terraform-provider-svgraster/internal/fonts"
	"github.com/ankek/terraform-provider-svgraster/internal/options"
)

// canvasImplicitFamily is what canvas uses for text without a font-family.
const canvasImplicitFamily = "serif"

// canvasFonts guards canvas's process-wide font index, which is replaced
// for every parse.
var canvasFonts sync.Mutex

// CanvasEngine renders with github.com/tdewolff/canvas. Text is drawn with
// faces from the font database.
type CanvasEngine struct{}

type canvasTree struct {
	c             *canvas.Canvas
	width, height float64
}

func (t *canvasTree) Size() (float64, float64) { return t.width, t.height }

func (CanvasEngine) Name() string { return "canvas" }

// Parse reads the document with canvas. Faces are resolved from db while the
// document is parsed; a font-family nothing can satisfy fails the parse.
func (CanvasEngine) Parse(document string, settings *options.RenderSettings, db *fonts.Database) (tree Tree, err error) {
	root, err := inspectRoot(document, settings.DPI, settings.Font.DefaultFontSize)
	if err != nil {
		return nil, err
	}

	canvasFonts.Lock()
	defer canvasFonts.Unlock()

	cleanup, err := installCanvasFonts(db, append(root.FontFamilies, canvasImplicitFamily))
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// canvas panics when a font cannot be loaded
	defer func() {
		if r := recover(); r != nil {
			tree, err = nil, fmt.Errorf("canvas: %v", r)
		}
	}()

	c, err := canvas.ParseSVG(strings.NewReader(document))
	if err != nil {
		return nil, err
	}
	return &canvasTree{c: c, width: root.Width, height: root.Height}, nil
}

func (CanvasEngine) Rasterize(tree Tree, fit options.FitTo, background color.Color) *image.RGBA {
	t, ok := tree.(*canvasTree)
	if !ok || t.c.W <= 0 || t.c.H <= 0 {
		return nil
	}
	w, h, ok := targetSize(t, fit)
	if !ok {
		return nil
	}

	// The canvas is sized in millimetres; pick the resolution that maps its
	// width onto the target.
	dpmm := float64(w) / t.c.W
	src := rasterizer.Draw(t.c, canvas.DPMM(dpmm), canvas.DefaultColorSpace)

	img := newCanvas(w, h, background)
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Over)
	return img
}

// installCanvasFonts points canvas's font index at the faces db resolves for
// each font-family value. The returned func removes the files written for
// downloaded faces. The caller must hold canvasFonts.
func installCanvasFonts(db *fonts.Database, families []string) (func(), error) {
	dir, err := os.MkdirTemp("", "svgraster-fonts-")
	if err != nil {
		return nil, fmt.Errorf("failed to create font index directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	index := &tdfont.SystemFonts{
		Generics: map[string][]string{},
		Fonts:    map[string]map[tdfont.Style]tdfont.FontMetadata{},
	}
	written := 0
	for _, value := range families {
		key, faces := resolveCanvasFamily(db, value)
		if len(faces) == 0 {
			continue
		}
		if _, ok := index.Fonts[key]; ok {
			continue
		}
		for _, face := range faces {
			// canvas only loads the first face of a collection
			if face.Index != 0 {
				continue
			}
			filename := face.Location
			if face.Data != nil {
				written++
				filename = filepath.Join(dir, fmt.Sprintf("face-%d.ttf", written))
				if err := os.WriteFile(filename, face.Data, 0o600); err != nil {
					cleanup()
					return nil, fmt.Errorf("failed to stage font %s: %w", face.Location, err)
				}
			}
			index.Add(tdfont.FontMetadata{
				Filename: filename,
				Family:   key,
				Style:    tdfont.ParseStyleCSS(int(face.Weight), face.Italic),
			})
		}
	}

	indexPath := filepath.Join(dir, "index.gob")
	if err := index.Save(indexPath); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to write font index: %w", err)
	}
	if err := canvas.CacheSystemFonts(indexPath, nil); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to load font index: %w", err)
	}
	return cleanup, nil
}

// resolveCanvasFamily picks the faces for a font-family list: the first
// entry the database has faces for, generic names mapped through the
// database, else the default family. canvas looks the list up by its first
// entry, so that is the key.
func resolveCanvasFamily(db *fonts.Database, value string) (string, []fonts.Face) {
	parts := strings.Split(value, ",")
	key := strings.TrimSpace(parts[0])
	if db == nil {
		return key, nil
	}
	for _, part := range parts {
		if faces := db.Faces(db.ResolveFamily(part)); len(faces) > 0 {
			return key, faces
		}
	}
	return key, db.Faces(db.ResolveFamily(""))
}

// Package fonts assembles the font database handed to the rendering engine.
// A Database is built fresh for every render call and never shared.
package fonts

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/fontscan"
)

// Generic is a CSS generic font family.
type Generic string

const (
	Serif     Generic = "serif"
	SansSerif Generic = "sans-serif"
	Cursive   Generic = "cursive"
	Fantasy   Generic = "fantasy"
	Monospace Generic = "monospace"
)

// Generics lists the generic families in registration order.
var Generics = []Generic{Serif, SansSerif, Cursive, Fantasy, Monospace}

// Face describes one face of a font file, enough for an engine that loads
// fonts by file to find it.
type Face struct {
	Family string
	Weight float32
	Italic bool
	// Location is the file path or URL the face was loaded from.
	Location string
	// Index is the face index inside a font collection.
	Index int
	// Data holds the font file for faces that were downloaded.
	Data []byte
}

// Database is a font lookup database: the faces loaded from font files, the
// system font index, the generic family fallbacks and the document defaults.
type Database struct {
	fontMap *fontscan.FontMap

	faces         []Face
	generic       map[Generic]string
	sources       []string
	systemFonts   bool
	defaultFamily string
	defaultSize   float64
}

func newDatabase(logger fontscan.Logger) *Database {
	return &Database{
		fontMap: fontscan.NewFontMap(logger),
		generic: map[Generic]string{
			Serif:     "Times New Roman",
			SansSerif: "Arial",
			Cursive:   "Comic Sans MS",
			Fantasy:   "Impact",
			Monospace: "Courier New",
		},
	}
}

// SetGenericFamily overwrites the family used for a generic name.
func (db *Database) SetGenericFamily(g Generic, family string) {
	db.generic[g] = family
}

// GenericFamily returns the family registered for g.
func (db *Database) GenericFamily(g Generic) string {
	return db.generic[g]
}

// ResolveFamily maps a requested family to the one to look up: generic names
// go through the fallback table and an empty name means the default family.
func (db *Database) ResolveFamily(name string) string {
	name = strings.Trim(strings.TrimSpace(name), `"'`)
	if name == "" {
		return db.defaultFamily
	}
	if family, ok := db.generic[Generic(strings.ToLower(name))]; ok {
		return family
	}
	return name
}

// Faces returns the faces of family. Faces loaded from font files and
// directories come first, in load order, then matching system fonts.
func (db *Database) Faces(family string) []Face {
	want := font.NormalizeFamily(family)
	var faces []Face
	for _, f := range db.faces {
		if font.NormalizeFamily(f.Family) == want {
			faces = append(faces, f)
		}
	}
	if !db.systemFonts {
		return faces
	}
	for _, loc := range db.fontMap.FindSystemFonts(family) {
		if f, ok := describeSystemFace(loc); ok {
			faces = append(faces, f)
		}
	}
	return faces
}

func describeSystemFace(loc fontscan.Location) (Face, bool) {
	file, err := os.Open(loc.File)
	if err != nil {
		return Face{}, false
	}
	defer file.Close()

	loaders, err := opentype.NewLoaders(file)
	if err != nil || int(loc.Index) >= len(loaders) {
		return Face{}, false
	}
	desc, _ := font.Describe(loaders[loc.Index], nil)
	return newFace(desc, loc.File, int(loc.Index), nil), true
}

func newFace(desc font.Description, location string, index int, data []byte) Face {
	return Face{
		Family:   desc.Family,
		Weight:   float32(desc.Aspect.Weight),
		Italic:   desc.Aspect.Style == font.StyleItalic,
		Location: location,
		Index:    index,
		Data:     data,
	}
}

// Sources returns the font files registered, in load order.
func (db *Database) Sources() []string {
	return append([]string(nil), db.sources...)
}

// SystemFonts reports whether system fonts were loaded.
func (db *Database) SystemFonts() bool {
	return db.systemFonts
}

// DefaultFamily is used when a document sets no font-family.
func (db *Database) DefaultFamily() string {
	return db.defaultFamily
}

// DefaultSize is used when a document sets no font-size.
func (db *Database) DefaultSize() float64 {
	return db.defaultSize
}

func (db *Database) String() string {
	return fmt.Sprintf("fonts.Database{system: %t, files: %d, default: %q %gpx}",
		db.systemFonts, len(db.sources), db.defaultFamily, db.defaultSize)
}

package fonts

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/ankek/terraform-provider-svgraster/internal/options"
)

// fontExtensions are the files picked up when scanning a directory.
var fontExtensions = map[string]bool{
	".ttf": true,
	".otf": true,
	".ttc": true,
	".otc": true,
}

// Warning is a non-fatal font loading failure.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("Failed to load '%s' cause %v.", w.Path, w.Err)
}

// Reporter receives warnings as they happen.
type Reporter func(Warning)

// BuildResult is a database together with the warnings recorded while
// building it.
type BuildResult struct {
	DB       *Database
	Warnings []Warning
}

type builder struct {
	reporter Reporter
	cacheDir string
	client   *retryablehttp.Client
	logger   func(msg string)

	warnings []Warning
}

// Option configures Build.
type Option func(*builder)

// WithReporter installs a callback invoked for every warning.
func WithReporter(r Reporter) Option {
	return func(b *builder) { b.reporter = r }
}

// WithCacheDir sets the directory used to cache the system font index.
// Defaults to <user cache dir>/svgraster.
func WithCacheDir(dir string) Option {
	return func(b *builder) { b.cacheDir = dir }
}

// WithHTTPClient sets the client used to download remote font files.
func WithHTTPClient(c *retryablehttp.Client) Option {
	return func(b *builder) { b.client = c }
}

// WithEngineLogger receives diagnostics printed by the font scanner.
func WithEngineLogger(fn func(msg string)) Option {
	return func(b *builder) { b.logger = fn }
}

type printfLogger func(msg string)

func (l printfLogger) Printf(format string, args ...interface{}) {
	if l != nil {
		l(fmt.Sprintf(format, args...))
	}
}

// Build creates a font database from settings. It never fails: every font
// file or directory that cannot be loaded is recorded as a warning and the
// remaining fonts are still loaded. Order: system fonts, font files, font
// directories, generic family fallbacks.
func Build(ctx context.Context, settings options.FontSettings, opts ...Option) *BuildResult {
	b := &builder{}
	for _, opt := range opts {
		opt(b)
	}

	db := newDatabase(printfLogger(b.logger))
	db.defaultFamily = settings.DefaultFontFamily
	db.defaultSize = settings.DefaultFontSize

	if settings.LoadSystemFonts {
		b.loadSystemFonts(db)
	}

	for _, path := range settings.FontFiles {
		b.loadFontFile(ctx, db, path)
	}

	for _, dir := range settings.FontDirs {
		b.loadFontDir(db, dir)
	}

	db.SetGenericFamily(Serif, settings.SerifFamily)
	db.SetGenericFamily(SansSerif, settings.SansSerifFamily)
	db.SetGenericFamily(Cursive, settings.CursiveFamily)
	db.SetGenericFamily(Fantasy, settings.FantasyFamily)
	db.SetGenericFamily(Monospace, settings.MonospaceFamily)

	return &BuildResult{DB: db, Warnings: b.warnings}
}

func (b *builder) warn(path string, err error) {
	w := Warning{Path: path, Err: err}
	b.warnings = append(b.warnings, w)
	if b.reporter != nil {
		b.reporter(w)
	}
}

func (b *builder) loadSystemFonts(db *Database) {
	cacheDir := b.cacheDir
	if cacheDir == "" {
		userCache, err := os.UserCacheDir()
		if err != nil {
			userCache = os.TempDir()
		}
		cacheDir = filepath.Join(userCache, "svgraster")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		b.warn(cacheDir, fmt.Errorf("failed to create font cache directory: %w", err))
		return
	}
	if err := db.fontMap.UseSystemFonts(cacheDir); err != nil {
		b.warn("<system fonts>", err)
		return
	}
	db.systemFonts = true
}

func (b *builder) loadFontFile(ctx context.Context, db *Database, path string) {
	var (
		data []byte
		err  error
	)
	if isRemote(path) {
		data, err = fetchFont(ctx, b.client, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		b.warn(path, err)
		return
	}
	if err := addFont(db, data, path); err != nil {
		b.warn(path, err)
	}
}

func (b *builder) loadFontDir(db *Database, dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			b.warn(path, err)
			// keep scanning siblings of an unreadable entry
			return nil
		}
		if d.IsDir() || !fontExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			b.warn(path, err)
			return nil
		}
		if err := addFont(db, data, path); err != nil {
			b.warn(path, err)
		}
		return nil
	})
	if err != nil {
		b.warn(dir, err)
	}
}

// addFont registers every face in data. Downloaded files keep their bytes
// since there is no file to reopen.
func addFont(db *Database, data []byte, location string) error {
	loaders, err := opentype.NewLoaders(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("unsupported font resource: %w", err)
	}
	var keep []byte
	if isRemote(location) {
		keep = data
	}
	for i, ld := range loaders {
		desc, _ := font.Describe(ld, nil)
		db.faces = append(db.faces, newFace(desc, location, i, keep))
	}
	db.sources = append(db.sources, location)
	return nil
}

// Package renderer turns SVG documents into PNG images. It resolves the
// render options, assembles the font database, hands the document to a
// rasterization engine and packages the result as PNG bytes.
package renderer

import (
	"bytes"
	"context"
	"image/png"

	"github.com/ankek/terraform-provider-svgraster/internal/fonts"
	"github.com/ankek/terraform-provider-svgraster/internal/options"
)

// Result is a rendered image. PNG is empty (but not nil) when the document
// has no drawable area.
type Result struct {
	PNG      []byte
	Width    int
	Height   int
	Warnings []fonts.Warning
}

// Empty reports whether the render produced no image.
func (r *Result) Empty() bool {
	return len(r.PNG) == 0
}

type config struct {
	engine      Engine
	fontOptions []fonts.Option
	buildFonts  func(ctx context.Context, settings options.FontSettings, opts ...fonts.Option) *fonts.BuildResult
}

// Option configures a render.
type Option func(*config)

// WithEngine selects the rasterization engine.
func WithEngine(e Engine) Option {
	return func(c *config) {
		if e != nil {
			c.engine = e
		}
	}
}

// WithFontOptions passes options to the font database builder.
func WithFontOptions(opts ...fonts.Option) Option {
	return func(c *config) {
		c.fontOptions = append(c.fontOptions, opts...)
	}
}

// WithFontBuilder replaces fonts.Build as the font database builder.
func WithFontBuilder(build func(ctx context.Context, settings options.FontSettings, opts ...fonts.Option) *fonts.BuildResult) Option {
	return func(c *config) {
		if build != nil {
			c.buildFonts = build
		}
	}
}

// Render resolves raw and renders document with the result. A nil raw
// renders with the defaults.
func Render(ctx context.Context, document string, raw *options.RawOptions, opts ...Option) (*Result, error) {
	settings, err := options.Resolve(raw)
	if err != nil {
		return nil, err
	}
	return RenderSettings(ctx, document, settings, opts...)
}

// RenderPNG renders document with a JSON options payload and returns the
// PNG bytes.
func RenderPNG(ctx context.Context, document string, optionsJSON []byte, opts ...Option) ([]byte, error) {
	raw, err := options.DecodeJSON(optionsJSON)
	if err != nil {
		return nil, err
	}
	result, err := Render(ctx, document, raw, opts...)
	if err != nil {
		return nil, err
	}
	return result.PNG, nil
}

// RenderSettings renders document with already resolved settings.
func RenderSettings(ctx context.Context, document string, settings *options.RenderSettings, opts ...Option) (*Result, error) {
	cfg := config{engine: DefaultEngine(), buildFonts: fonts.Build}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Check context before starting
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	background, err := parseBackground(settings.Background)
	if err != nil {
		return nil, err
	}

	built := cfg.buildFonts(ctx, settings.Font, cfg.fontOptions...)
	result := &Result{PNG: []byte{}, Warnings: built.Warnings}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	tree, err := cfg.engine.Parse(document, settings, built.DB)
	if err != nil {
		return nil, &DocumentParseError{Err: err}
	}

	img := cfg.engine.Rasterize(tree, settings.FitTo, background)
	if img == nil {
		return result, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &EncodeError{Err: err}
	}
	result.PNG = buf.Bytes()
	result.Width = img.Bounds().Dx()
	result.Height = img.Bounds().Dy()
	return result, nil
}

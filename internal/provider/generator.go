// Package provider implements the svgraster Terraform provider: a render_png
// function, the svgraster_png data source and the svgraster_png_file
// resource, all backed by the same Generator.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/ankek/terraform-provider-svgraster/internal/fonts"
	"github.com/ankek/terraform-provider-svgraster/internal/interfaces"
	"github.com/ankek/terraform-provider-svgraster/internal/options"
	"github.com/ankek/terraform-provider-svgraster/internal/renderer"
)

// ErrNoDocument is returned when neither svg nor source_path is set.
var ErrNoDocument = errors.New("either svg or source_path must be provided")

// Generator renders documents for the data source, the resource and the
// function so that all three behave the same way.
type Generator struct {
	// CacheDir overrides where the system font index is cached.
	CacheDir string

	// Nil fields fall back to the interfaces.Default* implementations.
	Resolver interfaces.OptionsResolver
	Fonts    interfaces.FontDatabaseBuilder
	Renderer interfaces.Renderer
	Paths    interfaces.PathValidator
}

func (g *Generator) optionsResolver() interfaces.OptionsResolver {
	if g.Resolver != nil {
		return g.Resolver
	}
	return interfaces.DefaultOptionsResolver
}

func (g *Generator) fontBuilder() interfaces.FontDatabaseBuilder {
	if g.Fonts != nil {
		return g.Fonts
	}
	return interfaces.DefaultFontDatabaseBuilder
}

func (g *Generator) pngRenderer() interfaces.Renderer {
	if g.Renderer != nil {
		return g.Renderer
	}
	return interfaces.DefaultRenderer
}

func (g *Generator) pathValidator() interfaces.PathValidator {
	if g.Paths != nil {
		return g.Paths
	}
	return interfaces.DefaultPathValidator
}

// GenerateConfig describes one render.
type GenerateConfig struct {
	// Document is the SVG source. Exactly one of Document and SourcePath
	// must be set.
	Document   string
	SourcePath string
	Options    *options.RawOptions
	// Engine selects the rasterizer; empty means the default.
	Engine string
	// OutputPath, when set, receives the PNG.
	OutputPath string
}

// Generate validates cfg, renders the document and optionally writes it.
//
// The steps are:
//  1. Validate output and source paths
//  2. Read the source document
//  3. Resolve the options and the engine
//  4. Render, logging font warnings through tflog
func (g *Generator) Generate(ctx context.Context, cfg GenerateConfig) (*renderer.Result, error) {
	if cfg.OutputPath != "" {
		if err := g.pathValidator().ValidateOutputPath(cfg.OutputPath); err != nil {
			return nil, fmt.Errorf("invalid output path: %w", err)
		}
	}

	document, err := g.loadDocument(ctx, cfg)
	if err != nil {
		return nil, err
	}

	settings, err := g.optionsResolver().Resolve(cfg.Options)
	if err != nil {
		return nil, err
	}

	engine := renderer.DefaultEngine()
	if cfg.Engine != "" {
		engine, err = renderer.EngineByName(cfg.Engine)
		if err != nil {
			return nil, err
		}
	}

	tflog.Debug(ctx, "Rendering SVG", map[string]interface{}{
		"engine": engine.Name(),
		"fit_to": settings.FitTo.String(),
		"dpi":    settings.DPI,
	})

	opts := []renderer.Option{
		renderer.WithEngine(engine),
		renderer.WithFontOptions(g.fontOptions(ctx)...),
		renderer.WithFontBuilder(g.fontBuilder().Build),
	}

	var result *renderer.Result
	if cfg.OutputPath != "" {
		result, err = g.pngRenderer().ExportPNG(ctx, document, settings, cfg.OutputPath, opts...)
	} else {
		result, err = g.pngRenderer().RenderSettings(ctx, document, settings, opts...)
	}
	if err != nil {
		return nil, err
	}

	if result.Empty() {
		tflog.Warn(ctx, "SVG has no drawable area, produced an empty PNG buffer")
	}
	return result, nil
}

func (g *Generator) loadDocument(ctx context.Context, cfg GenerateConfig) (string, error) {
	// Check context before proceeding
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	switch {
	case cfg.SourcePath != "" && cfg.Document != "":
		return "", errors.New("only one of svg and source_path may be set")
	case cfg.SourcePath != "":
		if err := g.pathValidator().ValidateInputPath(cfg.SourcePath, false); err != nil {
			return "", fmt.Errorf("invalid source path: %w", err)
		}
		return renderer.ReadDocument(cfg.SourcePath)
	case cfg.Document != "":
		return cfg.Document, nil
	}
	return "", ErrNoDocument
}

func (g *Generator) fontOptions(ctx context.Context) []fonts.Option {
	opts := []fonts.Option{
		fonts.WithReporter(tflogReporter(ctx)),
		fonts.WithHTTPClient(fonts.NewHTTPClient(tflogLogger{ctx: ctx})),
		fonts.WithEngineLogger(func(msg string) {
			tflog.Trace(ctx, msg)
		}),
	}
	if g.CacheDir != "" {
		opts = append(opts, fonts.WithCacheDir(g.CacheDir))
	}
	return opts
}

// tflogReporter logs font warnings without failing the render.
func tflogReporter(ctx context.Context) fonts.Reporter {
	return func(w fonts.Warning) {
		tflog.Warn(ctx, w.String(), map[string]interface{}{
			"path":  w.Path,
			"error": w.Err.Error(),
		})
	}
}

// tflogLogger adapts tflog to retryablehttp's leveled logger.
type tflogLogger struct {
	ctx context.Context
}

func (l tflogLogger) Error(msg string, keysAndValues ...interface{}) {
	tflog.Error(l.ctx, msg, fields(keysAndValues))
}

func (l tflogLogger) Warn(msg string, keysAndValues ...interface{}) {
	tflog.Warn(l.ctx, msg, fields(keysAndValues))
}

func (l tflogLogger) Info(msg string, keysAndValues ...interface{}) {
	tflog.Info(l.ctx, msg, fields(keysAndValues))
}

func (l tflogLogger) Debug(msg string, keysAndValues ...interface{}) {
	tflog.Debug(l.ctx, msg, fields(keysAndValues))
}

func fields(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}

// Package interfaces defines interfaces for dependency injection and testing
package interfaces

import (
	"context"

	"github.com/ankek/terraform-provider-svgraster/internal/fonts"
	"github.com/ankek/terraform-provider-svgraster/internal/options"
	"github.com/ankek/terraform-provider-svgraster/internal/renderer"
	"github.com/ankek/terraform-provider-svgraster/internal/validation"
)

// OptionsResolver turns a raw payload into render settings
type OptionsResolver interface {
	Resolve(raw *options.RawOptions) (*options.RenderSettings, error)
}

// FontDatabaseBuilder assembles the font database for a render
type FontDatabaseBuilder interface {
	Build(ctx context.Context, settings options.FontSettings, opts ...fonts.Option) *fonts.BuildResult
}

// Renderer renders a document with resolved settings, in memory or to a file
type Renderer interface {
	RenderSettings(ctx context.Context, document string, settings *options.RenderSettings, opts ...renderer.Option) (*renderer.Result, error)
	ExportPNG(ctx context.Context, document string, settings *options.RenderSettings, outputPath string, opts ...renderer.Option) (*renderer.Result, error)
}

// PathValidator defines the interface for validating file paths
type PathValidator interface {
	// ValidateOutputPath validates an output path for security and accessibility
	ValidateOutputPath(path string) error

	// ValidateInputPath validates an input path (SVG file or font directory)
	ValidateInputPath(path string, mustBeDir bool) error
}

// OptionsResolverFunc adapts a function to OptionsResolver
type OptionsResolverFunc func(raw *options.RawOptions) (*options.RenderSettings, error)

func (f OptionsResolverFunc) Resolve(raw *options.RawOptions) (*options.RenderSettings, error) {
	return f(raw)
}

// FontDatabaseBuilderFunc adapts a function to FontDatabaseBuilder
type FontDatabaseBuilderFunc func(ctx context.Context, settings options.FontSettings, opts ...fonts.Option) *fonts.BuildResult

func (f FontDatabaseBuilderFunc) Build(ctx context.Context, settings options.FontSettings, opts ...fonts.Option) *fonts.BuildResult {
	return f(ctx, settings, opts...)
}

type pngRenderer struct{}

func (pngRenderer) RenderSettings(ctx context.Context, document string, settings *options.RenderSettings, opts ...renderer.Option) (*renderer.Result, error) {
	return renderer.RenderSettings(ctx, document, settings, opts...)
}

func (pngRenderer) ExportPNG(ctx context.Context, document string, settings *options.RenderSettings, outputPath string, opts ...renderer.Option) (*renderer.Result, error) {
	return renderer.ExportPNG(ctx, document, settings, outputPath, opts...)
}

type pathValidator struct{}

func (pathValidator) ValidateOutputPath(path string) error {
	return validation.ValidateOutputPath(path)
}

func (pathValidator) ValidateInputPath(path string, mustBeDir bool) error {
	return validation.ValidateInputPath(path, mustBeDir)
}

// Default implementations backed by the real packages.
var (
	DefaultOptionsResolver     OptionsResolver     = OptionsResolverFunc(options.Resolve)
	DefaultFontDatabaseBuilder FontDatabaseBuilder = FontDatabaseBuilderFunc(fonts.Build)
	DefaultRenderer            Renderer            = pngRenderer{}
	DefaultPathValidator       PathValidator       = pathValidator{}
)

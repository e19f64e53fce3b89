package interfaces

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ankek/terraform-provider-svgraster/internal/options"
)

func TestInterfacesAreDefined(t *testing.T) {
	var _ OptionsResolver = DefaultOptionsResolver
	var _ FontDatabaseBuilder = DefaultFontDatabaseBuilder
	var _ Renderer = DefaultRenderer
	var _ PathValidator = DefaultPathValidator
}

func TestDefaultImplementations(t *testing.T) {
	ctx := context.Background()

	settings, err := DefaultOptionsResolver.Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if settings.DPI != options.DefaultDPI {
		t.Errorf("DPI = %v, want %v", settings.DPI, options.DefaultDPI)
	}

	settings.Font.LoadSystemFonts = false
	built := DefaultFontDatabaseBuilder.Build(ctx, settings.Font)
	if built.DB == nil || len(built.Warnings) != 0 {
		t.Errorf("Build() = %+v", built)
	}

	result, err := DefaultRenderer.RenderSettings(ctx, `<svg xmlns="http://www.w3.org/2000/svg" width="3" height="2"/>`, settings)
	if err != nil {
		t.Fatalf("RenderSettings() error = %v", err)
	}
	if result.Width != 3 || result.Height != 2 {
		t.Errorf("size = %dx%d, want 3x2", result.Width, result.Height)
	}

	out := filepath.Join(t.TempDir(), "out.png")
	if err := DefaultPathValidator.ValidateOutputPath(out); err != nil {
		t.Fatalf("ValidateOutputPath() error = %v", err)
	}
	if _, err := DefaultRenderer.ExportPNG(ctx, `<svg xmlns="http://www.w3.org/2000/svg" width="3" height="2"/>`, settings, out); err != nil {
		t.Fatalf("ExportPNG() error = %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("ExportPNG() wrote nothing: %v", err)
	}
	if err := DefaultPathValidator.ValidateInputPath(out, true); err == nil {
		t.Error("ValidateInputPath() accepted a file as a directory")
	}
}

func TestResolverFuncIsUsed(t *testing.T) {
	called := false
	resolver := OptionsResolverFunc(func(raw *options.RawOptions) (*options.RenderSettings, error) {
		called = true
		s := options.Defaults()
		return &s, nil
	})

	if _, err := resolver.Resolve(nil); err != nil || !called {
		t.Errorf("Resolve() err = %v, called = %v", err, called)
	}
}

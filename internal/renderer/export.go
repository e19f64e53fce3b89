package renderer

import (
	"context"
	"fmt"

	"github.com/ankek/terraform-provider-svgraster/internal/options"
)

// ExportPNG renders document and writes the PNG to outputPath.
func ExportPNG(ctx context.Context, document string, settings *options.RenderSettings, outputPath string, opts ...Option) (*Result, error) {
	result, err := RenderSettings(ctx, document, settings, opts...)
	if err != nil {
		return nil, err
	}

	// Check context before touching the filesystem
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := writeFile(outputPath, result.PNG); err != nil {
		return nil, fmt.Errorf("failed to write PNG: %w", err)
	}
	return result, nil
}

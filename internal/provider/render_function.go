package provider

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/hashicorp/terraform-plugin-framework/function"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/ankek/terraform-provider-svgraster/internal/options"
	"github.com/ankek/terraform-provider-svgraster/internal/renderer"
)

var _ function.Function = &RenderPNGFunction{}

// RenderPNGFunction is render_png(svg, options_json): the PNG as base64.
type RenderPNGFunction struct {
	generator *Generator
}

func NewRenderPNGFunction() function.Function {
	return &RenderPNGFunction{
		generator: &Generator{},
	}
}

func (f *RenderPNGFunction) Metadata(ctx context.Context, req function.MetadataRequest, resp *function.MetadataResponse) {
	resp.Name = "render_png"
}

func (f *RenderPNGFunction) Definition(ctx context.Context, req function.DefinitionRequest, resp *function.DefinitionResponse) {
	resp.Definition = function.Definition{
		Summary:             "Rasterize an SVG document to PNG",
		MarkdownDescription: "Renders `svg` with the options in `options_json` (or the defaults when null) and returns the PNG base64 encoded. A document without drawable area yields an empty string.",
		Parameters: []function.Parameter{
			function.StringParameter{
				Name:                "svg",
				MarkdownDescription: "SVG document source.",
			},
			function.StringParameter{
				Name:                "options_json",
				MarkdownDescription: "Render options as JSON, or null for the defaults.",
				AllowNullValue:      true,
			},
		},
		Return: function.StringReturn{},
	}
}

func (f *RenderPNGFunction) Run(ctx context.Context, req function.RunRequest, resp *function.RunResponse) {
	var (
		document    string
		optionsJSON types.String
	)

	resp.Error = function.ConcatFuncErrors(resp.Error, req.Arguments.Get(ctx, &document, &optionsJSON))
	if resp.Error != nil {
		return
	}

	var raw *options.RawOptions
	if !optionsJSON.IsNull() {
		var err error
		raw, err = options.DecodeJSON([]byte(optionsJSON.ValueString()))
		if err != nil {
			resp.Error = function.NewArgumentFuncError(1, err.Error())
			return
		}
	}

	result, err := f.generator.Generate(ctx, GenerateConfig{Document: document, Options: raw})
	if err != nil {
		resp.Error = renderFuncError(err)
		return
	}

	encoded := base64.StdEncoding.EncodeToString(result.PNG)
	resp.Error = function.ConcatFuncErrors(resp.Error, resp.Result.Set(ctx, encoded))
}

// renderFuncError attributes a render failure to the argument behind it.
func renderFuncError(err error) *function.FuncError {
	var (
		validationErr *options.ValidationError
		colorErr      *renderer.ColorParseError
		docErr        *renderer.DocumentParseError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &colorErr):
		return function.NewArgumentFuncError(1, err.Error())
	case errors.As(err, &docErr), errors.Is(err, ErrNoDocument):
		return function.NewArgumentFuncError(0, err.Error())
	}
	return function.NewFuncError(err.Error())
}

package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework-validators/int64validator"
	"github.com/hashicorp/terraform-plugin-framework-validators/listvalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/ankek/terraform-provider-svgraster/internal/options"
	"github.com/ankek/terraform-provider-svgraster/internal/renderer"
)

// renderOptionsModel mirrors the options payload as a nested attribute.
type renderOptionsModel struct {
	Path           types.String      `tfsdk:"path"`
	DPI            types.Float64     `tfsdk:"dpi"`
	Languages      types.List        `tfsdk:"languages"`
	ShapeRendering types.Int64       `tfsdk:"shape_rendering"`
	TextRendering  types.Int64       `tfsdk:"text_rendering"`
	ImageRendering types.Int64       `tfsdk:"image_rendering"`
	Background     types.String      `tfsdk:"background"`
	Font           *fontOptionsModel `tfsdk:"font"`
	FitTo          *fitToModel       `tfsdk:"fit_to"`
}

type fontOptionsModel struct {
	LoadSystemFonts   types.Bool    `tfsdk:"load_system_fonts"`
	FontFiles         types.List    `tfsdk:"font_files"`
	FontDirs          types.List    `tfsdk:"font_dirs"`
	DefaultFontFamily types.String  `tfsdk:"default_font_family"`
	DefaultFontSize   types.Float64 `tfsdk:"default_font_size"`
	SerifFamily       types.String  `tfsdk:"serif_family"`
	SansSerifFamily   types.String  `tfsdk:"sans_serif_family"`
	CursiveFamily     types.String  `tfsdk:"cursive_family"`
	FantasyFamily     types.String  `tfsdk:"fantasy_family"`
	MonospaceFamily   types.String  `tfsdk:"monospace_family"`
}

type fitToModel struct {
	Mode  types.String  `tfsdk:"mode"`
	Value types.Float64 `tfsdk:"value"`
}

func familyAttribute(desc string) schema.StringAttribute {
	return schema.StringAttribute{
		MarkdownDescription: desc,
		Optional:            true,
		Validators: []validator.String{
			stringvalidator.LengthAtLeast(1),
		},
	}
}

// renderOptionsAttribute is the data source schema for the options payload.
func renderOptionsAttribute() schema.SingleNestedAttribute {
	return schema.SingleNestedAttribute{
		MarkdownDescription: "Render options. Every field is optional and falls back to its default.",
		Optional:            true,
		Attributes: map[string]schema.Attribute{
			"path": schema.StringAttribute{
				MarkdownDescription: "Location of the document, used to resolve relative references.",
				Optional:            true,
			},
			"dpi": schema.Float64Attribute{
				MarkdownDescription: fmt.Sprintf("Resolution used to convert absolute units to pixels. Default is %v.", options.DefaultDPI),
				Optional:            true,
			},
			"languages": schema.ListAttribute{
				MarkdownDescription: "Languages used for `systemLanguage` matching. Default is `[\"en\"]`.",
				ElementType:         types.StringType,
				Optional:            true,
			},
			"shape_rendering": schema.Int64Attribute{
				MarkdownDescription: "0 = optimizeSpeed, 1 = crispEdges, 2 = geometricPrecision (default).",
				Optional:            true,
				Validators: []validator.Int64{
					int64validator.Between(0, 2),
				},
			},
			"text_rendering": schema.Int64Attribute{
				MarkdownDescription: "0 = optimizeSpeed, 1 = optimizeLegibility (default), 2 = geometricPrecision.",
				Optional:            true,
				Validators: []validator.Int64{
					int64validator.Between(0, 2),
				},
			},
			"image_rendering": schema.Int64Attribute{
				MarkdownDescription: "0 = optimizeQuality (default), 1 = optimizeSpeed.",
				Optional:            true,
				Validators: []validator.Int64{
					int64validator.Between(0, 1),
				},
			},
			"background": schema.StringAttribute{
				MarkdownDescription: "Background colour in SVG syntax, e.g. `#ffffff` or `white`. Transparent when unset.",
				Optional:            true,
			},
			"font": schema.SingleNestedAttribute{
				MarkdownDescription: "Font database settings.",
				Optional:            true,
				Attributes: map[string]schema.Attribute{
					"load_system_fonts": schema.BoolAttribute{
						MarkdownDescription: "Scan the fonts installed on the host. Default is true.",
						Optional:            true,
					},
					"font_files": schema.ListAttribute{
						MarkdownDescription: "Font files to load. `http://` and `https://` URLs are downloaded.",
						ElementType:         types.StringType,
						Optional:            true,
						Validators: []validator.List{
							listvalidator.ValueStringsAre(stringvalidator.LengthAtLeast(1)),
						},
					},
					"font_dirs": schema.ListAttribute{
						MarkdownDescription: "Directories scanned recursively for fonts.",
						ElementType:         types.StringType,
						Optional:            true,
						Validators: []validator.List{
							listvalidator.ValueStringsAre(stringvalidator.LengthAtLeast(1)),
						},
					},
					"default_font_family": familyAttribute(fmt.Sprintf("Family used when none is specified. Default is %q.", options.DefaultFontFamily)),
					"default_font_size": schema.Float64Attribute{
						MarkdownDescription: fmt.Sprintf("Font size used when none is specified. Default is %v.", options.DefaultFontSize),
						Optional:            true,
					},
					"serif_family":      familyAttribute(fmt.Sprintf("Family for `serif`. Default is %q.", options.DefaultSerifFamily)),
					"sans_serif_family": familyAttribute(fmt.Sprintf("Family for `sans-serif`. Default is %q.", options.DefaultSansSerifFamily)),
					"cursive_family":    familyAttribute(fmt.Sprintf("Family for `cursive`. Default is %q.", options.DefaultCursiveFamily)),
					"fantasy_family":    familyAttribute(fmt.Sprintf("Family for `fantasy`. Default is %q.", options.DefaultFantasyFamily)),
					"monospace_family":  familyAttribute(fmt.Sprintf("Family for `monospace`. Default is %q.", options.DefaultMonospaceFamily)),
				},
			},
			"fit_to": schema.SingleNestedAttribute{
				MarkdownDescription: "Output size. Defaults to the document's own size.",
				Optional:            true,
				Attributes: map[string]schema.Attribute{
					"mode": schema.StringAttribute{
						MarkdownDescription: "One of `original`, `width`, `height` or `zoom`.",
						Required:            true,
						Validators: []validator.String{
							stringvalidator.OneOf("original", "width", "height", "zoom"),
						},
					},
					"value": schema.Float64Attribute{
						MarkdownDescription: "Pixel size for `width`/`height`, factor for `zoom`. Not allowed with `original`.",
						Optional:            true,
					},
				},
			},
		},
	}
}

// toRaw converts the model into the payload the options resolver expects.
// A nil model means "no options".
func (m *renderOptionsModel) toRaw(ctx context.Context) (*options.RawOptions, diag.Diagnostics) {
	var diags diag.Diagnostics
	if m == nil {
		return nil, diags
	}

	raw := &options.RawOptions{
		Path:           stringPtr(m.Path),
		DPI:            float64Ptr(m.DPI),
		ShapeRendering: int64Ptr(m.ShapeRendering),
		TextRendering:  int64Ptr(m.TextRendering),
		ImageRendering: int64Ptr(m.ImageRendering),
		Background:     stringPtr(m.Background),
	}
	raw.Languages, diags = listStrings(ctx, m.Languages, diags)

	if m.Font != nil {
		f := m.Font
		raw.Font = &options.RawFontOptions{
			DefaultFontFamily: stringPtr(f.DefaultFontFamily),
			DefaultFontSize:   float64Ptr(f.DefaultFontSize),
			SerifFamily:       stringPtr(f.SerifFamily),
			SansSerifFamily:   stringPtr(f.SansSerifFamily),
			CursiveFamily:     stringPtr(f.CursiveFamily),
			FantasyFamily:     stringPtr(f.FantasyFamily),
			MonospaceFamily:   stringPtr(f.MonospaceFamily),
		}
		if !f.LoadSystemFonts.IsNull() && !f.LoadSystemFonts.IsUnknown() {
			v := f.LoadSystemFonts.ValueBool()
			raw.Font.LoadSystemFonts = &v
		}
		raw.Font.FontFiles, diags = listStrings(ctx, f.FontFiles, diags)
		raw.Font.FontDirs, diags = listStrings(ctx, f.FontDirs, diags)
	}

	if m.FitTo != nil {
		raw.FitTo = &options.RawFitTo{
			Mode:  stringPtr(m.FitTo.Mode),
			Value: float64Ptr(m.FitTo.Value),
		}
	}

	return raw, diags
}

func stringPtr(v types.String) *string {
	if v.IsNull() || v.IsUnknown() {
		return nil
	}
	s := v.ValueString()
	return &s
}

func float64Ptr(v types.Float64) *float64 {
	if v.IsNull() || v.IsUnknown() {
		return nil
	}
	f := v.ValueFloat64()
	return &f
}

func int64Ptr(v types.Int64) *int64 {
	if v.IsNull() || v.IsUnknown() {
		return nil
	}
	i := v.ValueInt64()
	return &i
}

func listStrings(ctx context.Context, v types.List, diags diag.Diagnostics) ([]string, diag.Diagnostics) {
	if v.IsNull() || v.IsUnknown() {
		return nil, diags
	}
	var out []string
	diags.Append(v.ElementsAs(ctx, &out, false)...)
	return out, diags
}

// addRenderError turns a render failure into a diagnostic, pointing at the
// attribute that caused it where that is known.
func addRenderError(diags *diag.Diagnostics, err error, documentPath, optionsPath path.Path) {
	var (
		validationErr *options.ValidationError
		colorErr      *renderer.ColorParseError
		docErr        *renderer.DocumentParseError
	)
	switch {
	case errors.As(err, &validationErr):
		diags.AddAttributeError(optionsPath, "Invalid render options", err.Error())
	case errors.As(err, &colorErr):
		diags.AddAttributeError(optionsPath, "Invalid background color", err.Error())
	case errors.As(err, &docErr), errors.Is(err, ErrNoDocument):
		diags.AddAttributeError(documentPath, "Invalid SVG document", err.Error())
	default:
		diags.AddError("Failed to render PNG", err.Error())
	}
}

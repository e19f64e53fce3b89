package provider

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/hashicorp/terraform-plugin-framework-validators/datasourcevalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/datasource/schema"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"

	"github.com/ankek/terraform-provider-svgraster/internal/renderer"
)

// Ensure provider defined types fully satisfy framework interfaces.
var (
	_ datasource.DataSource                     = &PNGDataSource{}
	_ datasource.DataSourceWithConfigure        = &PNGDataSource{}
	_ datasource.DataSourceWithConfigValidators = &PNGDataSource{}
)

// PNGDataSource renders an SVG document in memory.
type PNGDataSource struct {
	generator *Generator
}

func NewPNGDataSource() datasource.DataSource {
	return &PNGDataSource{
		generator: &Generator{},
	}
}

// PNGDataSourceModel describes the data source data model.
type PNGDataSourceModel struct {
	ID         types.String        `tfsdk:"id"`
	SVG        types.String        `tfsdk:"svg"`
	SourcePath types.String        `tfsdk:"source_path"`
	Engine     types.String        `tfsdk:"engine"`
	Options    *renderOptionsModel `tfsdk:"options"`
	PNGBase64  types.String        `tfsdk:"png_base64"`
	Width      types.Int64         `tfsdk:"width"`
	Height     types.Int64         `tfsdk:"height"`
	Warnings   types.List          `tfsdk:"warnings"`
}

func (d *PNGDataSource) Metadata(ctx context.Context, req datasource.MetadataRequest, resp *datasource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_png"
}

func (d *PNGDataSource) Schema(ctx context.Context, req datasource.SchemaRequest, resp *datasource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Rasterizes an SVG document to PNG and exposes the image as base64.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "SHA-256 of the rendered PNG.",
			},
			"svg": schema.StringAttribute{
				MarkdownDescription: "SVG document source. Conflicts with `source_path`.",
				Optional:            true,
			},
			"source_path": schema.StringAttribute{
				MarkdownDescription: "Path to an SVG file. Conflicts with `svg`.",
				Optional:            true,
				Validators: []validator.String{
					stringvalidator.LengthAtLeast(1),
				},
			},
			"engine": schema.StringAttribute{
				MarkdownDescription: "Rasterization engine: `oksvg` (default) or `canvas`.",
				Optional:            true,
				Validators: []validator.String{
					stringvalidator.OneOf(renderer.EngineNames()...),
				},
			},
			"options": renderOptionsAttribute(),
			"png_base64": schema.StringAttribute{
				MarkdownDescription: "The PNG, base64 encoded. Empty when the document has no drawable area.",
				Computed:            true,
			},
			"width": schema.Int64Attribute{
				MarkdownDescription: "Width of the PNG in pixels.",
				Computed:            true,
			},
			"height": schema.Int64Attribute{
				MarkdownDescription: "Height of the PNG in pixels.",
				Computed:            true,
			},
			"warnings": schema.ListAttribute{
				MarkdownDescription: "Fonts that could not be loaded.",
				ElementType:         types.StringType,
				Computed:            true,
			},
		},
	}
}

func (d *PNGDataSource) ConfigValidators(ctx context.Context) []datasource.ConfigValidator {
	return []datasource.ConfigValidator{
		datasourcevalidator.ExactlyOneOf(
			path.MatchRoot("svg"),
			path.MatchRoot("source_path"),
		),
	}
}

func (d *PNGDataSource) Configure(ctx context.Context, req datasource.ConfigureRequest, resp *datasource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}
	data, ok := req.ProviderData.(*providerData)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Data Source Configure Type",
			fmt.Sprintf("Expected *providerData, got: %T.", req.ProviderData),
		)
		return
	}
	d.generator = data.generator
}

func (d *PNGDataSource) Read(ctx context.Context, req datasource.ReadRequest, resp *datasource.ReadResponse) {
	var data PNGDataSourceModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	raw, diags := data.Options.toRaw(ctx)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	result, err := d.generator.Generate(ctx, GenerateConfig{
		Document:   data.SVG.ValueString(),
		SourcePath: data.SourcePath.ValueString(),
		Options:    raw,
		Engine:     data.Engine.ValueString(),
	})
	if err != nil {
		addRenderError(&resp.Diagnostics, err, path.Root("svg"), path.Root("options"))
		return
	}

	data.PNGBase64 = types.StringValue(base64.StdEncoding.EncodeToString(result.PNG))
	data.Width = types.Int64Value(int64(result.Width))
	data.Height = types.Int64Value(int64(result.Height))
	data.Warnings, diags = warningsList(ctx, result)
	resp.Diagnostics.Append(diags...)

	hash := sha256.Sum256(result.PNG)
	data.ID = types.StringValue(fmt.Sprintf("%x", hash))

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func warningsList(ctx context.Context, result *renderer.Result) (types.List, diag.Diagnostics) {
	messages := make([]string, len(result.Warnings))
	for i, w := range result.Warnings {
		messages[i] = w.String()
	}
	return types.ListValueFrom(ctx, types.StringType, messages)
}

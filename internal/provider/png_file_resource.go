package provider

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/hashicorp/terraform-plugin-framework-validators/resourcevalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/ankek/terraform-provider-svgraster/internal/options"
	"github.com/ankek/terraform-provider-svgraster/internal/renderer"
)

// Ensure provider defined types fully satisfy framework interfaces.
var (
	_ resource.Resource                     = &PNGFileResource{}
	_ resource.ResourceWithConfigure        = &PNGFileResource{}
	_ resource.ResourceWithConfigValidators = &PNGFileResource{}
)

func NewPNGFileResource() resource.Resource {
	return &PNGFileResource{
		generator: &Generator{},
	}
}

// PNGFileResource renders an SVG document to a PNG file on disk.
type PNGFileResource struct {
	generator *Generator
}

// PNGFileResourceModel describes the resource data model.
type PNGFileResourceModel struct {
	ID          types.String `tfsdk:"id"`
	SVG         types.String `tfsdk:"svg"`
	SourcePath  types.String `tfsdk:"source_path"`
	OptionsJSON types.String `tfsdk:"options_json"`
	Engine      types.String `tfsdk:"engine"`
	OutputPath  types.String `tfsdk:"output_path"`
	Width       types.Int64  `tfsdk:"width"`
	Height      types.Int64  `tfsdk:"height"`
	SHA256      types.String `tfsdk:"sha256"`
}

func (r *PNGFileResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_png_file"
}

func (r *PNGFileResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		MarkdownDescription: "Rasterizes an SVG document and writes the PNG to `output_path`. The file is removed on destroy.",

		Attributes: map[string]schema.Attribute{
			"id": schema.StringAttribute{
				Computed:            true,
				MarkdownDescription: "Resource identifier, derived from the output path.",
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"svg": schema.StringAttribute{
				MarkdownDescription: "SVG document source. Conflicts with `source_path`.",
				Optional:            true,
			},
			"source_path": schema.StringAttribute{
				MarkdownDescription: "Path to an SVG file. Conflicts with `svg`.",
				Optional:            true,
			},
			"options_json": schema.StringAttribute{
				MarkdownDescription: "Render options as a JSON payload, e.g. `jsonencode({ fitTo = { mode = \"zoom\", value = 2 } })`.",
				Optional:            true,
				Validators: []validator.String{
					optionsJSONValidator{},
				},
			},
			"engine": schema.StringAttribute{
				MarkdownDescription: "Rasterization engine: `oksvg` (default) or `canvas`.",
				Optional:            true,
				Validators: []validator.String{
					stringvalidator.OneOf(renderer.EngineNames()...),
				},
			},
			"output_path": schema.StringAttribute{
				MarkdownDescription: "Where the PNG is written. Must end in `.png`.",
				Required:            true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"width": schema.Int64Attribute{
				MarkdownDescription: "Width of the PNG in pixels.",
				Computed:            true,
			},
			"height": schema.Int64Attribute{
				MarkdownDescription: "Height of the PNG in pixels.",
				Computed:            true,
			},
			"sha256": schema.StringAttribute{
				MarkdownDescription: "SHA-256 of the written file.",
				Computed:            true,
			},
		},
	}
}

func (r *PNGFileResource) ConfigValidators(ctx context.Context) []resource.ConfigValidator {
	return []resource.ConfigValidator{
		resourcevalidator.ExactlyOneOf(
			path.MatchRoot("svg"),
			path.MatchRoot("source_path"),
		),
	}
}

func (r *PNGFileResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}
	data, ok := req.ProviderData.(*providerData)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Resource Configure Type",
			fmt.Sprintf("Expected *providerData, got: %T.", req.ProviderData),
		)
		return
	}
	r.generator = data.generator
}

func (r *PNGFileResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data PNGFileResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	r.render(ctx, &data, &resp.Diagnostics)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *PNGFileResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data PNGFileResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	// Drop from state when the file is gone so the next apply recreates it
	if _, err := os.Stat(data.OutputPath.ValueString()); os.IsNotExist(err) {
		tflog.Info(ctx, "PNG file no longer exists, removing from state", map[string]interface{}{
			"output_path": data.OutputPath.ValueString(),
		})
		resp.State.RemoveResource(ctx)
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *PNGFileResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var data PNGFileResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	r.render(ctx, &data, &resp.Diagnostics)
	if resp.Diagnostics.HasError() {
		return
	}

	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

func (r *PNGFileResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data PNGFileResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if err := os.Remove(data.OutputPath.ValueString()); err != nil && !os.IsNotExist(err) {
		resp.Diagnostics.AddError("Failed to remove PNG file", err.Error())
	}
}

// render writes the PNG and fills in the computed attributes.
func (r *PNGFileResource) render(ctx context.Context, data *PNGFileResourceModel, diags *diag.Diagnostics) {
	var raw *options.RawOptions
	if !data.OptionsJSON.IsNull() {
		var err error
		raw, err = options.DecodeJSON([]byte(data.OptionsJSON.ValueString()))
		if err != nil {
			diags.AddAttributeError(path.Root("options_json"), "Invalid render options", err.Error())
			return
		}
	}

	result, err := r.generator.Generate(ctx, GenerateConfig{
		Document:   data.SVG.ValueString(),
		SourcePath: data.SourcePath.ValueString(),
		Options:    raw,
		Engine:     data.Engine.ValueString(),
		OutputPath: data.OutputPath.ValueString(),
	})
	if err != nil {
		addRenderError(diags, err, path.Root("svg"), path.Root("options_json"))
		return
	}

	for _, w := range result.Warnings {
		diags.AddWarning("Font not loaded", w.String())
	}

	hash := sha256.Sum256(result.PNG)
	pathHash := sha256.Sum256([]byte(data.OutputPath.ValueString()))
	data.ID = types.StringValue(fmt.Sprintf("%x", pathHash[:8]))
	data.SHA256 = types.StringValue(fmt.Sprintf("%x", hash))
	data.Width = types.Int64Value(int64(result.Width))
	data.Height = types.Int64Value(int64(result.Height))
}

// optionsJSONValidator rejects payloads the options resolver would reject.
type optionsJSONValidator struct{}

var _ validator.String = optionsJSONValidator{}

func (v optionsJSONValidator) Description(ctx context.Context) string {
	return "value must be a valid render options JSON payload"
}

func (v optionsJSONValidator) MarkdownDescription(ctx context.Context) string {
	return v.Description(ctx)
}

func (v optionsJSONValidator) ValidateString(ctx context.Context, req validator.StringRequest, resp *validator.StringResponse) {
	if req.ConfigValue.IsNull() || req.ConfigValue.IsUnknown() {
		return
	}
	if _, err := options.ParseJSON([]byte(req.ConfigValue.ValueString())); err != nil {
		resp.Diagnostics.AddAttributeError(req.Path, "Invalid render options", err.Error())
	}
}

package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/function"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Ensure SvgrasterProvider satisfies various provider interfaces.
var (
	_ provider.Provider              = &SvgrasterProvider{}
	_ provider.ProviderWithFunctions = &SvgrasterProvider{}
)

// SvgrasterProvider defines the provider implementation.
type SvgrasterProvider struct {
	// version is set to the provider version on release, "dev" when the
	// provider is built and ran locally, and "test" when running acceptance
	// testing.
	version string
}

// SvgrasterProviderModel describes the provider data model.
type SvgrasterProviderModel struct {
	FontCacheDir types.String `tfsdk:"font_cache_dir"`
}

// providerData is handed to data sources and resources on Configure.
type providerData struct {
	generator *Generator
}

func (p *SvgrasterProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "svgraster"
	resp.Version = p.version
}

func (p *SvgrasterProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		Description: "The svgraster provider rasterizes SVG documents to PNG.",
		Attributes: map[string]schema.Attribute{
			"font_cache_dir": schema.StringAttribute{
				Description: "Directory used to cache the system font index. Defaults to the user cache directory.",
				Optional:    true,
			},
		},
	}
}

func (p *SvgrasterProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	var data SvgrasterProviderModel

	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	generator := &Generator{CacheDir: data.FontCacheDir.ValueString()}
	tflog.Debug(ctx, "Configured svgraster provider", map[string]interface{}{
		"font_cache_dir": generator.CacheDir,
	})

	resp.DataSourceData = &providerData{generator: generator}
	resp.ResourceData = &providerData{generator: generator}
}

func (p *SvgrasterProvider) Resources(ctx context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewPNGFileResource,
	}
}

func (p *SvgrasterProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		NewPNGDataSource,
	}
}

func (p *SvgrasterProvider) Functions(ctx context.Context) []func() function.Function {
	return []func() function.Function{
		NewRenderPNGFunction,
	}
}

func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &SvgrasterProvider{
			version: version,
		}
	}
}

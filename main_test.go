package main

import (
	"context"
	"testing"

	fwprovider "github.com/hashicorp/terraform-plugin-framework/provider"

	"github.com/ankek/terraform-provider-svgraster/internal/provider"
)

func TestVersion(t *testing.T) {
	if version == "" {
		t.Error("version should not be empty")
	}

	// Default version should be "dev"
	if version != "dev" {
		t.Logf("version = %s (expected 'dev' but may be set by build)", version)
	}
}

func TestProviderFactory(t *testing.T) {
	p := provider.New(version)()

	resp := &fwprovider.MetadataResponse{}
	p.Metadata(context.Background(), fwprovider.MetadataRequest{}, resp)
	if resp.Version != version {
		t.Errorf("provider version = %q, want %q", resp.Version, version)
	}
}

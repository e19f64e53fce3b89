package fonts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	downloadTimeout = 10 * time.Second
	maxRedirects    = 5
	// fonts above this size are rejected rather than buffered
	maxFontBytes = 64 << 20
)

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// NewHTTPClient returns the client used for remote font files: three retries,
// a ten second timeout per attempt and at most five redirects.
func NewHTTPClient(logger interface{}) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = logger
	client.HTTPClient.Timeout = downloadTimeout
	client.HTTPClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return errors.New("too many redirects")
		}
		for _, prev := range via {
			if prev.URL.String() == req.URL.String() {
				return errors.New("redirect loop detected")
			}
		}
		return nil
	}
	return client
}

// fetchFont downloads a font file.
func fetchFont(ctx context.Context, client *retryablehttp.Client, url string) ([]byte, error) {
	if client == nil {
		client = NewHTTPClient(nil)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create font request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download font: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download font (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read font response: %w", err)
	}
	if len(data) > maxFontBytes {
		return nil, fmt.Errorf("font exceeds %d bytes", maxFontBytes)
	}
	return data, nil
}

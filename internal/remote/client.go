package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/renderinc/catalog-search/internal/catalog"
)

// maxSeedBytes bounds a downloaded seed document
const maxSeedBytes = 10 << 20

// Client downloads seed documents over HTTP
type Client struct {
	token      string
	httpClient *http.Client
}

// NewClient creates a client. An empty token sends no Authorization header.
func NewClient(token string) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsURL reports whether a seed location should be fetched with a Client
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// FetchSeed downloads and parses a YAML or JSON seed document
func (c *Client) FetchSeed(ctx context.Context, url string) (*catalog.Seed, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/yaml, application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch seed: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxSeedBytes {
		return nil, fmt.Errorf("fetch seed: document larger than %d bytes", maxSeedBytes)
	}

	seed, err := catalog.ParseSeed(body)
	if err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

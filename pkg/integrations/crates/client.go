package crates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/depvet/depvet/pkg/cache"
	"github.com/depvet/depvet/pkg/integrations"
)

// CrateInfo holds metadata for a Rust crate from crates.io.
//
// The Version field contains the max_version (latest stable or highest version).
//
// Zero values: all string fields are empty, timestamps are nil, Downloads is 0.
// A Downloads value of 0 is valid for newly published crates.
// This struct is safe for concurrent reads after construction.
type CrateInfo struct {
	Name          string     // Crate name (e.g., "serde", never empty in valid info)
	Version       string     // Latest version (e.g., "1.0.193", never empty in valid info)
	Description   string     // Crate description (may be empty)
	Documentation string     // Documentation URL (may be empty)
	Repository    string     // Repository URL (may be empty)
	HomePage      string     // Homepage URL (may be empty)
	Downloads     int        // Total download count across all versions (0 for new crates)
	CreatedAt     *time.Time // First publish timestamp (nil if unknown)
	UpdatedAt     *time.Time // Last update timestamp (nil if unknown)
}

// Client provides access to the crates.io package registry API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
//
// Note: crates.io requires a User-Agent header; this client sets one automatically.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client with the given cache backend.
//
// Parameters:
//   - backend: Cache backend for HTTP response caching (use cache.NewNullCache() for no caching)
//   - cacheTTL: How long responses are cached (typical: 1-24 hours)
//
// The client includes a User-Agent header as required by crates.io API policy.
// The returned Client is safe for concurrent use.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": "depvet/1.0 (https://github.com/depvet/depvet)",
	}
	return &Client{
		Client:  integrations.NewClient(backend, "crates:", cacheTTL, headers),
		baseURL: "https://crates.io/api/v1",
	}
}

// FetchCrate retrieves metadata for a Rust crate from crates.io.
//
// The crate parameter is case-sensitive and must match the published crate name exactly.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
// If refresh is false, cached data is returned if available and not expired.
//
// Returns:
//   - CrateInfo populated with metadata on success
//   - [integrations.ErrNotFound] if the crate doesn't exist
//   - [integrations.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
//   - Other errors for JSON decoding failures
//
// The returned CrateInfo pointer is never nil if err is nil.
// This method is safe for concurrent use.
func (c *Client) FetchCrate(ctx context.Context, crate string, refresh bool) (*CrateInfo, error) {
	key := crate

	var info CrateInfo
	err := c.Cached(ctx, key, refresh, &info, func() error {
		return c.fetch(ctx, crate, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, crate string, info *CrateInfo) error {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, crate), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}

	*info = CrateInfo{
		Name:          data.Crate.Name,
		Version:       data.Crate.MaxVersion,
		Description:   data.Crate.Description,
		Documentation: data.Crate.Documentation,
		Repository:    integrations.NormalizeRepoURL(data.Crate.Repository),
		HomePage:      data.Crate.HomePage,
		Downloads:     data.Crate.Downloads,
		CreatedAt:     data.Crate.CreatedAt,
		UpdatedAt:     data.Crate.UpdatedAt,
	}
	return nil
}

type crateResponse struct {
	Crate struct {
		Name          string     `json:"name"`
		MaxVersion    string     `json:"max_version"`
		Description   string     `json:"description"`
		Documentation string     `json:"documentation"`
		Repository    string     `json:"repository"`
		HomePage      string     `json:"homepage"`
		Downloads     int        `json:"downloads"`
		CreatedAt     *time.Time `json:"created_at"`
		UpdatedAt     *time.Time `json:"updated_at"`
	} `json:"crate"`
}

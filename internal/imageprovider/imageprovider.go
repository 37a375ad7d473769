// Package imageprovider fetches a representative photo for a species from a
// remote provider. Lookups run with a hard timeout and fall back to a local
// placeholder so ledger operations are never blocked by provider latency.
package imageprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/logging"
)

// PhotoInfo describes one species photo.
type PhotoInfo struct {
	URL         string // image URL, or empty for the placeholder
	SourcePage  string // page the image was taken from
	Placeholder bool   // true when the fallback was used
}

// placeholderPhoto is returned whenever the provider cannot be reached in
// time. The presentation layer renders a bundled default image for it.
var placeholderPhoto = PhotoInfo{Placeholder: true}

// Client fetches and caches species photos.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewClient creates a photo client from the photo settings.
func NewClient(settings *conf.PhotoSettings) (*Client, error) {
	if settings.Endpoint == "" {
		return nil, errors.Newf("photo provider endpoint is required").
			Category(errors.CategoryConfiguration).
			Component("imageprovider").
			Build()
	}

	timeout := time.Duration(settings.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ttl := time.Duration(settings.CacheTTL) * time.Minute
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	logger := logging.ForService("imageprovider")
	if logger == nil {
		logger = slog.Default().With("service", "imageprovider")
	}

	return &Client{
		endpoint:   strings.TrimRight(settings.Endpoint, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.New(ttl, 2*ttl),
		logger:     logger,
	}, nil
}

// Fetch returns a photo for the given scientific name. It never fails:
// provider errors and timeouts are logged and answered with the placeholder,
// which is also cached briefly to avoid hammering a failing provider.
func (c *Client) Fetch(ctx context.Context, scientificName string) PhotoInfo {
	key := strings.ToLower(scientificName)
	if cached, found := c.cache.Get(key); found {
		return cached.(PhotoInfo)
	}

	info, err := c.fetch(ctx, scientificName)
	if err != nil {
		c.logger.Warn("photo lookup failed, using placeholder",
			"species", scientificName, "error", err)
		c.cache.Set(key, placeholderPhoto, 10*time.Minute)
		return placeholderPhoto
	}

	c.cache.SetDefault(key, info)
	return info
}

// summaryResponse is the subset of the provider page summary we consume.
type summaryResponse struct {
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

func (c *Client) fetch(ctx context.Context, scientificName string) (PhotoInfo, error) {
	title := url.PathEscape(strings.ReplaceAll(scientificName, " ", "_"))
	requestURL := fmt.Sprintf("%s/%s", c.endpoint, title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return PhotoInfo{}, errors.Newf("building photo request: %v", err).
			Category(errors.CategoryImageFetch).
			Component("imageprovider").
			Build()
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PhotoInfo{}, errors.Newf("photo request failed: %v", err).
			Category(errors.CategoryImageFetch).
			Component("imageprovider").
			NetworkContext(requestURL, c.httpClient.Timeout).
			Timing("photo-fetch", time.Since(start)).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PhotoInfo{}, errors.Newf("photo provider returned status %d", resp.StatusCode).
			Category(errors.CategoryImageFetch).
			Component("imageprovider").
			Build()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return PhotoInfo{}, errors.Newf("reading photo response: %v", err).
			Category(errors.CategoryImageFetch).
			Component("imageprovider").
			Build()
	}

	var summary summaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return PhotoInfo{}, errors.Newf("parsing photo response: %v", err).
			Category(errors.CategoryImageFetch).
			Component("imageprovider").
			Build()
	}
	if summary.Thumbnail.Source == "" {
		return PhotoInfo{}, errors.Newf("no photo available for %s", scientificName).
			Category(errors.CategoryImageFetch).
			Component("imageprovider").
			Build()
	}

	return PhotoInfo{
		URL:        summary.Thumbnail.Source,
		SourcePage: summary.ContentURLs.Desktop.Page,
	}, nil
}

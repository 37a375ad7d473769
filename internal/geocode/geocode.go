// Package geocode resolves coordinates to place names through a reverse
// geocoding provider. Like the photo lookup, it runs with a hard timeout and
// a fallback so it never gates the ledger workflow.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/butterfly-go/internal/conf"
	"github.com/tphakala/butterfly-go/internal/errors"
	"github.com/tphakala/butterfly-go/internal/logging"
)

// Place is the resolved description of a coordinate pair.
type Place struct {
	DisplayName string
	City        string
	State       string
	Fallback    bool // true when the provider could not be reached
}

// unknownPlace is the fallback used on timeout or provider failure.
var unknownPlace = Place{DisplayName: "Unknown location", Fallback: true}

// Client performs cached reverse geocoding lookups.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      *cache.Cache
	logger     *slog.Logger
}

// NewClient creates a reverse geocoding client from the geocode settings.
func NewClient(settings *conf.GeocodeSettings) (*Client, error) {
	if settings.Endpoint == "" {
		return nil, errors.Newf("geocoding endpoint is required").
			Category(errors.CategoryConfiguration).
			Component("geocode").
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

	logger := logging.ForService("geocode")
	if logger == nil {
		logger = slog.Default().With("service", "geocode")
	}

	return &Client{
		endpoint:   settings.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache.New(ttl, 2*ttl),
		logger:     logger,
	}, nil
}

// Resolve returns a place for the given coordinates. Provider errors and
// timeouts are logged and answered with the "Unknown location" fallback.
func (c *Client) Resolve(ctx context.Context, latitude, longitude float64) Place {
	key := fmt.Sprintf("%.4f,%.4f", latitude, longitude)
	if cached, found := c.cache.Get(key); found {
		return cached.(Place)
	}

	place, err := c.resolve(ctx, latitude, longitude)
	if err != nil {
		c.logger.Warn("reverse geocoding failed, using fallback",
			"latitude", latitude, "longitude", longitude, "error", err)
		c.cache.Set(key, unknownPlace, 10*time.Minute)
		return unknownPlace
	}

	c.cache.SetDefault(key, place)
	return place
}

// reverseResponse is the subset of the provider response we consume.
type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
}

func (c *Client) resolve(ctx context.Context, latitude, longitude float64) (Place, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.6f", latitude))
	query.Set("lon", fmt.Sprintf("%.6f", longitude))
	query.Set("format", "json")
	requestURL := fmt.Sprintf("%s?%s", c.endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return Place{}, errors.Newf("building geocode request: %v", err).
			Category(errors.CategoryGeocoding).
			Component("geocode").
			Build()
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Place{}, errors.Newf("geocode request failed: %v", err).
			Category(errors.CategoryGeocoding).
			Component("geocode").
			NetworkContext(requestURL, c.httpClient.Timeout).
			Timing("reverse-geocode", time.Since(start)).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, errors.Newf("geocoding provider returned status %d", resp.StatusCode).
			Category(errors.CategoryGeocoding).
			Component("geocode").
			Build()
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Place{}, errors.Newf("reading geocode response: %v", err).
			Category(errors.CategoryGeocoding).
			Component("geocode").
			Build()
	}

	var reverse reverseResponse
	if err := json.Unmarshal(body, &reverse); err != nil {
		return Place{}, errors.Newf("parsing geocode response: %v", err).
			Category(errors.CategoryGeocoding).
			Component("geocode").
			Build()
	}
	if reverse.DisplayName == "" {
		return Place{}, errors.Newf("no place found for %.4f, %.4f", latitude, longitude).
			Category(errors.CategoryGeocoding).
			Component("geocode").
			Build()
	}

	city := reverse.Address.City
	if city == "" {
		city = reverse.Address.Town
	}
	if city == "" {
		city = reverse.Address.Village
	}

	return Place{
		DisplayName: reverse.DisplayName,
		City:        city,
		State:       reverse.Address.State,
	}, nil
}

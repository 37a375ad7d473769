package geocode

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/butterfly-go/internal/conf"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&conf.GeocodeSettings{
		Enabled:  true,
		Endpoint: server.URL,
		Timeout:  2,
	})
	require.NoError(t, err)
	return client, server
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	t.Parallel()

	_, err := NewClient(&conf.GeocodeSettings{})
	require.Error(t, err)
}

func TestResolveParsesProviderResponse(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12.950700", r.URL.Query().Get("lat"))
		assert.Equal(t, "77.584800", r.URL.Query().Get("lon"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		_, _ = w.Write([]byte(`{
			"display_name": "Lalbagh, Bengaluru, Karnataka, India",
			"address": {"city": "Bengaluru", "state": "Karnataka"}
		}`))
	})

	place := client.Resolve(t.Context(), 12.9507, 77.5848)
	assert.False(t, place.Fallback)
	assert.Equal(t, "Lalbagh, Bengaluru, Karnataka, India", place.DisplayName)
	assert.Equal(t, "Bengaluru", place.City)
	assert.Equal(t, "Karnataka", place.State)
}

func TestResolvePrefersCityThenTownThenVillage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"display_name": "Somewhere rural",
			"address": {"village": "Hesaraghatta", "state": "Karnataka"}
		}`))
	})

	place := client.Resolve(t.Context(), 13.1364, 77.4902)
	assert.Equal(t, "Hesaraghatta", place.City)
}

func TestResolveFallsBackOnProviderError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	place := client.Resolve(t.Context(), 12.9507, 77.5848)
	assert.True(t, place.Fallback)
	assert.Equal(t, "Unknown location", place.DisplayName)

	// The failure is cached so retries do not hammer the provider.
	place = client.Resolve(t.Context(), 12.9507, 77.5848)
	assert.True(t, place.Fallback)
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolveFallsBackOnUnreachableProvider(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	place := client.Resolve(t.Context(), 12.9507, 77.5848)
	assert.True(t, place.Fallback)
}

func TestResolveCachesByRoundedCoordinates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"display_name": "Cubbon Park, Bengaluru", "address": {"city": "Bengaluru"}}`))
	})

	first := client.Resolve(t.Context(), 12.97620, 77.59280)
	second := client.Resolve(t.Context(), 12.97621, 77.59281)
	assert.Equal(t, first, second, "coordinates within ~10m share a cache entry")
	assert.Equal(t, int32(1), calls.Load())
}

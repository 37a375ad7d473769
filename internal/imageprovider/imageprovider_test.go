package imageprovider

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

	client, err := NewClient(&conf.PhotoSettings{
		Enabled:  true,
		Endpoint: server.URL,
		Timeout:  2,
	})
	require.NoError(t, err)
	return client, server
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	t.Parallel()

	_, err := NewClient(&conf.PhotoSettings{})
	require.Error(t, err)
}

func TestFetchParsesProviderResponse(t *testing.T) {
	t.Parallel()

	var requestedPath atomic.Value
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath.Store(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"thumbnail": {"source": "https://img.example/euploea.jpg"},
			"content_urls": {"desktop": {"page": "https://wiki.example/Euploea_core"}}
		}`))
	})

	info := client.Fetch(t.Context(), "Euploea core")
	assert.False(t, info.Placeholder)
	assert.Equal(t, "https://img.example/euploea.jpg", info.URL)
	assert.Equal(t, "https://wiki.example/Euploea_core", info.SourcePage)
	assert.Equal(t, "/Euploea_core", requestedPath.Load(), "spaces become underscores in the page title")
}

func TestFetchFallsBackOnProviderError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	info := client.Fetch(t.Context(), "Euploea core")
	assert.True(t, info.Placeholder)
	assert.Empty(t, info.URL)

	// The failure is cached so a retry burst does not hammer the provider.
	info = client.Fetch(t.Context(), "Euploea core")
	assert.True(t, info.Placeholder)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchFallsBackOnMissingThumbnail(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content_urls": {"desktop": {"page": "https://wiki.example/x"}}}`))
	})

	info := client.Fetch(t.Context(), "Euploea core")
	assert.True(t, info.Placeholder)
}

func TestFetchFallsBackOnUnreachableProvider(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	info := client.Fetch(t.Context(), "Euploea core")
	assert.True(t, info.Placeholder)
}

func TestFetchCachesSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"thumbnail": {"source": "https://img.example/a.jpg"}}`))
	})

	first := client.Fetch(t.Context(), "Euploea core")
	second := client.Fetch(t.Context(), "euploea CORE")
	assert.Equal(t, first, second, "the cache key is case-insensitive")
	assert.Equal(t, int32(1), calls.Load())
}

package ebird

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability/metrics"
)

const notableResponse = `[
  {"speciesCode":"grbher3","comName":"Great Blue Heron","sciName":"Ardea herodias",
   "locId":"L123","locName":"Central Park","obsDt":"2026-10-15 07:30","howMany":2,
   "lat":40.78,"lng":-73.96,"obsValid":true,"obsReviewed":false,"locationPrivate":false,"subId":"S1"},
  {"speciesCode":"kinrai4","sciName":"Rallus elegans","locId":"L9","obsDt":"2026-10-14"}
]`

// setupTestClient creates a client against server with fast limits.
func setupTestClient(tb testing.TB, server *httptest.Server, opts ...Option) *Client {
	tb.Helper()

	client, err := NewClient(Config{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		Timeout:      5 * time.Second,
		CacheTTL:     time.Hour,
		RateLimit:    1000,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
	}, opts...)
	require.NoError(tb, err)
	tb.Cleanup(client.Close)
	return client
}

func jsonHandler(status int, body string, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json;charset=UTF-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestRecentNotable(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/data/obs/US-NY/recent/notable", r.URL.Path)
		assert.Equal(t, "14", r.URL.Query().Get("back"))
		assert.Equal(t, "full", r.URL.Query().Get("detail"))
		assert.Equal(t, "false", r.URL.Query().Get("hotspot"))
		assert.Equal(t, "test-key", r.Header.Get("X-eBirdApiToken"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(notableResponse))
	}))
	t.Cleanup(server.Close)

	client := setupTestClient(t, server)

	obs, err := client.RecentNotable(t.Context(), "US-NY", 14)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, "grbher3", obs[0].SpeciesCode)
	require.NotNil(t, obs[0].CommonName)
	assert.Equal(t, "Great Blue Heron", *obs[0].CommonName)
	assert.Nil(t, obs[1].CommonName)
	assert.True(t, obs[1].HowMany.IsZero())

	// second call is served from cache
	_, err = client.RecentNotable(t.Context(), "US-NY", 14)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	stats := client.Stats()
	assert.Equal(t, int64(1), stats.APICalls)
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)

	client.ClearCache()
	_, err = client.RecentNotable(t.Context(), "US-NY", 14)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRecentNotableRequiresRegion(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(server.Close)

	_, err := setupTestClient(t, server).RecentNotable(t.Context(), "", 14)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestRecentNotableErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		category  errors.ErrorCategory
		wantCalls int32
	}{
		{"unauthorized is not retried", http.StatusUnauthorized, `{"title":"Unauthorized","detail":"bad key"}`, errors.CategoryConfiguration, 1},
		{"bad request is not retried", http.StatusBadRequest, `{"title":"Bad region"}`, errors.CategoryValidation, 1},
		{"server error is retried", http.StatusServiceUnavailable, `oops`, errors.CategoryNetwork, 3},
		{"rate limited is retried", http.StatusTooManyRequests, `slow down`, errors.CategoryLimit, 3},
		{"malformed body", http.StatusOK, `{"not":"an array"`, errors.CategoryFileParsing, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := httptest.NewServer(jsonHandler(tt.status, tt.body, &calls))
			t.Cleanup(server.Close)

			_, err := setupTestClient(t, server).RecentNotable(t.Context(), "US-NY", 7)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, tt.category), "got %v", err)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestRecentNotableRejectsNonJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	t.Cleanup(server.Close)

	_, err := setupTestClient(t, server).RecentNotable(t.Context(), "US-NY", 7)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryIntegration))
}

func TestRetryRecoversFromTransientFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	obs, err := setupTestClient(t, server).RecentNotable(t.Context(), "US-NY", 7)
	require.NoError(t, err)
	assert.Empty(t, obs)
	assert.NotNil(t, obs)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientRecordsMetrics(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(jsonHandler(http.StatusOK, notableResponse, &calls))
	t.Cleanup(server.Close)

	m, err := metrics.NewEBirdMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	client := setupTestClient(t, server, WithMetrics(m))
	_, err = client.RecentNotable(t.Context(), "US-NY", 7)
	require.NoError(t, err)
	_, err = client.RecentNotable(t.Context(), "US-NY", 7)
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(m, "rarebirds_ebird_requests_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m, "rarebirds_ebird_cache_hits_total"))
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, retryable(errors.NewStd("plain")))
	assert.False(t, retryable(errors.Newf("x").Category(errors.CategoryNotFound).Build()))
	assert.False(t, retryable(errors.Newf("x").Category(errors.CategoryNetwork).Context("status_code", 404).Build()))
	assert.True(t, retryable(errors.Newf("x").Category(errors.CategoryNetwork).Context("status_code", 500).Build()))
	assert.False(t, retryable(errors.Newf("x").Category(errors.CategoryIntegration).Build()))
}

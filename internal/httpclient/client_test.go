package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("nil config uses defaults", func(t *testing.T) {
		t.Parallel()
		client := New(nil)
		assert.Equal(t, DefaultTimeout, client.defaultTimeout)
		assert.Equal(t, defaultUserAgent, client.userAgent)
	})

	t.Run("custom config", func(t *testing.T) {
		t.Parallel()
		cfg := Config{DefaultTimeout: 5 * time.Second, UserAgent: "TestAgent/1.0"}
		client := New(&cfg)
		assert.Equal(t, 5*time.Second, client.defaultTimeout)
		assert.Equal(t, "TestAgent/1.0", client.userAgent)
	})
}

func TestDo_BasicRequest(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("success"))
	})
	client := newTestClient(t, nil)

	resp, err := client.Get(t.Context(), server.URL, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "body stays readable after Do returns")
	assert.Equal(t, "success", string(body))
}

func TestDo_UserAgentAndHeaders(t *testing.T) {
	t.Parallel()

	var ua, token atomic.Value
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.Header.Get("User-Agent"))
		token.Store(r.Header.Get("X-eBirdApiToken"))
	})

	client := newTestClient(t, &Config{UserAgent: "CustomAgent/2.0"})
	header := http.Header{}
	header.Set("X-eBirdApiToken", "secret")

	resp, err := client.Get(t.Context(), server.URL, header)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "CustomAgent/2.0", ua.Load())
	assert.Equal(t, "secret", token.Load())
}

func TestDo_DefaultTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	t.Cleanup(func() { close(release) })

	client := newTestClient(t, &Config{DefaultTimeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := client.GetBody(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork) || errors.IsCategory(err, errors.CategoryTimeout))
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, nil)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.GetBody(ctx, "http://127.0.0.1:1/", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}

func TestHooks(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	client := newTestClient(t, nil)

	var before atomic.Int32
	var status atomic.Int32
	client.SetBeforeRequestHook(func(*http.Request) { before.Add(1) })
	client.SetAfterResponseHook(func(_ *http.Request, resp *http.Response, err error, d time.Duration) {
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		status.Store(int32(resp.StatusCode))
	})

	_, err := client.GetBody(t.Context(), server.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), before.Load())
	assert.Equal(t, int32(http.StatusTeapot), status.Load())
}

func TestGetBodyWithMockTransport(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://example.org/sightings.json",
		httpmock.NewStringResponder(http.StatusOK, `{"sightings":[]}`))
	transport.RegisterResponder(http.MethodGet, "https://example.org/missing.json",
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))

	client := newTestClient(t, &Config{Transport: transport})

	body, err := client.GetBody(t.Context(), "https://example.org/sightings.json", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sightings":[]}`, string(body))

	_, err = client.GetBody(t.Context(), "https://example.org/missing.json", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryHTTP))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Contains(t, err.Error(), "404")

	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestGetBodyTooLarge(t *testing.T) {
	t.Parallel()

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "https://example.org/huge.json",
		httpmock.NewStringResponder(http.StatusOK, strings.Repeat("x", DefaultMaxBodySize+10)))

	client := newTestClient(t, &Config{Transport: transport})
	_, err := client.GetBody(t.Context(), "https://example.org/huge.json", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLimit))
}

func TestStatusCodeOfOtherErrors(t *testing.T) {
	t.Parallel()

	assert.Zero(t, StatusCode(nil))
	assert.Zero(t, StatusCode(errors.NewStd("plain")))
}

func TestDo_NilRequest(t *testing.T) {
	t.Parallel()

	_, err := newTestClient(t, nil).Do(t.Context(), nil)
	require.Error(t, err)
}

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()
	client := New(cfg)
	t.Cleanup(client.Close)
	return client
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

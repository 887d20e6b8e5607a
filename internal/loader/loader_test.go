package loader

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/conf"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/httpclient"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

const document = `{
  "lastUpdated": "2026-10-16T08:00:00-04:00",
  "region": "US-NY",
  "totalSightings": 1,
  "daysBack": 14,
  "sightings": [
    {"speciesCode": "grbher3", "comName": "Great Blue Heron", "sciName": "Ardea herodias",
     "locName": "Central Park", "lat": 40.78, "lng": -73.96, "obsDt": "2026-10-15 07:30", "howMany": 2}
  ]
}`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sightings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSourceLoad(t *testing.T) {
	t.Parallel()

	src := NewFileSource(writeFile(t, document))
	ds, err := src.Load(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "US-NY", ds.Region)
	require.Len(t, ds.Sightings, 1)
	assert.Equal(t, "Great Blue Heron", ds.Sightings[0].CommonName)
	assert.Contains(t, src.String(), "sightings.json")
}

func TestFileSourceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     func(t *testing.T) string
		category errors.ErrorCategory
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }, errors.CategoryFileIO},
		{"malformed", func(t *testing.T) string { return writeFile(t, "{not json") }, errors.CategoryFileParsing},
		{"null document", func(t *testing.T) string { return writeFile(t, "null") }, errors.CategoryFileParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewFileSource(tt.path(t)).Load(t.Context())
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, tt.category), "got %v", err)
		})
	}
}

func TestFileSourceCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewFileSource(writeFile(t, document)).Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}

func newMockedClient(t *testing.T) (*httpclient.Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := httpclient.New(&httpclient.Config{DefaultTimeout: 5 * time.Second, Transport: transport})
	t.Cleanup(client.Close)
	return client, transport
}

func TestHTTPSourceLoadAndCache(t *testing.T) {
	t.Parallel()

	const url = "https://example.org/data/sightings.json"
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, url, httpmock.NewStringResponder(http.StatusOK, document))

	src := NewHTTPSource(url, client, time.Minute)

	first, err := src.Load(t.Context())
	require.NoError(t, err)
	second, err := src.Load(t.Context())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, transport.GetTotalCallCount())

	src.Invalidate()
	_, err = src.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, transport.GetTotalCallCount())
}

func TestHTTPSourceWithoutCache(t *testing.T) {
	t.Parallel()

	const url = "https://example.org/sightings.json"
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, url, httpmock.NewStringResponder(http.StatusOK, document))

	src := NewHTTPSource(url, client, 0)
	for range 3 {
		_, err := src.Load(t.Context())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, transport.GetTotalCallCount())
}

func TestHTTPSourceErrors(t *testing.T) {
	t.Parallel()

	const url = "https://example.org/sightings.json"

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		client, transport := newMockedClient(t)
		transport.RegisterResponder(http.MethodGet, url, httpmock.NewStringResponder(http.StatusNotFound, "gone"))

		_, err := NewHTTPSource(url, client, time.Minute).Load(t.Context())
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httpclient.StatusCode(err))
		assert.True(t, errors.IsCategory(err, errors.CategoryHTTP))
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		client, transport := newMockedClient(t)
		transport.RegisterResponder(http.MethodGet, url, httpmock.NewStringResponder(http.StatusOK, "<html>"))

		src := NewHTTPSource(url, client, time.Minute)
		_, err := src.Load(t.Context())
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))

		// failures are not cached
		transport.RegisterResponder(http.MethodGet, url, httpmock.NewStringResponder(http.StatusOK, document))
		_, err = src.Load(t.Context())
		require.NoError(t, err)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()
		client, transport := newMockedClient(t)
		transport.RegisterResponder(http.MethodGet, url, httpmock.NewErrorResponder(errors.NewStd("connection refused")))

		_, err := NewHTTPSource(url, client, 0).Load(t.Context())
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))
	})
}

func TestStatic(t *testing.T) {
	t.Parallel()

	_, err := Static{}.Load(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	ds := &sightings.Dataset{Region: "US-NY"}
	got, err := Static{Dataset: ds}.Load(t.Context())
	require.NoError(t, err)
	assert.Same(t, ds, got)
}

func TestNewSourcePrefersURL(t *testing.T) {
	t.Parallel()

	src := NewSource(conf.DataSettings{Path: "data/sightings.json", URL: "https://example.org/sightings.json", CacheTTL: time.Minute}, nil)
	hs, ok := src.(*HTTPSource)
	require.True(t, ok)
	assert.Equal(t, "url:https://example.org/sightings.json", hs.String())

	src = NewSource(conf.DataSettings{Path: "data/sightings.json"}, nil)
	fs, ok := src.(*FileSource)
	require.True(t, ok)
	assert.Equal(t, "data/sightings.json", fs.Path)
}

package ebird

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/httpclient"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability/metrics"
)

// maxResponseSize caps the body read from a single API response (16 MiB).
const maxResponseSize = 16 << 20

// Client provides methods for interacting with the eBird API
type Client struct {
	config  Config
	http    *httpclient.Client
	cache   *cache.Cache
	limiter *rate.Limiter
	log     logger.Logger
	metrics *metrics.EBirdMetrics

	firstCallOnce sync.Once

	apiCalls    atomic.Int64
	apiErrors   atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	totalNanos  atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, e.g. to use a mock transport.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMetrics records API calls in m.
func WithMetrics(m *metrics.EBirdMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a new eBird API client
func NewClient(config Config, opts ...Option) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.Newf("eBird API key is required").
			Category(errors.CategoryConfiguration).
			Component("ebird").
			Build()
	}

	// Use defaults for missing config values
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = def.CacheTTL
	}
	if config.RateLimit <= 0 {
		config.RateLimit = def.RateLimit
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = def.MaxRetries
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = def.RetryBackoff
	}

	c := &Client{
		config:  config,
		cache:   cache.New(config.CacheTTL, config.CacheTTL*2),
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		log:     logger.Global().Module("ebird"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.New(&httpclient.Config{DefaultTimeout: config.Timeout})
	}

	c.log.Info("eBird client initialized",
		logger.String("base_url", config.BaseURL),
		logger.Duration("cache_ttl", config.CacheTTL),
		logger.Float64("rate_limit", config.RateLimit),
		logger.Int("max_retries", config.MaxRetries))

	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.Close()
}

// RecentNotable returns the notable observations of region over the last
// daysBack days. Results are cached per region and window.
func (c *Client) RecentNotable(ctx context.Context, region string, daysBack int) ([]Observation, error) {
	if region == "" {
		return nil, errors.Newf("region code is required").
			Category(errors.CategoryValidation).
			Component("ebird").
			Build()
	}

	cacheKey := fmt.Sprintf("notable:%s:%d", region, daysBack)
	if cached, found := c.cache.Get(cacheKey); found {
		c.cacheHits.Add(1)
		c.metrics.RecordCacheHit()
		c.log.Debug("Notable observations served from cache", logger.String("region", region))
		return cached.([]Observation), nil
	}
	c.cacheMisses.Add(1)

	q := url.Values{}
	q.Set("back", fmt.Sprint(daysBack))
	q.Set("detail", "full")
	q.Set("hotspot", "false")
	endpoint := fmt.Sprintf("%s/data/obs/%s/recent/notable?%s", c.config.BaseURL, url.PathEscape(region), q.Encode())

	var obs []Observation
	if err := c.doRequestWithRetry(ctx, endpoint, &obs); err != nil {
		return nil, err
	}
	if obs == nil {
		obs = []Observation{}
	}

	c.cache.Set(cacheKey, obs, cache.DefaultExpiration)
	c.log.Info("Fetched notable observations",
		logger.String("region", region),
		logger.Int("days_back", daysBack),
		logger.Int("count", len(obs)))

	return obs, nil
}

// doRequest performs one rate limited, authenticated GET and decodes the
// JSON body into result.
func (c *Client) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.New(err).
			Category(errors.CategoryCancellation).
			Component("ebird").
			Context("operation", "rate_limit_wait").
			Build()
	}

	c.apiCalls.Add(1)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		c.apiErrors.Add(1)
		return errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", endpoint).
			Component("ebird").
			Build()
	}
	req.Header.Set("X-eBirdApiToken", c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.apiErrors.Add(1)
		c.metrics.RecordRequest(0, time.Since(start).Seconds())
		c.log.Error("eBird API request failed", logger.Error(err), logger.String("url", endpoint))

		category := errors.CategoryNetwork
		if ctx.Err() != nil {
			category = errors.CategoryCancellation
		}
		return errors.Newf("HTTP request failed: %w", err).
			Category(category).
			Context("url", endpoint).
			Component("ebird").
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	duration := time.Since(start)
	c.metrics.RecordRequest(resp.StatusCode, duration.Seconds())
	if err != nil {
		c.apiErrors.Add(1)
		return errors.Newf("failed to read response body: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", endpoint).
			Context("status_code", resp.StatusCode).
			Component("ebird").
			Build()
	}
	if len(body) > maxResponseSize {
		c.apiErrors.Add(1)
		return errors.Newf("eBird API response exceeds %d bytes", maxResponseSize).
			Category(errors.CategoryLimit).
			Context("url", endpoint).
			Component("ebird").
			Build()
	}

	if resp.StatusCode >= 400 {
		c.apiErrors.Add(1)
		return c.statusError(resp.StatusCode, endpoint, body)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "application/json") {
		c.apiErrors.Add(1)
		c.log.Error("eBird API returned non-JSON response",
			logger.Int("status_code", resp.StatusCode),
			logger.String("content_type", contentType),
			logger.String("response_preview", preview(body)))
		return errors.Newf("eBird API returned non-JSON response (Content-Type: %s)", contentType).
			Category(errors.CategoryIntegration).
			Context("status_code", resp.StatusCode).
			Context("content_type", contentType).
			Context("url", endpoint).
			Component("ebird").
			Build()
	}

	if err := json.Unmarshal(body, result); err != nil {
		c.apiErrors.Add(1)
		c.log.Error("Failed to parse eBird API response",
			logger.Error(err),
			logger.Int("response_size", len(body)),
			logger.String("response_preview", preview(body)))
		return errors.Newf("failed to parse response: %w", err).
			Category(errors.CategoryFileParsing).
			Context("url", endpoint).
			Context("response_size", len(body)).
			Component("ebird").
			Build()
	}

	c.totalNanos.Add(int64(duration))
	c.firstCallOnce.Do(func() {
		c.log.Info("eBird API authentication successful")
	})
	c.log.Debug("eBird API request successful",
		logger.String("url", endpoint),
		logger.Duration("duration", duration),
		logger.Int("response_size", len(body)))

	return nil
}

// statusError builds the error for a response with status >= 400. The body
// is decoded as an eBird error document when possible.
func (c *Client) statusError(status int, endpoint string, body []byte) error {
	var apiErr Error
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &apiErr); err == nil && (apiErr.Title != "" || apiErr.Detail != "") {
		msg = apiErr.Error()
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.log.Error("eBird API authentication failed, check the API key",
			logger.Int("status_code", status),
			logger.String("detail", msg))
	} else {
		c.log.Warn("eBird API error response",
			logger.Int("status_code", status),
			logger.String("detail", preview([]byte(msg))))
	}

	return errors.Newf("eBird API error (status %d): %s", status, preview([]byte(msg))).
		Category(getErrorCategory(status)).
		Context("status_code", status).
		Context("url", endpoint).
		Component("ebird").
		Build()
}

// doRequestWithRetry retries transient failures with a linearly growing delay.
func (c *Client) doRequestWithRetry(ctx context.Context, endpoint string, result any) error {
	var lastErr error
	for attempt := range c.config.MaxRetries {
		err := c.doRequest(ctx, endpoint, result)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) || ctx.Err() != nil {
			return err
		}
		if attempt == c.config.MaxRetries-1 {
			break
		}

		delay := time.Duration(attempt+1) * c.config.RetryBackoff
		c.log.Warn("eBird API request failed, retrying",
			logger.Int("attempt", attempt+1),
			logger.Int("max_retries", c.config.MaxRetries),
			logger.Duration("delay", delay),
			logger.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return errors.New(ctx.Err()).
				Category(errors.CategoryCancellation).
				Component("ebird").
				Build()
		}
	}
	return lastErr
}

// retryable reports whether err may succeed on another attempt.
func retryable(err error) bool {
	if !errors.Transient(err) {
		return false
	}
	var ee *errors.EnhancedError
	if !errors.As(err, &ee) {
		return true
	}
	if status, ok := ee.GetContext()["status_code"].(int); ok {
		// 429 is retried after the backoff
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			return false
		}
	}
	return true
}

// ClearCache clears all cached data
func (c *Client) ClearCache() {
	c.cache.Flush()
	c.log.Info("eBird cache cleared")
}

// Stats represents eBird client counters
type Stats struct {
	APICalls    int64         `json:"api_calls"`
	APIErrors   int64         `json:"api_errors"`
	CacheHits   int64         `json:"cache_hits"`
	CacheMisses int64         `json:"cache_misses"`
	AvgDuration time.Duration `json:"avg_duration"`
}

// Stats returns the current client counters.
func (c *Client) Stats() Stats {
	s := Stats{
		APICalls:    c.apiCalls.Load(),
		APIErrors:   c.apiErrors.Load(),
		CacheHits:   c.cacheHits.Load(),
		CacheMisses: c.cacheMisses.Load(),
	}
	if ok := s.APICalls - s.APIErrors; ok > 0 {
		s.AvgDuration = time.Duration(c.totalNanos.Load() / ok)
	}
	return s
}

// getErrorCategory determines the appropriate error category based on HTTP status code
func getErrorCategory(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.CategoryConfiguration
	case http.StatusTooManyRequests:
		return errors.CategoryLimit
	case http.StatusNotFound:
		return errors.CategoryNotFound
	case http.StatusBadRequest:
		return errors.CategoryValidation
	default:
		return errors.CategoryNetwork
	}
}

func preview(body []byte) string {
	const limit = 500
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

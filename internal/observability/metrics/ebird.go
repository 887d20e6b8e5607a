package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// EBirdMetrics tracks calls to the eBird API
type EBirdMetrics struct {
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	cacheHits       prometheus.Counter
}

// NewEBirdMetrics creates and registers eBird client metrics
func NewEBirdMetrics(registry prometheus.Registerer) (*EBirdMetrics, error) {
	m := &EBirdMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "ebird_requests_total",
				Help:      "Total number of eBird API requests by HTTP status",
			},
			[]string{"status"}, // HTTP status code, or "error" when no response arrived
		),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "ebird_request_duration_seconds",
			Help:      "Time taken for eBird API requests",
			Buckets:   prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount14),
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ebird_cache_hits_total",
			Help:      "Total number of eBird responses served from cache",
		}),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements the Collector interface
func (m *EBirdMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requests.Describe(ch)
	m.requestDuration.Describe(ch)
	m.cacheHits.Describe(ch)
}

// Collect implements the Collector interface
func (m *EBirdMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requests.Collect(ch)
	m.requestDuration.Collect(ch)
	m.cacheHits.Collect(ch)
}

// RecordRequest records one API call. statusCode 0 means no response.
func (m *EBirdMetrics) RecordRequest(statusCode int, seconds float64) {
	if m == nil {
		return
	}
	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	m.requests.WithLabelValues(status).Inc()
	m.requestDuration.Observe(seconds)
}

// RecordCacheHit counts a response served from cache
func (m *EBirdMetrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

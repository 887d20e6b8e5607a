// Package metrics provides the Prometheus collectors used by rarebirds.
package metrics

// Namespace prefixes every metric name.
const Namespace = "rarebirds"

// Load results recorded by DashboardMetrics.RecordDatasetLoad
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Bucket definitions
const (
	BucketStart100us = 0.0001
	BucketStart1ms   = 0.001
	BucketFactor2    = 2
	BucketCount12    = 12
	BucketCount14    = 14
)

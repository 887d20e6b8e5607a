package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics tracks dataset loads and filter work
type DashboardMetrics struct {
	datasetLoads     *prometheus.CounterVec
	datasetSightings prometheus.Gauge
	filterDuration   prometheus.Histogram
}

// NewDashboardMetrics creates and registers dashboard metrics
func NewDashboardMetrics(registry prometheus.Registerer) (*DashboardMetrics, error) {
	m := &DashboardMetrics{
		datasetLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "dataset_loads_total",
				Help:      "Total number of sightings document loads",
			},
			[]string{"result"}, // success, error
		),
		datasetSightings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "dataset_sightings",
			Help:      "Number of sightings in the currently loaded dataset",
		}),
		filterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "filter_duration_seconds",
			Help:      "Time taken to recompute the filtered sightings",
			Buckets:   prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount14), // 100µs to ~1.6s
		}),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements the Collector interface
func (m *DashboardMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.datasetLoads.Describe(ch)
	m.datasetSightings.Describe(ch)
	m.filterDuration.Describe(ch)
}

// Collect implements the Collector interface
func (m *DashboardMetrics) Collect(ch chan<- prometheus.Metric) {
	m.datasetLoads.Collect(ch)
	m.datasetSightings.Collect(ch)
	m.filterDuration.Collect(ch)
}

// RecordDatasetLoad counts a load attempt. A successful load also sets the
// sightings gauge.
func (m *DashboardMetrics) RecordDatasetLoad(result string, sightings int) {
	if m == nil {
		return
	}
	m.datasetLoads.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		m.datasetSightings.Set(float64(sightings))
	}
}

// ObserveFilter records how long a filter pass took
func (m *DashboardMetrics) ObserveFilter(d time.Duration) {
	if m == nil {
		return
	}
	m.filterDuration.Observe(d.Seconds())
}

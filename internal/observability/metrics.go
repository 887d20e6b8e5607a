// Package observability wires the Prometheus collectors of rarebirds into one registry.
package observability

import (
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	HTTP      *metrics.HTTPMetrics
	Dashboard *metrics.DashboardMetrics
	EBird     *metrics.EBirdMetrics
}

// NewMetrics creates a new instance of Metrics on its own registry, with the
// Go runtime and process collectors included.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, wrapInitError("http", err)
	}

	dashboardMetrics, err := metrics.NewDashboardMetrics(registry)
	if err != nil {
		return nil, wrapInitError("dashboard", err)
	}

	ebirdMetrics, err := metrics.NewEBirdMetrics(registry)
	if err != nil {
		return nil, wrapInitError("ebird", err)
	}

	return &Metrics{
		registry:  registry,
		HTTP:      httpMetrics,
		Dashboard: dashboardMetrics,
		EBird:     ebirdMetrics,
	}, nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

func wrapInitError(collector string, err error) error {
	return errors.Newf("failed to create %s metrics: %w", collector, err).
		Category(errors.CategoryConfiguration).
		Component("observability").
		Build()
}

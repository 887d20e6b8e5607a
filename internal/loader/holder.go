package loader

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability/metrics"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// Holder keeps the most recently loaded dataset for concurrent readers.
// A failed reload keeps the previous dataset.
type Holder struct {
	src      Source
	current  atomic.Pointer[sightings.Dataset]
	loadedAt atomic.Int64
	log      logger.Logger
	metrics  *metrics.DashboardMetrics
}

// NewHolder returns an empty holder backed by src.
func NewHolder(src Source, m *metrics.DashboardMetrics) *Holder {
	return &Holder{
		src:     src,
		log:     logger.Global().Module(component),
		metrics: m,
	}
}

// Reload reads src and swaps in the new dataset on success.
func (h *Holder) Reload(ctx context.Context) error {
	start := time.Now()
	ds, err := h.src.Load(ctx)
	if err != nil {
		h.metrics.RecordDatasetLoad(metrics.ResultError, 0)
		h.log.Warn("Sightings reload failed, keeping previous dataset",
			logger.Error(err),
			logger.Bool("have_previous", h.current.Load() != nil))
		return err
	}

	h.current.Store(ds)
	h.loadedAt.Store(time.Now().UnixNano())
	h.metrics.RecordDatasetLoad(metrics.ResultSuccess, len(ds.Sightings))
	h.log.Info("Sightings reloaded",
		logger.Int("sightings", len(ds.Sightings)),
		logger.String("region", ds.Region),
		logger.Duration("elapsed", time.Since(start)))
	return nil
}

// Current returns the held dataset, or nil before the first successful load.
func (h *Holder) Current() *sightings.Dataset {
	return h.current.Load()
}

// LoadedAt returns when the held dataset was loaded.
func (h *Holder) LoadedAt() time.Time {
	ns := h.loadedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Load returns the held dataset without touching src.
func (h *Holder) Load(context.Context) (*sightings.Dataset, error) {
	ds := h.current.Load()
	if ds == nil {
		return nil, errors.Newf("sightings not loaded").
			Category(errors.CategoryNotFound).
			Component(component).
			Build()
	}
	return ds, nil
}

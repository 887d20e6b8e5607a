package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/debounce"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability/metrics"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/regions"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// Source provides the sightings document.
type Source interface {
	Load(ctx context.Context) (*sightings.Dataset, error)
}

// Config holds the tunables of an App.
type Config struct {
	SearchDebounce time.Duration  // quiet period before a search is applied
	FitPadding     int            // pixel padding when fitting the map to markers
	Location       *time.Location // timezone for the last updated header
}

// DefaultConfig returns the dashboard defaults.
func DefaultConfig() Config {
	return Config{
		SearchDebounce: debounce.DefaultDelay,
		FitPadding:     50,
		Location:       time.Local,
	}
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.DashboardMetrics) Option {
	return func(a *App) { a.metrics = m }
}

// WithSharedSource marks the source as loaded and accounted for elsewhere,
// for example a cached holder serving many short lived apps. Only filter
// timings are recorded and load failures are logged at debug level.
func WithSharedSource(m *metrics.DashboardMetrics) Option {
	return func(a *App) {
		a.metrics = m
		a.countLoads = false
	}
}

// State is a consistent copy of the App state.
type State struct {
	Loaded   bool
	Criteria sightings.Criteria
	Sort     sightings.SortState
	Rows     []sightings.Sighting // filtered and sorted
	Markers  int
	Summary  sightings.Summary
	Species  []string
}

// App owns the dashboard state: the record store, the filter criteria, the
// sort state and the renderers. Event methods are serialised by a mutex so the
// debounced search callback never runs concurrently with another event.
type App struct {
	mu sync.Mutex

	source  Source
	target  Target
	store   *sightings.Store
	crit    sightings.Criteria
	sort    sightings.SortState
	loaded  bool
	summary sightings.Summary
	species []string
	markers int

	table    *TableRenderer
	mapView  *MapRenderer
	summaryR *SummaryRenderer
	search   *debounce.Debouncer
	location *time.Location

	log        logger.Logger
	metrics    *metrics.DashboardMetrics
	countLoads bool
}

// New creates an App reading from source and rendering to target and surface.
func New(source Source, target Target, surface MapSurface, cfg Config, opts ...Option) *App {
	a := &App{
		source:   source,
		target:   target,
		store:    sightings.NewStore(),
		sort:     sightings.DefaultSortState(),
		search:   debounce.New(cfg.SearchDebounce),
		location: cfg.Location,
		log:      logger.Global().Module("dashboard"),

		countLoads: true,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.table = NewTableRenderer(target)
	a.mapView = NewMapRenderer(surface, cfg.FitPadding, a.log.Module("map"))
	a.summaryR = NewSummaryRenderer(target)

	return a
}

// Load fetches the dataset and renders everything. While the fetch is
// outstanding the table shows the loading placeholder. A failed load shows
// the no-data placeholder, leaves the map empty and returns the error for
// diagnostics only.
func (a *App) Load(ctx context.Context) error {
	a.mu.Lock()
	a.target.SetPlaceholder(PlaceholderLoading)
	a.mu.Unlock()

	start := time.Now()
	ds, err := a.source.Load(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		if a.countLoads {
			a.log.Error("Failed to load sightings", logger.Error(err), logger.Duration("elapsed", time.Since(start)))
			a.metrics.RecordDatasetLoad(metrics.ResultError, 0)
		} else {
			a.log.Debug("Failed to load sightings", logger.Error(err), logger.Duration("elapsed", time.Since(start)))
		}

		a.store.Replace(nil)
		a.loaded = false
		a.crit = sightings.Criteria{}
		a.summary = sightings.Summary{}
		a.species = nil
		a.markers = 0
		a.mapView.surface.ClearMarkers()
		a.target.SetHeader(Header{})
		a.summaryR.Render(a.summary)
		a.target.SetSpeciesOptions(nil)
		a.target.SetPlaceholder(PlaceholderNoData)
		return err
	}

	a.store.Replace(ds)
	a.loaded = true
	a.crit = sightings.Criteria{}
	a.summary = sightings.Summarize(ds)
	a.species = sightings.SpeciesNames(ds.Sightings)

	a.target.SetHeader(Header{
		LastUpdated: FormatLastUpdated(ds.LastUpdated, a.location),
		Region:      ds.Region,
		RegionName:  regions.Name(ds.Region),
	})
	a.summaryR.Render(a.summary)
	a.target.SetSpeciesOptions(a.species)

	a.renderAllLocked()

	logf := a.log.Debug
	if a.countLoads {
		a.metrics.RecordDatasetLoad(metrics.ResultSuccess, len(ds.Sightings))
		logf = a.log.Info
	}
	logf("Sightings loaded",
		logger.Int("sightings", len(ds.Sightings)),
		logger.String("region", ds.Region),
		logger.Duration("elapsed", time.Since(start)))

	return nil
}

// SelectSpecies filters by exact common name. Empty shows all species.
func (a *App) SelectSpecies(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.crit.Species = name
	a.applyLocked()
}

// Search schedules a free-text search after the debounce delay. Rapid calls
// collapse into one filter pass using the last text.
func (a *App) Search(text string) {
	a.search.Trigger(func() { a.applySearch(text) })
}

// SearchNow applies a free-text search immediately, dropping any pending one.
func (a *App) SearchNow(text string) {
	a.search.Cancel()
	a.applySearch(text)
}

func (a *App) applySearch(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.crit.Search = text
	a.applyLocked()
}

// FlushSearch applies a pending debounced search now. It reports whether one
// was pending.
func (a *App) FlushSearch() bool {
	return a.search.Flush()
}

// Reset clears both criteria and shows every sighting.
func (a *App) Reset() {
	a.search.Cancel()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.crit = sightings.Criteria{}
	a.applyLocked()
}

// SetCriteria replaces both criteria at once, dropping any pending search.
func (a *App) SetCriteria(c sightings.Criteria) {
	a.search.Cancel()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.crit = c
	a.applyLocked()
}

// SortBy handles a header click on col. Only the table is re-rendered.
func (a *App) SortBy(col sightings.Column) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sort = a.sort.Toggle(col)
	a.renderTableLocked()
}

// SetSort installs an explicit sort state and re-renders the table.
func (a *App) SetSort(st sightings.SortState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sort = st
	a.renderTableLocked()
}

// ApplyFilters recomputes the filtered subset and re-renders map and table.
func (a *App) ApplyFilters() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applyLocked()
}

// Snapshot returns a copy of the current state.
func (a *App) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{
		Loaded:   a.loaded,
		Criteria: a.crit,
		Sort:     a.sort,
		Rows:     sightings.Sort(a.store.Filtered(), a.sort),
		Markers:  a.markers,
		Summary:  a.summary,
		Species:  append([]string(nil), a.species...),
	}
}

// Close cancels any pending search.
func (a *App) Close() {
	a.search.Stop()
}

func (a *App) applyLocked() {
	if !a.loaded {
		return
	}
	start := time.Now()
	a.store.Apply(a.crit)
	a.metrics.ObserveFilter(time.Since(start))
	a.renderAllLocked()
}

func (a *App) renderAllLocked() {
	a.markers = a.mapView.Render(a.store.Filtered())
	a.renderTableLocked()
}

func (a *App) renderTableLocked() {
	if !a.loaded {
		return
	}
	a.table.Render(sightings.Sort(a.store.Filtered(), a.sort), a.sort)
}

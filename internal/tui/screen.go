// Package tui is the terminal front end of the sightings dashboard.
package tui

import (
	"slices"
	"sync"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/dashboard"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// Screen is a dashboard.Target the terminal model reads from. Renderers may
// push into it from the debounce goroutine, so every access is locked and
// each change is signalled on Changed.
type Screen struct {
	mu      sync.Mutex
	page    dashboard.Page
	changed chan struct{}
}

// NewScreen returns an empty screen.
func NewScreen() *Screen {
	return &Screen{changed: make(chan struct{}, 1)}
}

// Changed receives a value after one or more updates. Bursts coalesce.
func (s *Screen) Changed() <-chan struct{} { return s.changed }

func (s *Screen) update(fn func(p *dashboard.Page)) {
	s.mu.Lock()
	fn(&s.page)
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// SetHeader implements dashboard.Target.
func (s *Screen) SetHeader(h dashboard.Header) {
	s.update(func(p *dashboard.Page) { p.SetHeader(h) })
}

// SetSummary implements dashboard.Target.
func (s *Screen) SetSummary(v dashboard.SummaryView) {
	s.update(func(p *dashboard.Page) { p.SetSummary(v) })
}

// SetSpeciesOptions implements dashboard.Target.
func (s *Screen) SetSpeciesOptions(names []string) {
	s.update(func(p *dashboard.Page) { p.SetSpeciesOptions(names) })
}

// SetRows implements dashboard.Target.
func (s *Screen) SetRows(rows []dashboard.TableRow) {
	s.update(func(p *dashboard.Page) { p.SetRows(rows) })
}

// SetPlaceholder implements dashboard.Target.
func (s *Screen) SetPlaceholder(text string) {
	s.update(func(p *dashboard.Page) { p.SetPlaceholder(text) })
}

// SetSortIndicator implements dashboard.Target.
func (s *Screen) SetSortIndicator(col sightings.Column, dir sightings.Direction) {
	s.update(func(p *dashboard.Page) { p.SetSortIndicator(col, dir) })
}

// Page returns a copy of the current state.
func (s *Screen) Page() dashboard.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.page
	p.Rows = slices.Clone(p.Rows)
	p.SpeciesOptions = slices.Clone(p.SpeciesOptions)
	return p
}

// mapPane guards a GeoSurface for the same reason Screen is locked.
type mapPane struct {
	mu  sync.Mutex
	geo *dashboard.GeoSurface
}

func newMapPane(def dashboard.Viewport) *mapPane {
	return &mapPane{geo: dashboard.NewGeoSurface(def)}
}

func (m *mapPane) ClearMarkers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geo.ClearMarkers()
}

func (m *mapPane) AddMarker(mk dashboard.Marker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geo.AddMarker(mk)
}

func (m *mapPane) Bounds() (dashboard.Bounds, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.geo.Bounds()
}

func (m *mapPane) FitBounds(b dashboard.Bounds, padding int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.geo.FitBounds(b, padding)
}

// snapshot returns the marker count and viewport.
func (m *mapPane) snapshot() (int, dashboard.Viewport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.geo.Markers()), m.geo.Viewport()
}

package dashboard

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// LatLng is a geographic coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the rectangle enclosing a set of markers.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// Extend grows b to include p.
func (b Bounds) Extend(p LatLng) Bounds {
	b.SouthWest.Lat = min(b.SouthWest.Lat, p.Lat)
	b.SouthWest.Lng = min(b.SouthWest.Lng, p.Lng)
	b.NorthEast.Lat = max(b.NorthEast.Lat, p.Lat)
	b.NorthEast.Lng = max(b.NorthEast.Lng, p.Lng)
	return b
}

// Marker is one map marker with its popup.
type Marker struct {
	Position LatLng        `json:"position"`
	Title    string        `json:"title"`
	Popup    template.HTML `json:"popup"`
}

// MapSurface is the map and clustering engine the renderer drives.
type MapSurface interface {
	ClearMarkers()
	AddMarker(m Marker)
	// Bounds returns the bounds of the current markers; ok is false when
	// there are none.
	Bounds() (b Bounds, ok bool)
	FitBounds(b Bounds, padding int)
}

// Viewport is what the map shows. Before any FitBounds it is the default
// centre and zoom; afterwards Fit holds the fitted bounds.
type Viewport struct {
	Center  LatLng  `json:"center"`
	Zoom    int     `json:"zoom"`
	Fit     *Bounds `json:"fit,omitempty"`
	Padding int     `json:"padding,omitempty"`
}

// GeoSurface is an in-process MapSurface. It records markers and the
// viewport so that a browser or terminal front end can draw them.
// It is not safe for concurrent use.
type GeoSurface struct {
	markers  []Marker
	viewport Viewport
}

// NewGeoSurface returns an empty surface showing def.
func NewGeoSurface(def Viewport) *GeoSurface {
	return &GeoSurface{markers: []Marker{}, viewport: def}
}

// ClearMarkers implements MapSurface.
func (g *GeoSurface) ClearMarkers() { g.markers = g.markers[:0] }

// AddMarker implements MapSurface.
func (g *GeoSurface) AddMarker(m Marker) { g.markers = append(g.markers, m) }

// Bounds implements MapSurface.
func (g *GeoSurface) Bounds() (Bounds, bool) {
	if len(g.markers) == 0 {
		return Bounds{}, false
	}
	first := g.markers[0].Position
	b := Bounds{SouthWest: first, NorthEast: first}
	for _, m := range g.markers[1:] {
		b = b.Extend(m.Position)
	}
	return b, true
}

// FitBounds implements MapSurface.
func (g *GeoSurface) FitBounds(b Bounds, padding int) {
	g.viewport.Fit = &b
	g.viewport.Padding = padding
	g.viewport.Center = LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

// Markers returns a copy of the placed markers.
func (g *GeoSurface) Markers() []Marker {
	out := make([]Marker, len(g.markers))
	copy(out, g.markers)
	return out
}

// Viewport returns the current viewport.
func (g *GeoSurface) Viewport() Viewport { return g.viewport }

const popupTemplate = `<div class="popup-content">` +
	`<h3>{{.CommonName}}</h3>` +
	`<p class="sci-name">{{.ScientificName}}</p>` +
	`<p><strong>Location:</strong> {{.Location}}</p>` +
	`<p><strong>Date:</strong> {{.Date}}</p>` +
	`<p><strong>Count:</strong> {{.Count}}</p>` +
	`<p><a href="{{or .SpeciesLink "#"}}" target="_blank" rel="noopener">Species Info</a>` +
	`{{with .ChecklistLink}} | <a href="{{.}}" target="_blank" rel="noopener">Checklist</a>{{end}}</p>` +
	`</div>`

var (
	popupOnce sync.Once
	popupTmpl *template.Template
)

func popup() *template.Template {
	popupOnce.Do(func() {
		popupTmpl = template.Must(template.New("popup").Parse(popupTemplate))
	})
	return popupTmpl
}

// RenderPopup returns the escaped popup markup for row.
func RenderPopup(row *TableRow) (template.HTML, error) {
	var buf bytes.Buffer
	if err := popup().Execute(&buf, row); err != nil {
		return "", err
	}
	// #nosec G203 -- produced by html/template, every field is escaped
	return template.HTML(buf.String()), nil
}

// MapRenderer places the filtered sightings on a MapSurface.
type MapRenderer struct {
	surface MapSurface
	padding int
	log     logger.Logger
}

// NewMapRenderer returns a renderer fitting bounds with the given pixel padding.
func NewMapRenderer(surface MapSurface, padding int, log logger.Logger) *MapRenderer {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &MapRenderer{surface: surface, padding: padding, log: log}
}

// Render replaces the markers with one per sighting that has coordinates and
// fits the viewport to them. With no markers the viewport is left alone.
// It returns the number of markers placed.
func (r *MapRenderer) Render(rows []sightings.Sighting) int {
	r.surface.ClearMarkers()

	placed := 0
	for i := range rows {
		s := &rows[i]
		if !s.HasCoordinates() {
			continue
		}

		row := ProjectRow(s)
		html, err := RenderPopup(&row)
		if err != nil {
			r.log.Warn("popup rendering failed", logger.Error(err), logger.String("species", s.CommonName))
		}

		r.surface.AddMarker(Marker{
			Position: LatLng{Lat: *s.Lat, Lng: *s.Lng},
			Title:    s.CommonName,
			Popup:    html,
		})
		placed++
	}

	if placed == 0 {
		return 0
	}
	if b, ok := r.surface.Bounds(); ok {
		r.surface.FitBounds(b, r.padding)
	}
	return placed
}

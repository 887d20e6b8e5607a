package httpcontroller

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/dashboard"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability/metrics"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// Query is the dashboard state carried in the URL.
type Query struct {
	Species string
	Search  string
	Sort    sightings.SortState
}

// ParseQuery reads species, q, sort and dir. Filter values are kept as sent
// unless blank. Unknown sort values fall back to the default order.
func ParseQuery(v url.Values) Query {
	q := Query{
		Species: nonBlank(v.Get("species")),
		Search:  nonBlank(v.Get("q")),
		Sort:    sightings.DefaultSortState(),
	}
	if col, ok := sightings.ParseColumn(v.Get("sort")); ok {
		q.Sort.Column = col
		q.Sort.Direction = sightings.Ascending
	}
	if dir, ok := sightings.ParseDirection(v.Get("dir")); ok {
		q.Sort.Direction = dir
	}
	return q
}

func nonBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// Criteria returns the filter criteria of q.
func (q Query) Criteria() sightings.Criteria {
	return sightings.Criteria{Species: q.Species, Search: q.Search}
}

// Values encodes q, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Species != "" {
		v.Set("species", q.Species)
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Sort != sightings.DefaultSortState() {
		v.Set("sort", string(q.Sort.Column))
		v.Set("dir", string(q.Sort.Direction))
	}
	return v
}

// Href returns the dashboard URL for q.
func (q Query) Href() string {
	if enc := q.Values().Encode(); enc != "" {
		return "/?" + enc
	}
	return "/"
}

// ColumnHead is one sortable header cell.
type ColumnHead struct {
	Key   sightings.Column
	Label string
	Class string // sort-asc, sort-desc or empty
	Href  string // link that applies the toggled sort
}

var tableColumns = []struct {
	key   sightings.Column
	label string
}{
	{sightings.ColumnCommonName, "Species"},
	{sightings.ColumnLocation, "Location"},
	{sightings.ColumnDate, "Date"},
	{sightings.ColumnCount, "Count"},
}

// ViewOptions configures BuildView.
type ViewOptions struct {
	Map           dashboard.Viewport
	FitPadding    int
	ClusterRadius int
	Debounce      time.Duration // search input quiet period in the browser
	Location      *time.Location
	Logger        logger.Logger
	Metrics       *metrics.DashboardMetrics
}

// View is everything the dashboard page and the JSON API show.
type View struct {
	Page          *dashboard.Page
	Markers       []dashboard.Marker
	Viewport      dashboard.Viewport
	Query         Query
	Columns       []ColumnHead
	Loaded        bool
	ClusterRadius int
	FitPadding    int
	Debounce      time.Duration
	Generated     time.Time
}

// MapPlan is the marker plan handed to the browser map.
type MapPlan struct {
	Markers       []dashboard.Marker `json:"markers"`
	Viewport      dashboard.Viewport `json:"viewport"`
	ClusterRadius int                `json:"clusterRadius"`
	DebounceMS    int64              `json:"debounceMs"`
}

// MapPlan returns the browser map plan of v.
func (v *View) MapPlan() MapPlan {
	return MapPlan{
		Markers:       v.Markers,
		Viewport:      v.Viewport,
		ClusterRadius: v.ClusterRadius,
		DebounceMS:    v.Debounce.Milliseconds(),
	}
}

// ResetHref clears both filters and keeps the sort.
func (v *View) ResetHref() string {
	return Query{Sort: v.Query.Sort}.Href()
}

// BuildView loads src and renders it for q. A failed load still yields a
// view showing the no-data placeholder; the error is returned alongside.
func BuildView(ctx context.Context, src dashboard.Source, q Query, opts ViewOptions) (*View, error) {
	page := &dashboard.Page{}
	surface := dashboard.NewGeoSurface(opts.Map)

	cfg := dashboard.DefaultConfig()
	cfg.FitPadding = opts.FitPadding
	if opts.Location != nil {
		cfg.Location = opts.Location
	}

	app := dashboard.New(src, page, surface, cfg,
		dashboard.WithLogger(opts.Logger),
		dashboard.WithSharedSource(opts.Metrics))
	defer app.Close()

	loadErr := app.Load(ctx)
	if loadErr == nil {
		app.SetSort(q.Sort)
		if crit := q.Criteria(); !crit.IsZero() {
			app.SetCriteria(crit)
		}
	}

	v := &View{
		Page:          page,
		Markers:       surface.Markers(),
		Viewport:      surface.Viewport(),
		Query:         q,
		Loaded:        app.Snapshot().Loaded,
		ClusterRadius: opts.ClusterRadius,
		FitPadding:    opts.FitPadding,
		Debounce:      opts.Debounce,
		Generated:     time.Now(),
	}
	v.Columns = columnHeads(page, q)
	return v, loadErr
}

func columnHeads(page *dashboard.Page, q Query) []ColumnHead {
	heads := make([]ColumnHead, 0, len(tableColumns))
	for _, c := range tableColumns {
		next := q
		next.Sort = q.Sort.Toggle(c.key)
		heads = append(heads, ColumnHead{
			Key:   c.key,
			Label: c.label,
			Class: page.SortClass(string(c.key)),
			Href:  next.Href(),
		})
	}
	return heads
}

// SightingsResponse is the JSON form of a View.
type SightingsResponse struct {
	Header      dashboard.Header      `json:"header"`
	Summary     dashboard.SummaryView `json:"summary"`
	Rows        []RowResponse         `json:"rows"`
	Placeholder string                `json:"placeholder,omitempty"`
	Markers     []dashboard.Marker    `json:"markers"`
	Viewport    dashboard.Viewport    `json:"viewport"`
	Sort        SortResponse          `json:"sort"`
	Species     string                `json:"species,omitempty"`
	Search      string                `json:"q,omitempty"`
}

// RowResponse is one table row.
type RowResponse struct {
	CommonName     string `json:"comName"`
	ScientificName string `json:"sciName"`
	Location       string `json:"locName"`
	Date           string `json:"date"`
	Count          string `json:"count"`
	SpeciesLink    string `json:"speciesLink"`
	ChecklistLink  string `json:"checklistLink,omitempty"`
}

// SortResponse is the active sort.
type SortResponse struct {
	Column    sightings.Column    `json:"column"`
	Direction sightings.Direction `json:"direction"`
}

// Response converts v for the JSON API.
func (v *View) Response() SightingsResponse {
	rows := make([]RowResponse, 0, len(v.Page.Rows))
	for i := range v.Page.Rows {
		r := &v.Page.Rows[i]
		rows = append(rows, RowResponse{
			CommonName:     r.CommonName,
			ScientificName: r.ScientificName,
			Location:       r.Location,
			Date:           r.Date,
			Count:          r.Count,
			SpeciesLink:    r.SpeciesLink,
			ChecklistLink:  r.ChecklistLink,
		})
	}
	return SightingsResponse{
		Header:      v.Page.Header,
		Summary:     v.Page.Summary,
		Rows:        rows,
		Placeholder: v.Page.Placeholder,
		Markers:     v.Markers,
		Viewport:    v.Viewport,
		Sort:        SortResponse{Column: v.Query.Sort.Column, Direction: v.Query.Sort.Direction},
		Species:     v.Query.Species,
		Search:      v.Query.Search,
	}
}

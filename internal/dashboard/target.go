// Package dashboard holds the application state of the sightings dashboard and
// the renderers that project it onto a display surface.
package dashboard

import (
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// Placeholder texts shown in the table area.
const (
	PlaceholderLoading = "Loading sightings..."
	PlaceholderNoData  = "No data available. Run the scraper first."
	PlaceholderNoMatch = "No sightings match your filters."
)

// Header is the document metadata shown above the dashboard.
type Header struct {
	LastUpdated string // formatted timestamp, empty when the document has none
	Region      string // region code
	RegionName  string // display name of Region
}

// SummaryView holds the formatted summary counters.
type SummaryView struct {
	Total           string
	UniqueSpecies   string
	UniqueLocations string
	DaysCovered     string
}

// TableRow is one sighting projected for display. Text fields are raw; the
// surface is responsible for escaping them. Links are empty unless they use
// http or https.
type TableRow struct {
	CommonName     string
	ScientificName string
	Location       string
	Date           string
	Count          string
	SpeciesLink    string
	ChecklistLink  string
}

// Target is a display surface. Renderers push state into it; it never calls back.
type Target interface {
	SetHeader(h Header)
	SetSummary(s SummaryView)
	SetSpeciesOptions(names []string)
	SetRows(rows []TableRow)
	SetPlaceholder(text string)
	SetSortIndicator(col sightings.Column, dir sightings.Direction)
}

// Page is a Target that keeps the last state pushed into it. The web front end
// renders it with html/template and tests inspect it directly.
type Page struct {
	Header         Header
	Summary        SummaryView
	SpeciesOptions []string
	Rows           []TableRow
	Placeholder    string
	SortColumn     sightings.Column
	SortDirection  sightings.Direction
}

// SetHeader implements Target.
func (p *Page) SetHeader(h Header) { p.Header = h }

// SetSummary implements Target.
func (p *Page) SetSummary(s SummaryView) { p.Summary = s }

// SetSpeciesOptions implements Target.
func (p *Page) SetSpeciesOptions(names []string) { p.SpeciesOptions = names }

// SetRows implements Target. It clears any placeholder.
func (p *Page) SetRows(rows []TableRow) {
	p.Rows = rows
	p.Placeholder = ""
}

// SetPlaceholder implements Target. It clears any rows.
func (p *Page) SetPlaceholder(text string) {
	p.Rows = nil
	p.Placeholder = text
}

// SetSortIndicator implements Target.
func (p *Page) SetSortIndicator(col sightings.Column, dir sightings.Direction) {
	p.SortColumn = col
	p.SortDirection = dir
}

// SortClass returns the CSS class of the header cell for col.
func (p *Page) SortClass(col string) string {
	if sightings.Column(col) != p.SortColumn {
		return ""
	}
	if p.SortDirection == sightings.Ascending {
		return "sort-asc"
	}
	return "sort-desc"
}

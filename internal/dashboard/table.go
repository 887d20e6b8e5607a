package dashboard

import (
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// TableRenderer projects ordered sightings into table rows.
type TableRenderer struct {
	target Target
}

// NewTableRenderer returns a renderer writing to target.
func NewTableRenderer(target Target) *TableRenderer {
	return &TableRenderer{target: target}
}

// Render shows rows in the given order. st only drives the header indicator.
// An empty input shows the no-match placeholder instead of an empty body.
func (r *TableRenderer) Render(rows []sightings.Sighting, st sightings.SortState) {
	r.target.SetSortIndicator(st.Column, st.Direction)

	if len(rows) == 0 {
		r.target.SetPlaceholder(PlaceholderNoMatch)
		return
	}

	out := make([]TableRow, len(rows))
	for i := range rows {
		out[i] = ProjectRow(&rows[i])
	}
	r.target.SetRows(out)
}

// ProjectRow converts a sighting into its display form.
func ProjectRow(s *sightings.Sighting) TableRow {
	return TableRow{
		CommonName:     s.CommonName,
		ScientificName: s.ScientificName,
		Location:       s.LocationName,
		Date:           FormatObservedAt(s.ObservedAt),
		Count:          s.Count(),
		SpeciesLink:    speciesLink(s.SpeciesLink, s.SpeciesCode),
		ChecklistLink:  SafeLink(s.ChecklistLink),
	}
}

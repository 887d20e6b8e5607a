package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/dashboard"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

var columnTitles = map[sightings.Column]string{
	sightings.ColumnCommonName:     "Species",
	sightings.ColumnLocation:       "Location",
	sightings.ColumnDate:           "Date",
	sightings.ColumnCount:          "Count",
	sightings.ColumnScientificName: "Scientific Name",
}

var columnWidths = map[sightings.Column]int{
	sightings.ColumnCommonName:     26,
	sightings.ColumnLocation:       32,
	sightings.ColumnDate:           22,
	sightings.ColumnCount:          7,
	sightings.ColumnScientificName: 26,
}

// columns builds the table header in key order, marking the sorted column.
// Widths shrink the location column on narrow terminals.
func columns(p dashboard.Page, width int) []table.Column {
	cols := make([]table.Column, 0, len(sightings.Columns))
	total := 0
	for _, w := range columnWidths {
		total += w + 2
	}

	for i, c := range sightings.Columns {
		title := fmt.Sprintf("%d %s", i+1, columnTitles[c])
		switch p.SortClass(string(c)) {
		case "sort-asc":
			title += " ▲"
		case "sort-desc":
			title += " ▼"
		}

		w := columnWidths[c]
		if c == sightings.ColumnLocation && width > 0 && total > width {
			w = max(12, w-(total-width))
		}
		cols = append(cols, table.Column{Title: title, Width: w})
	}
	return cols
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.summaryView())
	b.WriteString("\n")
	b.WriteString(m.filterView())
	b.WriteString("\n")
	b.WriteString(m.mapView())
	b.WriteString("\n")

	if m.page.Placeholder != "" {
		b.WriteString(m.styles.Placeholder.Render(m.page.Placeholder))
	} else {
		b.WriteString(m.table.View())
		if links := m.linksView(); links != "" {
			b.WriteString("\n")
			b.WriteString(links)
		}
	}
	b.WriteString("\n\n")

	if m.loadErr != nil {
		b.WriteString(m.styles.Error.Render("Load failed: " + m.loadErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) headerView() string {
	title := "Rare Bird Sightings"
	if name := m.page.Header.RegionName; name != "" {
		title += " in " + name
	}
	updated := m.page.Header.LastUpdated
	if updated == "" {
		updated = "-"
	}
	if m.loading {
		updated += " (reloading)"
	}
	return m.styles.Title.Render(title) + "\n" + m.styles.Subtitle.Render("Last updated: "+updated)
}

func (m Model) summaryView() string {
	s := m.page.Summary
	card := func(value, label string) string {
		if value == "" {
			value = "-"
		}
		return m.styles.Card.Render(m.styles.CardValue.Render(value) + "\n" + m.styles.CardLabel.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card(s.Total, "Total Sightings"),
		card(s.UniqueSpecies, "Unique Species"),
		card(s.UniqueLocations, "Locations"),
		card(s.DaysCovered, "Days Covered"),
	)
}

func (m Model) filterView() string {
	species := m.selectedSpecies()
	if species == "" {
		species = "All species"
	}
	return m.styles.Label.Render("Species: ") + species + "    " + m.search.View()
}

func (m Model) mapView() string {
	n, vp := m.mapPane.snapshot()
	var line string
	if vp.Fit != nil {
		line = fmt.Sprintf("Map: %d markers, fitted to %.4f,%.4f .. %.4f,%.4f (padding %dpx)",
			n, vp.Fit.SouthWest.Lat, vp.Fit.SouthWest.Lng, vp.Fit.NorthEast.Lat, vp.Fit.NorthEast.Lng, vp.Padding)
	} else {
		line = fmt.Sprintf("Map: %d markers, centred on %.4f,%.4f at zoom %d",
			n, vp.Center.Lat, vp.Center.Lng, vp.Zoom)
	}
	return m.styles.Map.Render(line)
}

// linksView shows the links of the highlighted row.
func (m Model) linksView() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.page.Rows) {
		return ""
	}
	r := m.page.Rows[i]
	var parts []string
	if r.SpeciesLink != "" {
		parts = append(parts, "Species: "+r.SpeciesLink)
	}
	if r.ChecklistLink != "" {
		parts = append(parts, "Checklist: "+r.ChecklistLink)
	}
	return m.styles.Links.Render(strings.Join(parts, "  "))
}

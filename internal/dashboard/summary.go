package dashboard

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// SummaryRenderer formats the summary counters.
type SummaryRenderer struct {
	target  Target
	printer *message.Printer
}

// NewSummaryRenderer returns a renderer using US English number formatting.
func NewSummaryRenderer(target Target) *SummaryRenderer {
	return &SummaryRenderer{target: target, printer: message.NewPrinter(language.AmericanEnglish)}
}

// Render pushes the formatted counters to the target.
func (r *SummaryRenderer) Render(s sightings.Summary) {
	r.target.SetSummary(FormatSummary(r.printer, s))
}

// FormatSummary formats s with thousands separators. An unknown number of
// days shows as "-".
func FormatSummary(p *message.Printer, s sightings.Summary) SummaryView {
	days := "-"
	if s.DaysCovered != 0 {
		days = strconv.Itoa(s.DaysCovered)
	}
	return SummaryView{
		Total:           p.Sprintf("%d", s.Total),
		UniqueSpecies:   p.Sprintf("%d", s.UniqueSpecies),
		UniqueLocations: p.Sprintf("%d", s.UniqueLocations),
		DaysCovered:     days,
	}
}

package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

func TestFormatObservedAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"", "-"},
		{"2026-01-10 08:15", "Jan 10, 2026, 08:15 AM"},
		{"2026-01-10 18:05", "Jan 10, 2026, 06:05 PM"},
		{"2026-01-09", "Jan 9, 2026, 12:00 AM"},
		{"2026-01-09T07:30:00Z", "Jan 9, 2026, 07:30 AM"},
		{"yesterday", "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatObservedAt(tt.in))
		})
	}
}

func TestFormatLastUpdated(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	assert.Empty(t, FormatLastUpdated("", time.UTC))
	assert.Equal(t, "Jan 12, 2026, 02:05 PM UTC", FormatLastUpdated("2026-01-12T14:05:00Z", time.UTC))
	assert.Equal(t, "Jan 12, 2026, 09:05 AM EST", FormatLastUpdated("2026-01-12T14:05:00.123456Z", ny))
	assert.Equal(t, "not a date", FormatLastUpdated("not a date", time.UTC))
}

func TestSafeLink(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://ebird.org/checklist/S1", SafeLink("https://ebird.org/checklist/S1"))
	assert.Equal(t, "http://example.org/x", SafeLink("http://example.org/x"))
	assert.Equal(t, "HTTPS://ebird.org/", SafeLink("HTTPS://ebird.org/"))
	assert.Empty(t, SafeLink("javascript:alert(1)"))
	assert.Empty(t, SafeLink("data:text/html,<b>x</b>"))
	assert.Empty(t, SafeLink("/relative/path"))
	assert.Empty(t, SafeLink(""))
}

func TestProjectRowDefaults(t *testing.T) {
	t.Parallel()

	row := ProjectRow(&sightings.Sighting{CommonName: "Snowy Owl", SpeciesCode: "snoowl1"})
	assert.Equal(t, "1", row.Count)
	assert.Equal(t, "-", row.Date)
	assert.Equal(t, "https://ebird.org/species/snoowl1", row.SpeciesLink)
	assert.Empty(t, row.ChecklistLink)
}

func TestTableRendererPlaceholder(t *testing.T) {
	t.Parallel()

	page := &Page{}
	NewTableRenderer(page).Render(nil, sightings.DefaultSortState())

	assert.Equal(t, PlaceholderNoMatch, page.Placeholder)
	assert.Empty(t, page.Rows)
	assert.Equal(t, "sort-desc", page.SortClass("obsDt"))
	assert.Empty(t, page.SortClass("comName"))
}

func TestFormatSummaryThousands(t *testing.T) {
	t.Parallel()

	p := message.NewPrinter(language.AmericanEnglish)
	got := FormatSummary(p, sightings.Summary{Total: 12345, UniqueSpecies: 1200, UniqueLocations: 7, DaysCovered: 30})
	assert.Equal(t, SummaryView{Total: "12,345", UniqueSpecies: "1,200", UniqueLocations: "7", DaysCovered: "30"}, got)
}

func TestMapRendererLeavesViewportWithoutMarkers(t *testing.T) {
	t.Parallel()

	surface := NewGeoSurface(newYork)
	r := NewMapRenderer(surface, 50, nil)

	surface.AddMarker(Marker{Position: LatLng{Lat: 1, Lng: 1}})
	placed := r.Render([]sightings.Sighting{{CommonName: "King Rail"}})

	assert.Zero(t, placed)
	assert.Empty(t, surface.Markers(), "previous markers are cleared")
	assert.Equal(t, newYork, surface.Viewport())
}

func TestGeoSurfaceBounds(t *testing.T) {
	t.Parallel()

	g := NewGeoSurface(newYork)
	_, ok := g.Bounds()
	assert.False(t, ok)

	g.AddMarker(Marker{Position: LatLng{Lat: 42, Lng: -76}})
	b, ok := g.Bounds()
	require.True(t, ok)
	assert.Equal(t, Bounds{SouthWest: LatLng{42, -76}, NorthEast: LatLng{42, -76}}, b)

	g.AddMarker(Marker{Position: LatLng{Lat: 41, Lng: -73}})
	b, _ = g.Bounds()
	assert.Equal(t, Bounds{SouthWest: LatLng{41, -76}, NorthEast: LatLng{42, -73}}, b)

	g.FitBounds(b, 50)
	assert.Equal(t, LatLng{Lat: 41.5, Lng: -74.5}, g.Viewport().Center)
	assert.Equal(t, 7, g.Viewport().Zoom)
}

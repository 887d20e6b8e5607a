package dashboard

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type sourceFunc func(ctx context.Context) (*sightings.Dataset, error)

func (f sourceFunc) Load(ctx context.Context) (*sightings.Dataset, error) { return f(ctx) }

func staticSource(ds *sightings.Dataset) Source {
	return sourceFunc(func(context.Context) (*sightings.Dataset, error) { return ds, nil })
}

var newYork = Viewport{Center: LatLng{Lat: 42.9538, Lng: -75.5268}, Zoom: 7}

func ptr[T any](v T) *T { return &v }

func heronDataset() *sightings.Dataset {
	return &sightings.Dataset{
		LastUpdated: "2026-01-12T14:05:00Z",
		Region:      "US-NY",
		DaysBack:    14,
		Sightings: []sightings.Sighting{
			{
				SpeciesCode: "grbher3", CommonName: "Great Blue Heron", ScientificName: "Ardea herodias",
				LocationID: "L1", LocationName: "Jamaica Bay", Lat: ptr(40.6), Lng: ptr(-73.8),
				ObservedAt: "2026-01-10 08:15", HowMany: sightings.NewQuantity(2),
				SpeciesLink: "https://ebird.org/species/grbher3", ChecklistLink: "https://ebird.org/checklist/S1",
			},
			{
				SpeciesCode: "snoowl1", CommonName: "Snowy Owl", ScientificName: "Bubo scandiacus",
				LocationID: "L2", LocationName: "Jones Beach", Lat: ptr(40.59), Lng: ptr(-73.51),
				ObservedAt: "2026-01-11 16:40",
			},
			{
				SpeciesCode: "kinrai4", CommonName: "King Rail", ScientificName: "Rallus elegans",
				LocationID: "L3", LocationName: "Private marsh", ObservedAt: "2026-01-09",
			},
		},
	}
}

type fixture struct {
	app     *App
	page    *Page
	surface *GeoSurface
	log     *bytes.Buffer
}

func newFixture(t *testing.T, src Source, cfg Config) *fixture {
	t.Helper()
	var buf bytes.Buffer
	page := &Page{}
	surface := NewGeoSurface(newYork)
	app := New(src, page, surface, cfg, WithLogger(logger.NewSlogLogger(&buf, logger.LogLevelDebug)))
	t.Cleanup(app.Close)
	return &fixture{app: app, page: page, surface: surface, log: &buf}
}

func testConfig() Config {
	return Config{SearchDebounce: 20 * time.Millisecond, FitPadding: 50, Location: time.UTC}
}

func TestHeronScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticSource(heronDataset()), testConfig())
	require.NoError(t, f.app.Load(context.Background()))

	assert.Len(t, f.surface.Markers(), 2, "sighting without coordinates is not mapped")
	assert.Len(t, f.page.Rows, 3, "but it is listed")
	assert.Empty(t, f.page.Placeholder)

	f.app.SearchNow("heron")
	require.Len(t, f.page.Rows, 1)
	assert.Equal(t, "Great Blue Heron", f.page.Rows[0].CommonName)
	assert.Len(t, f.surface.Markers(), 1)

	assert.Equal(t, "3", f.page.Summary.Total, "summary ignores filters")
}

func TestLoadRendersHeaderSummaryAndSpecies(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticSource(heronDataset()), testConfig())
	require.NoError(t, f.app.Load(context.Background()))

	assert.Equal(t, Header{LastUpdated: "Jan 12, 2026, 02:05 PM UTC", Region: "US-NY", RegionName: "New York"}, f.page.Header)
	assert.Equal(t, SummaryView{Total: "3", UniqueSpecies: "3", UniqueLocations: "3", DaysCovered: "14"}, f.page.Summary)
	assert.Equal(t, []string{"Great Blue Heron", "King Rail", "Snowy Owl"}, f.page.SpeciesOptions)

	// default sort is newest first
	assert.Equal(t, sightings.ColumnDate, f.page.SortColumn)
	assert.Equal(t, sightings.Descending, f.page.SortDirection)
	require.Len(t, f.page.Rows, 3)
	assert.Equal(t, "Snowy Owl", f.page.Rows[0].CommonName)
	assert.Equal(t, "King Rail", f.page.Rows[2].CommonName)

	vp := f.surface.Viewport()
	require.NotNil(t, vp.Fit)
	assert.Equal(t, 50, vp.Padding)
	assert.InDelta(t, 40.59, vp.Fit.SouthWest.Lat, 1e-9)
	assert.InDelta(t, -73.8, vp.Fit.SouthWest.Lng, 1e-9)
	assert.InDelta(t, 40.6, vp.Fit.NorthEast.Lat, 1e-9)
	assert.InDelta(t, -73.51, vp.Fit.NorthEast.Lng, 1e-9)

	assert.Contains(t, f.log.String(), "Sightings loaded")
}

func TestEmptyDatasetScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticSource(&sightings.Dataset{Region: "US-NY"}), testConfig())
	require.NoError(t, f.app.Load(context.Background()))

	assert.Equal(t, SummaryView{Total: "0", UniqueSpecies: "0", UniqueLocations: "0", DaysCovered: "-"}, f.page.Summary)
	assert.Equal(t, PlaceholderNoMatch, f.page.Placeholder)
	assert.Empty(t, f.page.Rows)
	assert.Empty(t, f.surface.Markers())
	assert.Equal(t, newYork, f.surface.Viewport(), "viewport keeps its default")
}

func TestLoadFailureScenario(t *testing.T) {
	t.Parallel()

	loadErr := errors.Newf("open data/sightings.json: no such file or directory").
		Category(errors.CategoryFileIO).
		Component("loader").
		Build()

	var f *fixture
	var sawLoading atomic.Bool
	f = newFixture(t, sourceFunc(func(context.Context) (*sightings.Dataset, error) {
		sawLoading.Store(f.page.Placeholder == PlaceholderLoading)
		return nil, loadErr
	}), testConfig())

	var err error
	require.NotPanics(t, func() { err = f.app.Load(context.Background()) })
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))

	assert.True(t, sawLoading.Load(), "loading placeholder shown while fetching")
	assert.Equal(t, PlaceholderNoData, f.page.Placeholder)
	assert.Empty(t, f.page.Rows)
	assert.Empty(t, f.surface.Markers())
	assert.Equal(t, newYork, f.surface.Viewport())
	assert.Contains(t, f.log.String(), "Failed to load sightings")

	// events after a failed load leave the placeholder alone
	f.app.SelectSpecies("Snowy Owl")
	f.app.SortBy(sightings.ColumnCount)
	assert.Equal(t, PlaceholderNoData, f.page.Placeholder)
	assert.False(t, f.app.Snapshot().Loaded)
}

func TestLoadFailureAfterSuccessClearsPage(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	f := newFixture(t, sourceFunc(func(context.Context) (*sightings.Dataset, error) {
		if fail.Load() {
			return nil, errors.NewStd("sightings document unavailable")
		}
		return heronDataset(), nil
	}), testConfig())

	require.NoError(t, f.app.Load(context.Background()))
	require.Equal(t, "New York", f.page.Header.RegionName)
	require.Len(t, f.page.SpeciesOptions, 3)

	fail.Store(true)
	require.Error(t, f.app.Load(context.Background()))

	assert.Equal(t, PlaceholderNoData, f.page.Placeholder)
	assert.Equal(t, Header{}, f.page.Header, "stale header cleared")
	assert.Equal(t, SummaryView{Total: "0", UniqueSpecies: "0", UniqueLocations: "0", DaysCovered: "-"}, f.page.Summary)
	assert.Empty(t, f.page.SpeciesOptions)
	assert.Empty(t, f.page.Rows)
	assert.Empty(t, f.surface.Markers())

	st := f.app.Snapshot()
	assert.False(t, st.Loaded)
	assert.Empty(t, st.Species)
	assert.Zero(t, st.Summary)
}

func TestSelectSpeciesAndReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticSource(heronDataset()), testConfig())
	require.NoError(t, f.app.Load(context.Background()))

	f.app.SelectSpecies("King Rail")
	require.Len(t, f.page.Rows, 1)
	assert.Empty(t, f.surface.Markers())

	f.app.SearchNow("owl")
	assert.Equal(t, PlaceholderNoMatch, f.page.Placeholder, "criteria are AND-ed")

	f.app.Reset()
	assert.Len(t, f.page.Rows, 3)
	assert.Len(t, f.surface.Markers(), 2)
	assert.True(t, f.app.Snapshot().Criteria.IsZero())
}

func TestSortByTogglesAndOnlyTouchesTable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticSource(heronDataset()), testConfig())
	require.NoError(t, f.app.Load(context.Background()))

	vp := f.surface.Viewport()

	f.app.SortBy(sightings.ColumnCommonName)
	assert.Equal(t, sightings.Ascending, f.page.SortDirection, "new column starts ascending")
	assert.Equal(t, "Great Blue Heron", f.page.Rows[0].CommonName)

	f.app.SortBy(sightings.ColumnCommonName)
	assert.Equal(t, sightings.Descending, f.page.SortDirection)
	assert.Equal(t, "Snowy Owl", f.page.Rows[0].CommonName)

	f.app.SortBy(sightings.ColumnCount)
	assert.Equal(t, sightings.ColumnCount, f.page.SortColumn)
	assert.Equal(t, "Great Blue Heron", f.page.Rows[2].CommonName, "count 2 sorts after the default 1")

	assert.Equal(t, vp, f.surface.Viewport())
}

func TestDebouncedSearchCollapses(t *testing.T) {
	t.Parallel()

	var filters atomic.Int32
	page := &countingTarget{Page: &Page{}, rows: &filters}
	surface := NewGeoSurface(newYork)
	app := New(staticSource(heronDataset()), page, surface, testConfig(), WithLogger(logger.NewDiscard()))
	t.Cleanup(app.Close)
	require.NoError(t, app.Load(context.Background()))
	filters.Store(0)

	for _, text := range []string{"h", "he", "her", "hero", "heron"} {
		app.Search(text)
	}

	assert.Eventually(t, func() bool { return app.Snapshot().Criteria.Search == "heron" }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), filters.Load(), "one table render for the whole burst")
	assert.Len(t, app.Snapshot().Rows, 1)
}

func TestFlushSearch(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SearchDebounce = time.Hour
	f := newFixture(t, staticSource(heronDataset()), cfg)
	require.NoError(t, f.app.Load(context.Background()))

	f.app.Search("owl")
	assert.Len(t, f.page.Rows, 3, "not applied yet")
	assert.True(t, f.app.FlushSearch())
	assert.Len(t, f.page.Rows, 1)

	f.app.Search("rail")
	f.app.Reset()
	assert.False(t, f.app.FlushSearch(), "reset drops the pending search")
	assert.Len(t, f.page.Rows, 3)
}

func TestSnapshotIsSorted(t *testing.T) {
	t.Parallel()

	f := newFixture(t, staticSource(heronDataset()), testConfig())
	require.NoError(t, f.app.Load(context.Background()))
	f.app.SetSort(sightings.SortState{Column: sightings.ColumnLocation, Direction: sightings.Ascending})

	snap := f.app.Snapshot()
	require.Len(t, snap.Rows, 3)
	assert.Equal(t, "Jamaica Bay", snap.Rows[0].LocationName)
	assert.Equal(t, 2, snap.Markers)
	assert.True(t, snap.Loaded)
}

// countingTarget counts SetRows calls.
type countingTarget struct {
	*Page
	rows *atomic.Int32
}

func (c *countingTarget) SetRows(rows []TableRow) {
	c.rows.Add(1)
	c.Page.SetRows(rows)
}

func TestPopupEscapesMarkup(t *testing.T) {
	t.Parallel()

	row := ProjectRow(&sightings.Sighting{
		CommonName:    `<script>alert("x")</script>`,
		LocationName:  `Bay & "Marsh"`,
		SpeciesLink:   "javascript:alert(1)",
		SpeciesCode:   "grbher3",
		ChecklistLink: "https://ebird.org/checklist/S1",
	})

	html, err := RenderPopup(&row)
	require.NoError(t, err)
	out := string(html)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Bay &amp; &#34;Marsh&#34;")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, `href="https://ebird.org/species/grbher3"`)
	assert.Contains(t, out, "Checklist")
}

func TestPopupOmitsMissingChecklist(t *testing.T) {
	t.Parallel()

	row := ProjectRow(&sightings.Sighting{CommonName: "Snowy Owl", SpeciesLink: "https://ebird.org/species/snoowl1"})
	html, err := RenderPopup(&row)
	require.NoError(t, err)

	assert.NotContains(t, string(html), "Checklist")
	assert.True(t, strings.Contains(string(html), "Species Info"))
	assert.Contains(t, string(html), "<strong>Count:</strong> 1")
}

func TestSetCriteriaAppliesBothAndDropsPendingSearch(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SearchDebounce = time.Hour
	f := newFixture(t, staticSource(heronDataset()), cfg)
	require.NoError(t, f.app.Load(context.Background()))

	f.app.Search("rail")
	f.app.SetCriteria(sightings.Criteria{Species: "Snowy Owl", Search: "jones"})

	require.Len(t, f.page.Rows, 1)
	assert.Equal(t, "Snowy Owl", f.page.Rows[0].CommonName)
	assert.Len(t, f.surface.Markers(), 1)
	assert.False(t, f.app.FlushSearch())
}

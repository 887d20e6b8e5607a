package httpcontroller

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/dashboard"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

func TestParseQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   url.Values
		want Query
	}{
		{"empty", nil, Query{Sort: sightings.DefaultSortState()}},
		{"filters", url.Values{"species": {"Snowy Owl"}, "q": {"bay"}},
			Query{Species: "Snowy Owl", Search: "bay", Sort: sightings.DefaultSortState()}},
		{"filters kept as sent", url.Values{"species": {" Snowy Owl "}, "q": {"bay "}},
			Query{Species: " Snowy Owl ", Search: "bay ", Sort: sightings.DefaultSortState()}},
		{"blank filters dropped", url.Values{"species": {"  "}, "q": {"\t"}},
			Query{Sort: sightings.DefaultSortState()}},
		{"sort defaults to ascending", url.Values{"sort": {"howMany"}},
			Query{Sort: sightings.SortState{Column: sightings.ColumnCount, Direction: sightings.Ascending}}},
		{"explicit direction", url.Values{"sort": {"locName"}, "dir": {"DESC"}},
			Query{Sort: sightings.SortState{Column: sightings.ColumnLocation, Direction: sightings.Descending}}},
		{"bad values ignored", url.Values{"sort": {"lat"}, "dir": {"sideways"}},
			Query{Sort: sightings.DefaultSortState()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseQuery(tt.in))
		})
	}
}

func TestQueryHrefRoundTrip(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/", Query{Sort: sightings.DefaultSortState()}.Href())

	q := Query{Species: "Snowy Owl", Search: "beach", Sort: sightings.SortState{Column: sightings.ColumnCommonName, Direction: sightings.Descending}}
	u, err := url.Parse(q.Href())
	assert.NoError(t, err)
	assert.Equal(t, q, ParseQuery(u.Query()))
}

func TestColumnHeadsToggleSort(t *testing.T) {
	t.Parallel()

	page := &dashboard.Page{}
	page.SetSortIndicator(sightings.ColumnDate, sightings.Descending)
	heads := columnHeads(page, Query{Species: "Snowy Owl", Sort: sightings.DefaultSortState()})

	byKey := map[sightings.Column]ColumnHead{}
	for _, h := range heads {
		byKey[h.Key] = h
	}

	assert.Equal(t, "sort-desc", byKey[sightings.ColumnDate].Class)
	assert.Equal(t, "/?dir=asc&sort=obsDt&species=Snowy+Owl", byKey[sightings.ColumnDate].Href)
	assert.Empty(t, byKey[sightings.ColumnCommonName].Class)
	assert.Equal(t, "/?dir=asc&sort=comName&species=Snowy+Owl", byKey[sightings.ColumnCommonName].Href)
}

func TestColumnLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Date", columnLabel(sightings.ColumnDate))
	assert.Equal(t, "Scientific Name", columnLabel(sightings.ColumnScientificName))
}

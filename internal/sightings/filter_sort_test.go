package sightings

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	commonNames = []string{"Great Blue Heron", "Snowy Owl", "King Rail", "snowy egret", "Little Blue Heron"}
	sciNames    = []string{"Ardea herodias", "Bubo scandiacus", "Rallus elegans", "Egretta thula", "Egretta caerulea"}
	locNames    = []string{"Jamaica Bay", "Jones Beach", "Montezuma NWR", "Central Park", "Heron Pond"}
)

// randomSightings builds n sightings; counts and dates are unique so that no
// two records tie on those columns.
func randomSightings(r *rand.Rand, n int) []Sighting {
	out := make([]Sighting, n)
	for i := range out {
		sp := r.IntN(len(commonNames))
		s := Sighting{
			SpeciesCode:    fmt.Sprintf("sp%d", sp),
			CommonName:     commonNames[sp],
			ScientificName: sciNames[sp],
			LocationID:     fmt.Sprintf("L%d", r.IntN(4)),
			LocationName:   locNames[r.IntN(len(locNames))],
			ObservedAt:     fmt.Sprintf("2026-01-%02d %02d:%02d", 1+i%28, i%24, i),
			HowMany:        NewQuantity(i + 2),
		}
		if r.IntN(3) > 0 {
			s.Lat, s.Lng = ptr(40+r.Float64()), ptr(-75+r.Float64())
		}
		out[i] = s
	}
	return out
}

func TestFilterProperties(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	criteria := []Criteria{
		{},
		{Species: "Snowy Owl"},
		{Search: "heron"},
		{Search: "EGRETTA"},
		{Species: "Great Blue Heron", Search: "bay"},
		{Species: "Nonexistent"},
		{Search: "zzz"},
	}

	for round := range 20 {
		all := randomSightings(r, 30+round)
		original := slices.Clone(all)

		for _, c := range criteria {
			got := Filter(all, c)

			for i := range got {
				assert.True(t, c.Matches(&got[i]))
				assert.Contains(t, all, got[i], "filtered sighting must come from the dataset")
			}

			want := 0
			for i := range all {
				if c.Matches(&all[i]) {
					want++
				}
			}
			assert.Len(t, got, want)

			assert.Equal(t, got, Filter(got, c), "filter is idempotent")
		}

		assert.Equal(t, all, Filter(all, Criteria{}), "empty criteria keeps everything")
		assert.Equal(t, original, all, "input is not modified")
	}
}

func TestCriteriaMatches(t *testing.T) {
	t.Parallel()

	s := &Sighting{CommonName: "Great Blue Heron", ScientificName: "Ardea herodias", LocationName: "Jamaica Bay"}

	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"empty", Criteria{}, true},
		{"species exact", Criteria{Species: "Great Blue Heron"}, true},
		{"species is case sensitive", Criteria{Species: "great blue heron"}, false},
		{"species is not substring", Criteria{Species: "Heron"}, false},
		{"search common", Criteria{Search: "blue"}, true},
		{"search scientific", Criteria{Search: "HERODIAS"}, true},
		{"search location", Criteria{Search: "jamaica"}, true},
		{"search spans fields", Criteria{Search: "heron ardea"}, true},
		{"search miss", Criteria{Search: "owl"}, false},
		{"both", Criteria{Species: "Great Blue Heron", Search: "bay"}, true},
		{"both one fails", Criteria{Species: "Great Blue Heron", Search: "owl"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.c.Matches(s))
		})
	}
}

func TestSortReverseSymmetry(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(3, 4))
	all := randomSightings(r, 25)

	for _, col := range []Column{ColumnDate, ColumnCount} {
		asc := Sort(all, SortState{Column: col, Direction: Ascending})
		desc := Sort(all, SortState{Column: col, Direction: Descending})
		slices.Reverse(desc)
		assert.Equal(t, asc, desc, "column %s", col)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(5, 6))
	all := randomSightings(r, 10)
	original := slices.Clone(all)

	for _, col := range Columns {
		_ = Sort(all, SortState{Column: col, Direction: Descending})
	}
	assert.Equal(t, original, all)
}

func TestSortComparisonPolicy(t *testing.T) {
	t.Parallel()

	rows := []Sighting{
		{CommonName: "snowy Owl", ObservedAt: "2026-01-09 10:00", HowMany: NewQuantity(10)},
		{CommonName: "Great Blue Heron", ObservedAt: "2026-01-10 08:00"},
		{CommonName: "", ObservedAt: "", HowMany: NewQuantity(2)},
		{CommonName: "King Rail", ObservedAt: "2026-01-09 09:00", HowMany: NewQuantity(1)},
	}

	names := func(in []Sighting) []string {
		out := make([]string, len(in))
		for i := range in {
			out[i] = in[i].CommonName
		}
		return out
	}

	byName := Sort(rows, SortState{Column: ColumnCommonName, Direction: Ascending})
	assert.Equal(t, []string{"", "Great Blue Heron", "King Rail", "snowy Owl"}, names(byName))

	byCount := Sort(rows, SortState{Column: ColumnCount, Direction: Ascending})
	assert.Equal(t, []string{"Great Blue Heron", "King Rail", "", "snowy Owl"}, names(byCount),
		"count compares numerically, absent as 0, so 10 sorts after 2")

	byDate := Sort(rows, SortState{Column: ColumnDate, Direction: Descending})
	assert.Equal(t, []string{"Great Blue Heron", "snowy Owl", "King Rail", ""}, names(byDate))

	unknown := Sort(rows, SortState{Column: "bogus", Direction: Descending})
	assert.Equal(t, names(rows), names(unknown))
}

func TestSortEmpty(t *testing.T) {
	t.Parallel()

	out := Sort(nil, DefaultSortState())
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSortStateToggle(t *testing.T) {
	t.Parallel()

	st := DefaultSortState()
	assert.Equal(t, SortState{Column: ColumnDate, Direction: Descending}, st)

	st = st.Toggle(ColumnCommonName)
	assert.Equal(t, SortState{Column: ColumnCommonName, Direction: Ascending}, st, "new column starts ascending")

	st = st.Toggle(ColumnCommonName)
	assert.Equal(t, Descending, st.Direction)

	st = st.Toggle(ColumnCount)
	assert.Equal(t, SortState{Column: ColumnCount, Direction: Ascending}, st)

	desc := SortState{Column: ColumnDate, Direction: Descending}
	assert.Equal(t, ColumnDate, desc.Toggle(ColumnDate).Column)
	assert.Equal(t, Ascending, desc.Toggle(ColumnDate).Direction, "same column flips")
}

func TestToggleTwiceRestoresOrder(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(7, 8))
	all := randomSightings(r, 15)

	for _, col := range []Column{ColumnDate, ColumnCount} {
		start := SortState{Column: col, Direction: Ascending}
		before := Sort(all, start)
		after := Sort(all, start.Toggle(col).Toggle(col))
		assert.Equal(t, before, after)
	}
}

func TestParseColumnAndDirection(t *testing.T) {
	t.Parallel()

	for _, col := range Columns {
		got, ok := ParseColumn(string(col))
		assert.True(t, ok)
		assert.Equal(t, col, got)
	}
	_, ok := ParseColumn("speciesCode")
	assert.False(t, ok)

	d, ok := ParseDirection("DESC")
	assert.True(t, ok)
	assert.Equal(t, Descending, d)
	_, ok = ParseDirection("sideways")
	assert.False(t, ok)
}

package sightings

import (
	"cmp"
	"slices"
	"strings"
)

// Column identifies a sortable table column. Values match the document keys.
type Column string

const (
	ColumnCommonName     Column = "comName"
	ColumnScientificName Column = "sciName"
	ColumnLocation       Column = "locName"
	ColumnDate           Column = "obsDt"
	ColumnCount          Column = "howMany"
)

// Columns lists the sortable columns: the four table headers, then the
// scientific name shown beneath the common name.
var Columns = []Column{ColumnCommonName, ColumnLocation, ColumnDate, ColumnCount, ColumnScientificName}

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the active sort column and direction.
type SortState struct {
	Column    Column
	Direction Direction
}

// DefaultSortState shows the most recent sightings first.
func DefaultSortState() SortState {
	return SortState{Column: ColumnDate, Direction: Descending}
}

// Toggle returns the state after a header click on col: the same column flips
// direction, a different column starts ascending.
func (st SortState) Toggle(col Column) SortState {
	if st.Column == col {
		if st.Direction == Ascending {
			return SortState{Column: col, Direction: Descending}
		}
		return SortState{Column: col, Direction: Ascending}
	}
	return SortState{Column: col, Direction: Ascending}
}

// ParseColumn maps a document key to a Column.
func ParseColumn(s string) (Column, bool) {
	col := Column(s)
	if slices.Contains(Columns, col) {
		return col, true
	}
	return "", false
}

// ParseDirection accepts "asc" or "desc".
func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(s)) {
	case Ascending:
		return Ascending, true
	case Descending:
		return Descending, true
	default:
		return "", false
	}
}

// Sort returns a sorted copy of in. The count column compares numerically,
// every other column compares lower-cased strings, dates included, so dates
// order lexically. Unknown columns leave the order unchanged. The sort is
// stable.
func Sort(in []Sighting, st SortState) []Sighting {
	out := slices.Clone(in)
	if out == nil {
		out = []Sighting{}
	}

	compare := comparator(st.Column)
	if compare == nil {
		return out
	}

	if st.Direction == Descending {
		slices.SortStableFunc(out, func(a, b Sighting) int { return compare(&b, &a) })
	} else {
		slices.SortStableFunc(out, func(a, b Sighting) int { return compare(&a, &b) })
	}
	return out
}

func comparator(col Column) func(a, b *Sighting) int {
	if col == ColumnCount {
		return func(a, b *Sighting) int { return cmp.Compare(a.SortCount(), b.SortCount()) }
	}

	key := stringKey(col)
	if key == nil {
		return nil
	}
	return func(a, b *Sighting) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

func stringKey(col Column) func(s *Sighting) string {
	switch col {
	case ColumnCommonName:
		return func(s *Sighting) string { return s.CommonName }
	case ColumnScientificName:
		return func(s *Sighting) string { return s.ScientificName }
	case ColumnLocation:
		return func(s *Sighting) string { return s.LocationName }
	case ColumnDate:
		return func(s *Sighting) string { return s.ObservedAt }
	default:
		return nil
	}
}

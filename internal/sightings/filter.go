package sightings

import "strings"

// Criteria narrows the displayed sightings. Empty fields impose no constraint
// and the two conditions are AND-ed.
type Criteria struct {
	Species string // exact common name
	Search  string // case-insensitive substring of common, scientific and location names
}

// IsZero reports whether c matches everything.
func (c Criteria) IsZero() bool {
	return c.Species == "" && c.Search == ""
}

// Matches reports whether s satisfies c.
func (c Criteria) Matches(s *Sighting) bool {
	if c.Species != "" && s.CommonName != c.Species {
		return false
	}
	if c.Search == "" {
		return true
	}
	text := strings.ToLower(s.CommonName + " " + s.ScientificName + " " + s.LocationName)
	return strings.Contains(text, strings.ToLower(c.Search))
}

// Filter returns a new slice holding the sightings of all that match c, in
// their original order. all is never modified.
func Filter(all []Sighting, c Criteria) []Sighting {
	out := make([]Sighting, 0, len(all))
	for i := range all {
		if c.Matches(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out
}

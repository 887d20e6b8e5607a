package sightings

import "slices"

// Summary holds the aggregate counters shown above the map. It is computed
// once from the full dataset and is not affected by filtering.
type Summary struct {
	Total           int
	UniqueSpecies   int // distinct species codes
	UniqueLocations int // distinct location ids
	DaysCovered     int // passed through from the document, 0 when unknown
}

// Summarize computes the summary counters of ds.
func Summarize(ds *Dataset) Summary {
	if ds == nil {
		return Summary{}
	}

	species := make(map[string]struct{}, len(ds.Sightings))
	locations := make(map[string]struct{}, len(ds.Sightings))
	for i := range ds.Sightings {
		species[ds.Sightings[i].SpeciesCode] = struct{}{}
		locations[ds.Sightings[i].LocationID] = struct{}{}
	}

	return Summary{
		Total:           len(ds.Sightings),
		UniqueSpecies:   len(species),
		UniqueLocations: len(locations),
		DaysCovered:     ds.DaysBack,
	}
}

// SpeciesNames returns the sorted distinct common names in all.
func SpeciesNames(all []Sighting) []string {
	seen := make(map[string]struct{}, len(all))
	names := make([]string, 0, len(all))
	for i := range all {
		name := all[i].CommonName
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

package sightings

import "sync"

// Store holds the loaded dataset and the subset matching the current criteria.
// The filtered subset is always recomputed from the full dataset.
type Store struct {
	mu       sync.RWMutex
	dataset  *Dataset
	criteria Criteria
	filtered []Sighting
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{dataset: &Dataset{Sightings: []Sighting{}}, filtered: []Sighting{}}
}

// Replace installs ds and resets the criteria so that every sighting is shown.
func (st *Store) Replace(ds *Dataset) {
	if ds == nil {
		ds = &Dataset{}
	}
	if ds.Sightings == nil {
		ds.Sightings = []Sighting{}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.dataset = ds
	st.criteria = Criteria{}
	st.filtered = Filter(ds.Sightings, st.criteria)
}

// Apply recomputes the filtered subset for c and returns it.
func (st *Store) Apply(c Criteria) []Sighting {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.criteria = c
	st.filtered = Filter(st.dataset.Sightings, c)
	return st.filtered
}

// Dataset returns the loaded dataset.
func (st *Store) Dataset() *Dataset {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.dataset
}

// All returns every loaded sighting.
func (st *Store) All() []Sighting {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.dataset.Sightings
}

// Filtered returns the subset matching the current criteria.
func (st *Store) Filtered() []Sighting {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.filtered
}

// Criteria returns the criteria the filtered subset was computed with.
func (st *Store) Criteria() Criteria {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.criteria
}

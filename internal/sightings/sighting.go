// Package sightings holds the rare bird observation model together with the
// pure filter, sort and summary operations the dashboard is built from.
package sightings

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
)

// Sighting is one observation record. Values are never modified after load.
type Sighting struct {
	SpeciesCode     string   `json:"speciesCode"`
	CommonName      string   `json:"comName"`
	ScientificName  string   `json:"sciName"`
	LocationID      string   `json:"locId"`
	LocationName    string   `json:"locName"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	ObservedAt      string   `json:"obsDt"`
	HowMany         Quantity `json:"howMany,omitzero"`
	Valid           *bool    `json:"obsValid,omitempty"`
	Reviewed        *bool    `json:"obsReviewed,omitempty"`
	LocationPrivate *bool    `json:"locationPrivate,omitempty"`
	SubmissionID    string   `json:"subId,omitempty"`
	SpeciesLink     string   `json:"speciesLink,omitempty"`
	ChecklistLink   string   `json:"checklistLink,omitempty"`
}

// HasCoordinates reports whether the sighting can be placed on a map.
// A zero latitude or longitude counts as missing.
func (s *Sighting) HasCoordinates() bool {
	return s.Lat != nil && s.Lng != nil && *s.Lat != 0 && *s.Lng != 0
}

// Count returns the count shown to users.
func (s *Sighting) Count() string {
	return s.HowMany.Display()
}

// SortCount returns the numeric value used when ordering by count.
func (s *Sighting) SortCount() float64 {
	return s.HowMany.SortValue()
}

// Quantity is the observed count as it appears in the document. eBird uses
// "X" for species recorded as present but not counted, so both numbers and
// strings are accepted.
type Quantity struct {
	num     float64
	raw     string
	present bool
	numeric bool
	quoted  bool // written as a JSON string
}

// NewQuantity returns a numeric quantity.
func NewQuantity(n int) Quantity {
	return Quantity{num: float64(n), raw: strconv.Itoa(n), present: true, numeric: true}
}

// IsZero reports whether no count was recorded.
func (q Quantity) IsZero() bool { return !q.present }

// Value returns the count truncated to an int and whether one is available.
func (q Quantity) Value() (int, bool) {
	return int(q.num), q.present && q.numeric
}

// Display renders the count. Absent counts and a bare numeric 0 show as 1;
// strings and fractional numbers show as written.
func (q Quantity) Display() string {
	switch {
	case !q.present:
		return "1"
	case q.quoted || !q.numeric:
		return q.raw
	case q.num == 0:
		return "1"
	case q.num == math.Trunc(q.num):
		return strconv.FormatFloat(q.num, 'f', -1, 64)
	default:
		return q.raw
	}
}

// SortValue is the number when numeric and 0 otherwise, absent included.
func (q Quantity) SortValue() float64 {
	if q.present && q.numeric {
		return q.num
	}
	return 0
}

// UnmarshalJSON accepts a number, a numeric string, any other string or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = Quantity{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*q = Quantity{}
			return nil
		}
		*q = Quantity{raw: s, present: true, quoted: true}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			q.num = f
			q.numeric = true
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*q = Quantity{num: f, raw: string(data), present: true, numeric: true}
	return nil
}

// MarshalJSON writes the count back in the form it was read.
func (q Quantity) MarshalJSON() ([]byte, error) {
	switch {
	case !q.present:
		return []byte("null"), nil
	case q.quoted || !q.numeric:
		return json.Marshal(q.raw)
	default:
		return []byte(strconv.FormatFloat(q.num, 'f', -1, 64)), nil
	}
}

// Dataset is a loaded sightings document.
type Dataset struct {
	LastUpdated    string     `json:"lastUpdated"`
	Region         string     `json:"region"`
	TotalSightings int        `json:"totalSightings"`
	DaysBack       int        `json:"daysBack"`
	Sightings      []Sighting `json:"sightings"`
}

// Decode parses a sightings document. A document without a sightings list
// decodes to an empty dataset.
func Decode(r io.Reader) (*Dataset, error) {
	var ds *Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, errors.Newf("malformed sightings document: %w", err).
			Category(errors.CategoryFileParsing).
			Component("sightings").
			Build()
	}
	if ds == nil {
		return nil, errors.Newf("sightings document is null").
			Category(errors.CategoryFileParsing).
			Component("sightings").
			Build()
	}
	if ds.Sightings == nil {
		ds.Sightings = []Sighting{}
	}
	return ds, nil
}

// Encode writes ds as indented JSON.
func Encode(w io.Writer, ds *Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ds); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileParsing).
			Component("sightings").
			Context("operation", "encode_dataset").
			Build()
	}
	return nil
}

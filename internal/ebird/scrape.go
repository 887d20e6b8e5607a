package ebird

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

const (
	unknownSpecies  = "Unknown"
	unknownLocation = "Unknown Location"

	checklistURL = "https://ebird.org/checklist/"
	speciesURL   = "https://ebird.org/species/"
)

// Process maps raw observations to sightings, filling display defaults and
// the eBird links.
func Process(raw []Observation) []sightings.Sighting {
	out := make([]sightings.Sighting, 0, len(raw))
	for i := range raw {
		o := &raw[i]

		s := sightings.Sighting{
			SpeciesCode:     o.SpeciesCode,
			CommonName:      valueOr(o.CommonName, unknownSpecies),
			ScientificName:  o.ScientificName,
			LocationID:      o.LocationID,
			LocationName:    valueOr(o.LocationName, unknownLocation),
			Lat:             o.Lat,
			Lng:             o.Lng,
			ObservedAt:      o.ObservedAt,
			HowMany:         o.HowMany,
			Valid:           boolOr(o.Valid, true),
			Reviewed:        boolOr(o.Reviewed, false),
			LocationPrivate: boolOr(o.LocationPrivate, false),
			SubmissionID:    o.SubmissionID,
		}
		if s.HowMany.IsZero() {
			s.HowMany = sightings.NewQuantity(1)
		}
		if o.SubmissionID != "" {
			s.ChecklistLink = checklistURL + o.SubmissionID
		}
		if o.SpeciesCode != "" {
			s.SpeciesLink = speciesURL + o.SpeciesCode
		}
		out = append(out, s)
	}
	return out
}

// Deduplicate keeps the first sighting of each species at each location per
// calendar day. Order is preserved.
func Deduplicate(in []sightings.Sighting) []sightings.Sighting {
	type key struct {
		species, location, day string
	}

	seen := make(map[key]struct{}, len(in))
	out := make([]sightings.Sighting, 0, len(in))
	for i := range in {
		day := in[i].ObservedAt
		if len(day) > 10 {
			day = day[:10]
		}
		k := key{in[i].SpeciesCode, in[i].LocationID, day}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, in[i])
	}
	return out
}

// NewDataset wraps sightings in a document stamped with now in UTC.
func NewDataset(region string, daysBack int, s []sightings.Sighting, now time.Time) *sightings.Dataset {
	if s == nil {
		s = []sightings.Sighting{}
	}
	return &sightings.Dataset{
		LastUpdated:    now.UTC().Format(time.RFC3339),
		Region:         region,
		TotalSightings: len(s),
		DaysBack:       daysBack,
		Sightings:      s,
	}
}

// Save writes ds to path atomically: the document is written to a temporary
// file in the same directory and renamed over path.
func Save(path string, ds *sightings.Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.FileError(err, dir, 0)
	}

	tmp, err := os.CreateTemp(dir, ".sightings-*.json")
	if err != nil {
		return errors.FileError(err, dir, 0)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := sightings.Encode(tmp, ds); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.FileError(err, tmpName, 0)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.FileError(err, tmpName, 0)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return errors.FileError(err, tmpName, 0)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.FileError(err, path, 0)
	}
	return nil
}

// Fetcher is the part of Client the scraper needs.
type Fetcher interface {
	RecentNotable(ctx context.Context, region string, daysBack int) ([]Observation, error)
}

// Result summarises a scrape run.
type Result struct {
	Dataset  *sightings.Dataset
	Raw      int // observations returned by the API
	FetchErr error
}

// Scraper fetches, cleans and saves one region.
type Scraper struct {
	Fetcher  Fetcher
	Region   string
	DaysBack int
	Path     string
	Now      func() time.Time
	Log      logger.Logger
}

// Run fetches notable observations and writes the document. A failed fetch
// still writes an empty document so the dashboard shows an empty region
// instead of stale data; the fetch error is reported in Result. Only a
// failed write is returned as an error.
func (s *Scraper) Run(ctx context.Context) (*Result, error) {
	log := s.Log
	if log == nil {
		log = logger.Global().Module("scrape")
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	log.Info("Fetching notable sightings",
		logger.String("region", s.Region),
		logger.Int("days_back", s.DaysBack))

	res := &Result{}
	raw, err := s.Fetcher.RecentNotable(ctx, s.Region, s.DaysBack)
	if err != nil {
		res.FetchErr = err
		log.Error("Fetching notable sightings failed, writing empty document", logger.Error(err))
	}
	res.Raw = len(raw)

	var clean []sightings.Sighting
	if len(raw) > 0 {
		processed := Process(raw)
		clean = Deduplicate(processed)
		log.Info("Processed observations",
			logger.Int("raw", len(raw)),
			logger.Int("unique", len(clean)))
	} else if err == nil {
		log.Warn("No notable sightings found")
	}

	res.Dataset = NewDataset(s.Region, s.DaysBack, clean, now())
	if err := Save(s.Path, res.Dataset); err != nil {
		return res, err
	}

	log.Info("Saved sightings document",
		logger.String("path", s.Path),
		logger.Int("sightings", res.Dataset.TotalSightings))
	return res, nil
}

func valueOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) *bool {
	if p != nil {
		return p
	}
	return &def
}

// Package ebird fetches notable observations from the eBird API v2 and turns
// them into sightings documents.
package ebird

import (
	"time"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// Observation is one record of the notable observations endpoint with
// detail=full. Optional fields are pointers so absent values can be defaulted.
type Observation struct {
	SpeciesCode     string             `json:"speciesCode"`
	CommonName      *string            `json:"comName"`
	ScientificName  string             `json:"sciName"`
	LocationID      string             `json:"locId"`
	LocationName    *string            `json:"locName"`
	ObservedAt      string             `json:"obsDt"`
	HowMany         sightings.Quantity `json:"howMany"`
	Lat             *float64           `json:"lat"`
	Lng             *float64           `json:"lng"`
	Valid           *bool              `json:"obsValid"`
	Reviewed        *bool              `json:"obsReviewed"`
	LocationPrivate *bool              `json:"locationPrivate"`
	SubmissionID    string             `json:"subId"`
}

// Config holds configuration for the eBird client
type Config struct {
	APIKey       string        `json:"api_key"`
	BaseURL      string        `json:"base_url"`
	Timeout      time.Duration `json:"timeout"`
	CacheTTL     time.Duration `json:"cache_ttl"`
	RateLimit    float64       `json:"rate_limit"` // requests per second
	MaxRetries   int           `json:"max_retries"`
	RetryBackoff time.Duration `json:"retry_backoff"` // grows linearly per attempt
}

// Error represents an eBird API error response
type Error struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://api.ebird.org/v2",
		Timeout:      30 * time.Second,
		CacheTTL:     time.Hour,
		RateLimit:    1,
		MaxRetries:   3,
		RetryBackoff: 500 * time.Millisecond,
	}
}

package dashboard

import (
	"net/url"
	"strings"
	"time"
)

// Display layouts
const (
	DateLayout        = "Jan 2, 2006, 03:04 PM"
	LastUpdatedLayout = "Jan 2, 2006, 03:04 PM MST"
)

// observationLayouts are the obsDt formats eBird produces, most specific first.
var observationLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// FormatObservedAt renders an observation timestamp. Empty values render as
// "-" and values that cannot be parsed are shown unchanged.
func FormatObservedAt(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "-"
	}
	for _, layout := range observationLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(DateLayout)
		}
	}
	return raw
}

// FormatLastUpdated renders the document timestamp in loc. Empty values stay
// empty and values that cannot be parsed are shown unchanged.
func FormatLastUpdated(raw string, loc *time.Location) string {
	if raw == "" {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return t.In(loc).Format(LastUpdatedLayout)
}

// SafeLink returns link when it is an absolute http or https URL and "" otherwise.
func SafeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return link
	default:
		return ""
	}
}

// speciesLink falls back to the eBird species page when the record has no
// usable link of its own.
func speciesLink(link, code string) string {
	if safe := SafeLink(link); safe != "" {
		return safe
	}
	if code == "" {
		return ""
	}
	return "https://ebird.org/species/" + url.PathEscape(code)
}

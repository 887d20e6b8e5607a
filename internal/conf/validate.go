// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Limits accepted by the eBird recent observations endpoints
const (
	MinDaysBack = 1
	MaxDaysBack = 30
	MaxZoom     = 19
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	ve.Errors = append(ve.Errors, validateDataSettings(&settings.Data)...)
	ve.Errors = append(ve.Errors, validateDashboardSettings(&settings.Dashboard)...)
	ve.Errors = append(ve.Errors, validateWebServerSettings(&settings.WebServer)...)
	ve.Errors = append(ve.Errors, validateEBirdSettings(&settings.EBird)...)

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateDataSettings(s *DataSettings) []string {
	var errs []string
	if s.Path == "" && s.URL == "" {
		errs = append(errs, "data.path or data.url must be set")
	}
	if s.URL != "" {
		if err := checkHTTPURL(s.URL); err != nil {
			errs = append(errs, "data.url: "+err.Error())
		}
	}
	if s.CacheTTL < 0 {
		errs = append(errs, "data.cachettl must not be negative")
	}
	return errs
}

func validateDashboardSettings(s *DashboardSettings) []string {
	var errs []string
	if s.SearchDebounce < 0 {
		errs = append(errs, "dashboard.searchdebounce must not be negative")
	}
	if s.Map.Latitude < -90 || s.Map.Latitude > 90 {
		errs = append(errs, fmt.Sprintf("dashboard.map.latitude must be between -90 and 90, got %g", s.Map.Latitude))
	}
	if s.Map.Longitude < -180 || s.Map.Longitude > 180 {
		errs = append(errs, fmt.Sprintf("dashboard.map.longitude must be between -180 and 180, got %g", s.Map.Longitude))
	}
	if s.Map.Zoom < 0 || s.Map.Zoom > MaxZoom {
		errs = append(errs, fmt.Sprintf("dashboard.map.zoom must be between 0 and %d, got %d", MaxZoom, s.Map.Zoom))
	}
	if s.Map.Padding < 0 {
		errs = append(errs, "dashboard.map.padding must not be negative")
	}
	if s.Map.ClusterRadius <= 0 {
		errs = append(errs, "dashboard.map.clusterradius must be positive")
	}
	return errs
}

func validateWebServerSettings(s *WebServerSettings) []string {
	if err := checkPort(s.Port); err != nil {
		return []string{"webserver.port: " + err.Error()}
	}
	return nil
}

func validateEBirdSettings(s *EBirdSettings) []string {
	var errs []string
	if err := validateEnvRegion(s.Region); err != nil {
		errs = append(errs, "ebird.region: "+err.Error())
	}
	if err := checkDaysBack(s.DaysBack); err != nil {
		errs = append(errs, "ebird.daysback: "+err.Error())
	}
	if err := checkHTTPURL(s.BaseURL); err != nil {
		errs = append(errs, "ebird.baseurl: "+err.Error())
	}
	if s.Timeout <= 0 {
		errs = append(errs, "ebird.timeout must be positive")
	}
	if s.RateLimit <= 0 {
		errs = append(errs, "ebird.ratelimit must be positive")
	}
	return errs
}

func checkDaysBack(days int) error {
	if days < MinDaysBack || days > MaxDaysBack {
		return fmt.Errorf("must be between %d and %d, got %d", MinDaysBack, MaxDaysBack, days)
	}
	return nil
}

func checkPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port '%s'", value)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func checkHTTPURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https, got '%s'", value)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: '%s'", value)
	}
	return nil
}

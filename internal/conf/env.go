// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation.
// The eBird variables keep the names used by the scraper's deployment.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"ebird.apikey", "EBIRD_API_KEY", nil},
		{"ebird.apikeyfile", "EBIRD_API_KEY_FILE", nil},
		{"ebird.region", "EBIRD_REGION", validateEnvRegion},
		{"ebird.daysback", "DAYS_BACK", validateEnvDaysBack},

		{"data.path", "RAREBIRDS_DATA_PATH", nil},
		{"data.url", "RAREBIRDS_DATA_URL", validateEnvURL},
		{"data.watch", "RAREBIRDS_DATA_WATCH", validateEnvBool},
		{"webserver.port", "RAREBIRDS_PORT", validateEnvPort},
		{"debug", "RAREBIRDS_DEBUG", validateEnvBool},
		{"telemetry.sentry.dsn", "SENTRY_DSN", nil},
		{"telemetry.sentry.dsnfile", "SENTRY_DSN_FILE", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0, t/f", value)
	}
	return nil
}

// regionPattern matches eBird region codes: country, subnational1 or subnational2
var regionPattern = regexp.MustCompile(`^[A-Z]{2}(-[A-Z0-9]{1,3}){0,2}$`)

func validateEnvRegion(value string) error {
	if !regionPattern.MatchString(value) {
		return fmt.Errorf("region must look like 'US' or 'US-NY' or 'US-NY-109', got: '%s'", value)
	}
	return nil
}

func validateEnvDaysBack(value string) error {
	days, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid days back: %w", err)
	}
	return checkDaysBack(days)
}

func validateEnvPort(value string) error {
	return checkPort(value)
}

func validateEnvURL(value string) error {
	return checkHTTPURL(value)
}

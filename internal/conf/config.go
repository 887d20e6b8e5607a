// Package conf loads rarebirds settings from defaults, a YAML config file and
// environment variables.
package conf

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/secrets"
)

// DataSettings controls where the dashboard reads its sightings document
type DataSettings struct {
	Path     string        // local sightings document, used when URL is empty
	URL      string        // optional remote sightings document
	Watch    bool          // reload Path when the file changes
	CacheTTL time.Duration // how long a fetched remote document is reused
}

// MapSettings holds the default viewport and clustering options
type MapSettings struct {
	Latitude      float64 // default map centre latitude
	Longitude     float64 // default map centre longitude
	Zoom          int     // default zoom level
	Padding       int     // pixel padding used when fitting marker bounds
	ClusterRadius int     // marker cluster radius in pixels
}

// DashboardSettings contains dashboard behaviour settings
type DashboardSettings struct {
	SearchDebounce time.Duration // quiet period before a search is applied
	Map            MapSettings
}

// WebServerSettings contains settings for the web server
type WebServerSettings struct {
	Listen string // listen address, empty for all interfaces
	Port   string // port to listen on
}

// EBirdSettings contains settings for the eBird notable observations scraper
type EBirdSettings struct {
	APIKey     string        // eBird API token, may reference ${VAR}
	APIKeyFile string        // file holding the token, wins over APIKey
	Region     string        // region code, e.g. US-NY
	DaysBack   int           // how many days of observations to request
	BaseURL    string        // eBird API base URL
	Timeout    time.Duration // request timeout
	CacheTTL   time.Duration // response cache lifetime
	RateLimit  float64       // requests per second
}

// SentrySettings contains error reporting settings
type SentrySettings struct {
	DSN     string // empty disables reporting, may reference ${VAR}
	DSNFile string // file holding the DSN, wins over DSN
}

// TelemetrySettings groups optional telemetry integrations
type TelemetrySettings struct {
	Sentry SentrySettings
}

// Settings contains all configuration options for rarebirds
type Settings struct {
	Debug bool // true to enable debug mode

	Data      DataSettings
	Dashboard DashboardSettings
	WebServer WebServerSettings
	EBird     EBirdSettings `mapstructure:"ebird"`
	Logging   logger.LoggingConfig
	Telemetry TelemetrySettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
	configFile       string
)

// SetConfigFile makes Load read path instead of searching the default locations.
func SetConfigFile(path string) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	configFile = path
}

// Load reads the configuration file and environment variables into a new Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, err
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.Newf("error unmarshaling config into struct: %w", err).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	if err := resolveSecrets(settings); err != nil {
		return nil, err
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryValidation).
			Component("conf").
			Build()
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// resolveSecrets replaces credential settings with their file or
// environment values.
func resolveSecrets(settings *Settings) error {
	key, err := secrets.Resolve(settings.EBird.APIKeyFile, settings.EBird.APIKey)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Context("setting", "ebird.apikey").
			Build()
	}
	settings.EBird.APIKey = key

	dsn, err := secrets.Resolve(settings.Telemetry.Sentry.DSNFile, settings.Telemetry.Sentry.DSN)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Context("setting", "telemetry.sentry.dsn").
			Build()
	}
	settings.Telemetry.Sentry.DSN = dsn
	return nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigType("yaml")

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		for _, path := range GetDefaultConfigPaths() {
			viper.AddConfigPath(path)
		}
	}

	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// No config file, defaults and environment apply
			return nil
		}
		return errors.Newf("fatal error reading config file: %w", err).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Context("config_file", configFile).
			Build()
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "rarebirds"))
	}
	return paths
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
)

// Default map view: centred on New York State
const (
	DefaultLatitude      = 42.9538
	DefaultLongitude     = -75.5268
	DefaultZoom          = 7
	DefaultFitPadding    = 50
	DefaultClusterRadius = 50
)

// DefaultDataPath is the well-known location of the sightings document
const DefaultDataPath = "data/sightings.json"

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("data.path", DefaultDataPath)
	viper.SetDefault("data.url", "")
	viper.SetDefault("data.watch", true)
	viper.SetDefault("data.cachettl", 5*time.Minute)

	viper.SetDefault("dashboard.searchdebounce", 300*time.Millisecond)
	viper.SetDefault("dashboard.map.latitude", DefaultLatitude)
	viper.SetDefault("dashboard.map.longitude", DefaultLongitude)
	viper.SetDefault("dashboard.map.zoom", DefaultZoom)
	viper.SetDefault("dashboard.map.padding", DefaultFitPadding)
	viper.SetDefault("dashboard.map.clusterradius", DefaultClusterRadius)

	viper.SetDefault("webserver.listen", "")
	viper.SetDefault("webserver.port", "8080")

	viper.SetDefault("ebird.apikey", "")
	viper.SetDefault("ebird.apikeyfile", "")
	viper.SetDefault("ebird.region", "US-NY")
	viper.SetDefault("ebird.daysback", 14)
	viper.SetDefault("ebird.baseurl", "https://api.ebird.org/v2")
	viper.SetDefault("ebird.timeout", 30*time.Second)
	viper.SetDefault("ebird.cachettl", 1*time.Hour)
	viper.SetDefault("ebird.ratelimit", 1.0)

	viper.SetDefault("logging.defaultlevel", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("logging.console.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.fileoutput.enabled", logger.DefaultFileEnabled)
	viper.SetDefault("logging.fileoutput.path", logger.DefaultLogPath)
	viper.SetDefault("logging.fileoutput.level", logger.DefaultLogLevel)

	viper.SetDefault("telemetry.sentry.dsn", "")
	viper.SetDefault("telemetry.sentry.dsnfile", "")
}

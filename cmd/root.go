// Package cmd assembles the rarebirds command line.
package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/cmd/browse"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/cmd/regions"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/cmd/render"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/cmd/scrape"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/cmd/serve"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/conf"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
)

// AnnotationNoConsole marks commands that own the terminal; console logging
// is switched off for them.
const AnnotationNoConsole = "rarebirds/no-console"

const telemetryFlushTimeout = 2 * time.Second

// RootCommand creates and returns the root command. settings is filled in
// from the config file, environment and flags before any subcommand runs.
func RootCommand(settings *conf.Settings, version string) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "rarebirds",
		Short:         "Rare bird sightings dashboard",
		Long:          "Fetch notable eBird observations for a region and browse them on a map, in a table or in the terminal.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, &configPath)

	rootCmd.AddCommand(
		serve.Command(settings),
		render.Command(settings),
		browse.Command(settings, AnnotationNoConsole),
		scrape.Command(settings),
		regions.Command(),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_, noConsole := cmd.Annotations[AnnotationNoConsole]
		return initialize(settings, configPath, version, noConsole)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		errors.FlushTelemetry(telemetryFlushTimeout)
		_ = logger.Global().Flush()
	}

	return rootCmd
}

// initialize loads the configuration and sets up logging and telemetry.
func initialize(settings *conf.Settings, configPath, version string, noConsole bool) error {
	if configPath != "" {
		conf.SetConfigFile(configPath)
	}

	loaded, err := conf.Load()
	if err != nil {
		return err
	}
	*settings = *loaded

	if settings.Debug {
		settings.Logging.DefaultLevel = string(logger.LogLevelDebug)
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = string(logger.LogLevelDebug)
		}
	}
	if noConsole && settings.Logging.Console != nil {
		settings.Logging.Console.Enabled = false
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return err
	}
	logger.SetGlobal(central)

	if err := errors.InitSentry(settings.Telemetry.Sentry.DSN, "rarebirds@"+version); err != nil {
		logger.Global().Module("main").Warn("Error reporting disabled", logger.Error(err))
	}
	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, configPath *string) {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(configPath, "config", "c", "", "Path to config.yaml (default: ./config.yaml or ~/.config/rarebirds/config.yaml)")
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("data", conf.DefaultDataPath, "Path to the sightings document")
	flags.String("data-url", "", "URL of a remote sightings document, used instead of --data")

	// Bind flags to the viper settings; a flag set on the command line wins
	for key, name := range map[string]string{
		"debug":     "debug",
		"data.path": "data",
		"data.url":  "data-url",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

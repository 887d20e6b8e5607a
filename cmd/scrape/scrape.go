// Package scrape implements the command that fetches notable sightings from
// eBird and writes the sightings document.
package scrape

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/conf"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/ebird"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability/metrics"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/regions"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// Command creates the scrape command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch notable sightings from eBird",
		Long: "Fetch recent notable observations for a region from the eBird API, remove duplicates " +
			"and write the sightings document read by the dashboard.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings, cmd.OutOrStdout())
		},
	}

	setupFlags(cmd)
	return cmd
}

// setupFlags configures flags specific to the scrape command.
func setupFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("api-key", "", "eBird API key (or EBIRD_API_KEY)")
	flags.StringP("region", "r", "US-NY", "eBird region code")
	flags.Int("days-back", 14, "Days of observations to request (1-30)")

	for key, name := range map[string]string{
		"ebird.apikey":   "api-key",
		"ebird.region":   "region",
		"ebird.daysback": "days-back",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

// Run fetches and saves one region. When the API call fails an empty
// document is still written and the fetch error is returned afterwards.
func Run(ctx context.Context, settings *conf.Settings, stdout io.Writer) error {
	log := logger.Global().Module("scrape")
	cfg := settings.EBird

	// counters are only logged; there is no metrics endpoint in a one-shot run
	m, err := metrics.NewEBirdMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	client, err := ebird.NewClient(ebird.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		CacheTTL:  cfg.CacheTTL,
		RateLimit: cfg.RateLimit,
	}, ebird.WithLogger(log.Module("ebird")), ebird.WithMetrics(m))
	if err != nil {
		return err
	}
	defer client.Close()

	scraper := &ebird.Scraper{
		Fetcher:  client,
		Region:   cfg.Region,
		DaysBack: cfg.DaysBack,
		Path:     settings.Data.Path,
		Log:      log,
	}
	res, err := scraper.Run(ctx)
	if err != nil {
		return err
	}

	stats := client.Stats()
	log.Info("Scrape finished",
		logger.Int64("api_calls", stats.APICalls),
		logger.Int64("api_errors", stats.APIErrors),
		logger.Duration("avg_duration", stats.AvgDuration))

	printSummary(stdout, res, settings.Data.Path)
	return res.FetchErr
}

// printSummary lists the species found, one per line.
func printSummary(w io.Writer, res *ebird.Result, path string) {
	ds := res.Dataset
	fmt.Fprintf(w, "Saved %d sightings for %s to %s (%d observations before removing duplicates)\n",
		ds.TotalSightings, regions.Name(ds.Region), path, res.Raw)

	names := sightings.SpeciesNames(ds.Sightings)
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d species:\n", len(names))
	for _, name := range names {
		fmt.Fprintf(w, "  - %s\n", name)
	}
}

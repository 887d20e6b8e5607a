// Package serve implements the command that serves the dashboard over HTTP.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/conf"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/httpclient"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/httpcontroller"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/loader"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/watcher"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long:  "Serve the sightings dashboard, its JSON API and Prometheus metrics, reloading the document when it changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("watch") {
				settings.Data.Watch, _ = cmd.Flags().GetBool("watch")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings)
		},
	}

	setupFlags(cmd)
	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("listen", "", "Listen address, empty for all interfaces")
	flags.StringP("port", "p", "8080", "Port to listen on")
	flags.Bool("watch", true, "Reload the sightings document when the file changes")

	for key, name := range map[string]string{
		"webserver.listen": "listen",
		"webserver.port":   "port",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

// Run serves until ctx is done. The server and the file watcher or remote
// refresh loop share one errgroup, so a failure in one stops the other.
func Run(ctx context.Context, settings *conf.Settings) error {
	log := logger.Global().Module("serve")

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	client := httpclient.New(nil)
	defer client.Close()

	src := loader.NewSource(settings.Data, client)
	holder := loader.NewHolder(src, m.Dashboard)
	if err := holder.Reload(ctx); err != nil {
		log.Warn("Starting without sightings, the dashboard shows the no-data message", logger.Error(err))
	}

	srv, err := httpcontroller.New(settings, holder, m)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })

	switch {
	case settings.Data.URL != "":
		g.Go(func() error {
			refresh(gctx, holder, src, settings.Data.CacheTTL, log)
			return nil
		})
	case settings.Data.Watch:
		w, err := watcher.New(settings.Data.Path, watcher.DefaultDelay, func(ctx context.Context) {
			_ = holder.Reload(ctx)
		})
		if err != nil {
			log.Warn("File watching disabled", logger.Error(err))
			break
		}
		g.Go(func() error { return w.Run(gctx) })
	}

	return g.Wait()
}

// refresh reloads a remote document every interval until ctx is done.
func refresh(ctx context.Context, holder *loader.Holder, src loader.Source, interval time.Duration, log logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if hs, ok := src.(*loader.HTTPSource); ok {
				hs.Invalidate()
			}
			if err := holder.Reload(ctx); err == nil {
				log.Debug("Remote sightings document refreshed")
			}
		}
	}
}

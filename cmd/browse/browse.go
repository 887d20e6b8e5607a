// Package browse implements the command that shows the dashboard in the
// terminal.
package browse

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/conf"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/dashboard"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/httpclient"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/loader"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/tui"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/watcher"
)

// Command creates the browse command. noConsole is the annotation that turns
// console logging off while the terminal UI runs.
func Command(settings *conf.Settings, noConsole string) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "browse",
		Short:       "Browse the sightings in the terminal",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noConsole: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			// not bound to viper, serve has a --watch flag for the same key
			if cmd.Flags().Changed("watch") {
				settings.Data.Watch, _ = cmd.Flags().GetBool("watch")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, settings)
		},
	}

	cmd.Flags().Bool("watch", true, "Reload when the sightings file changes")

	return cmd
}

// Run shows the terminal dashboard until the user quits or ctx is done.
func Run(ctx context.Context, settings *conf.Settings) error {
	log := logger.Global().Module("browse")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := httpclient.New(nil)
	defer client.Close()

	dcfg := dashboard.DefaultConfig()
	dcfg.SearchDebounce = settings.Dashboard.SearchDebounce
	dcfg.FitPadding = settings.Dashboard.Map.Padding
	dcfg.Location = time.Local

	mapCfg := settings.Dashboard.Map
	p := tui.NewProgram(ctx, loader.NewSource(settings.Data, client), tui.Config{
		Dashboard: dcfg,
		Map: dashboard.Viewport{
			Center: dashboard.LatLng{Lat: mapCfg.Latitude, Lng: mapCfg.Longitude},
			Zoom:   mapCfg.Zoom,
		},
		Logger: log.Module("dashboard"),
	})

	g, gctx := errgroup.WithContext(ctx)
	if settings.Data.Watch && settings.Data.URL == "" {
		w, err := watcher.New(settings.Data.Path, watcher.DefaultDelay, func(context.Context) {
			p.Send(tui.ReloadMsg{})
		})
		if err != nil {
			log.Warn("File watching disabled", logger.Error(err))
		} else {
			g.Go(func() error { return w.Run(gctx) })
		}
	}

	g.Go(func() error {
		// quitting the UI stops the watcher
		defer cancel()
		return tui.RunProgram(p)
	})

	return g.Wait()
}

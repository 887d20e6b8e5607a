// Package httpcontroller serves the sightings dashboard, its JSON API and
// the raw document over HTTP.
package httpcontroller

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/conf"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/dashboard"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/errors"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/observability"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

const shutdownTimeout = 10 * time.Second

// DataProvider hands out the current dataset.
type DataProvider interface {
	dashboard.Source
	Current() *sightings.Dataset
	LoadedAt() time.Time
}

// Server encapsulates Echo server and related configurations.
type Server struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	Data     DataProvider
	Metrics  *observability.Metrics

	renderer *TemplateRenderer
	location *time.Location
	log      logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLocation sets the timezone of the last updated header.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.location = loc
		}
	}
}

// New initializes a new HTTP server serving data. m may be nil.
func New(settings *conf.Settings, data DataProvider, m *observability.Metrics, opts ...Option) (*Server, error) {
	if settings == nil || data == nil {
		return nil, errors.Newf("httpcontroller: settings and data provider are required").
			Category(errors.CategoryValidation).
			Component("httpcontroller").
			Build()
	}

	renderer, err := NewTemplateRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Echo:     echo.New(),
		Settings: settings,
		Data:     data,
		Metrics:  m,
		renderer: renderer,
		location: time.Local,
		log:      logger.Global().Module("http"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.initializeServer()
	return s, nil
}

// initializeServer configures and initializes the server.
func (s *Server) initializeServer() {
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Logger = newEchoLogger(s.log.Module("echo"), s.Settings.Debug)
	s.Echo.Renderer = s.renderer
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()

	s.configureMiddleware()
	s.initRoutes()
}

// Address returns the listen address.
func (s *Server) Address() string {
	return net.JoinHostPort(s.Settings.WebServer.Listen, s.Settings.WebServer.Port)
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Echo.Start(addr)
	}()

	s.log.Info("HTTP server started", logger.String("address", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New(err).
			Category(errors.CategoryNetwork).
			Component("httpcontroller").
			Context("address", addr).
			Build()

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.log.Info("Shutting down HTTP server")
		if err := s.Echo.Shutdown(shutdownCtx); err != nil {
			return errors.New(err).
				Category(errors.CategoryTimeout).
				Component("httpcontroller").
				Build()
		}
		<-errCh
		return nil
	}
}

// viewOptions derives the view settings from the configuration.
func (s *Server) viewOptions() ViewOptions {
	opts := NewViewOptions(s.Settings, s.location, s.log.Module("dashboard"))
	if s.Metrics != nil {
		opts.Metrics = s.Metrics.Dashboard
	}
	return opts
}

// NewViewOptions returns the view settings of settings. The last updated
// header is shown in loc.
func NewViewOptions(settings *conf.Settings, loc *time.Location, log logger.Logger) ViewOptions {
	mapCfg := settings.Dashboard.Map
	return ViewOptions{
		Map: dashboard.Viewport{
			Center: dashboard.LatLng{Lat: mapCfg.Latitude, Lng: mapCfg.Longitude},
			Zoom:   mapCfg.Zoom,
		},
		FitPadding:    mapCfg.Padding,
		ClusterRadius: mapCfg.ClusterRadius,
		Debounce:      settings.Dashboard.SearchDebounce,
		Location:      loc,
		Logger:        log,
	}
}

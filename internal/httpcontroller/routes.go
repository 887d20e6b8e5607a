package httpcontroller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// initRoutes registers the page, API and asset routes.
func (s *Server) initRoutes() {
	s.Echo.GET("/", s.handleDashboard)
	s.Echo.GET("/data/sightings.json", s.handleRawDocument)
	s.Echo.GET("/healthz", s.handleHealth)
	s.Echo.StaticFS("/static", StaticFS())

	api := s.Echo.Group("/api/v1")
	api.GET("/sightings", s.handleSightings)
	api.GET("/species", s.handleSpecies)

	if s.Metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	} else {
		s.Echo.GET("/metrics", func(c echo.Context) error {
			return echo.NewHTTPError(http.StatusNotFound, "metrics disabled")
		})
	}
}

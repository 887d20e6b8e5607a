package httpcontroller

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/sightings"
)

// buildView renders the current dataset for the request query.
func (s *Server) buildView(c echo.Context) *View {
	ctx := c.Request().Context()
	q := ParseQuery(c.QueryParams())

	v, err := BuildView(ctx, s.Data, q, s.viewOptions())
	if err != nil {
		s.log.WithContext(ctx).Debug("Serving dashboard without data", logger.Error(err))
	}
	return v
}

// handleDashboard renders the dashboard page.
func (s *Server) handleDashboard(c echo.Context) error {
	v := s.buildView(c)

	var buf bytes.Buffer
	if err := s.renderer.RenderPage(&buf, v, false); err != nil {
		if s.Metrics != nil {
			s.Metrics.HTTP.RecordTemplateRenderError("index.html")
		}
		s.log.WithContext(c.Request().Context()).Error("Failed to render dashboard", logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render dashboard")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// handleSightings returns the filtered, sorted rows with the map plan.
func (s *Server) handleSightings(c echo.Context) error {
	return c.JSON(http.StatusOK, s.buildView(c).Response())
}

// SpeciesResponse lists the species filter options.
type SpeciesResponse struct {
	Species []string `json:"species"`
}

// handleSpecies returns the sorted distinct common names.
func (s *Server) handleSpecies(c echo.Context) error {
	resp := SpeciesResponse{Species: []string{}}
	if ds := s.Data.Current(); ds != nil {
		resp.Species = sightings.SpeciesNames(ds.Sightings)
	}
	return c.JSON(http.StatusOK, resp)
}

// handleRawDocument serves the loaded sightings document.
func (s *Server) handleRawDocument(c echo.Context) error {
	ds := s.Data.Current()
	if ds == nil {
		return echo.NewHTTPError(http.StatusNotFound, "sightings document not loaded")
	}

	var buf bytes.Buffer
	if err := sightings.Encode(&buf, ds); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to encode sightings document")
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, buf.Bytes())
}

// HealthResponse reports whether a dataset is loaded.
type HealthResponse struct {
	Status      string    `json:"status"`
	Loaded      bool      `json:"loaded"`
	Sightings   int       `json:"sightings"`
	LastUpdated string    `json:"lastUpdated,omitempty"`
	LoadedAt    time.Time `json:"loadedAt,omitzero"`
}

// handleHealth always answers 200 while the server runs; Loaded tells
// whether there is data to show.
func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok"}
	if ds := s.Data.Current(); ds != nil {
		resp.Loaded = true
		resp.Sightings = len(ds.Sightings)
		resp.LastUpdated = ds.LastUpdated
		resp.LoadedAt = s.Data.LoadedAt()
	}
	return c.JSON(http.StatusOK, resp)
}

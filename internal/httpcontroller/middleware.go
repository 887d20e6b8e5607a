package httpcontroller

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/DimuthuAttanayake/eBird-Rare-Birds-NY/internal/logger"
)

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString()[:8] },
	}))
	s.Echo.Use(s.TraceMiddleware())
	s.Echo.Use(s.RequestLoggerMiddleware())
	s.Echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	s.Echo.Use(s.GzipMiddleware())
	s.Echo.Use(s.CacheControlMiddleware())
}

// TraceMiddleware copies the request ID into the request context so that
// loggers built with WithContext carry it.
func (s *Server) TraceMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(logger.WithTraceID(req.Context(), id)))
			}
			return next(c)
		}
	}
}

// GzipMiddleware configures Gzip compression for the server
func (s *Server) GzipMiddleware() echo.MiddlewareFunc {
	return middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     6,
		MinLength: 2048,
	})
}

// CacheControlMiddleware sets cache headers based on the request path.
func (s *Server) CacheControlMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			h := c.Response().Header()

			switch {
			case strings.HasPrefix(path, "/static/"):
				h.Set("Cache-Control", "public, max-age=3600, must-revalidate")
			case strings.HasPrefix(path, "/data/"):
				h.Set("Cache-Control", "no-cache")
			case strings.HasPrefix(path, "/api/"):
				h.Set("Cache-Control", "no-store")
				h.Set("Pragma", "no-cache")
				h.Set("Expires", "0")
			default:
				h.Set("Cache-Control", "no-store")
			}
			return next(c)
		}
	}
}

// RequestLoggerMiddleware logs each request and records it in the HTTP metrics.
func (s *Server) RequestLoggerMiddleware() echo.MiddlewareFunc {
	httpLogger := s.log.Module("request")

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:          true,
		LogStatus:       true,
		LogLatency:      true,
		LogRemoteIP:     true,
		LogMethod:       true,
		LogError:        true,
		LogResponseSize: true,
		LogUserAgent:    true,
		LogRequestID:    true,
		HandleError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			if s.Metrics != nil {
				s.Metrics.HTTP.RecordHTTPRequest(v.Method, route, v.Status, v.Latency.Seconds())
			}

			var logMethod func(string, ...logger.Field)
			switch {
			case v.Status >= 500:
				logMethod = httpLogger.Error
			case v.Status >= 400:
				logMethod = httpLogger.Warn
			case strings.HasPrefix(v.URI, "/static/"), v.URI == "/healthz", v.URI == "/metrics":
				logMethod = httpLogger.Debug
			default:
				logMethod = httpLogger.Info
			}

			fields := []logger.Field{
				logger.String("remote_ip", v.RemoteIP),
				logger.String("method", v.Method),
				logger.String("uri", v.URI),
				logger.Int("status", v.Status),
				logger.Float64("latency_ms", float64(v.Latency)/float64(time.Millisecond)),
			}
			if v.RequestID != "" {
				fields = append(fields, logger.String("request_id", v.RequestID))
			}
			if v.ResponseSize > 0 {
				fields = append(fields, logger.Int64("resp_size", v.ResponseSize))
			}
			if v.Error != nil {
				fields = append(fields, logger.Error(v.Error))
			}
			if v.Status >= 400 && v.UserAgent != "" {
				fields = append(fields, logger.String("user_agent", v.UserAgent))
			}

			logMethod(fmt.Sprintf("%s %s %d", v.Method, v.URI, v.Status), fields...)
			return nil
		},
	})
}

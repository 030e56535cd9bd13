package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"salarydash/internal/log"
)

// NewServer builds the echo instance with middleware and routes registered.
func NewServer(h *Handler, corsOrigins []string, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = JSONSerializer{}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: corsOrigins}))
	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger.WithComponent(log.ComponentHTTP)))

	h.RegisterRoutes(e)
	return e
}

// RequestLogger writes one access line per request through slog.
func RequestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
			case v.Status >= 400:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String(log.FieldMethod, v.Method),
				slog.String(log.FieldPath, v.URI),
				slog.Int(log.FieldStatusCode, v.Status),
				slog.Int64(log.FieldDuration, v.Latency.Milliseconds()),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String(log.FieldError, v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "HTTP request completed", attrs...)
			return nil
		},
	})
}

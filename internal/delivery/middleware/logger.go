package middleware

import (
	"log/slog"
	"time"

	"warden/config"
	deliverycontext "warden/internal/delivery/context"
	"warden/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// LoggerMiddleware records request metrics and, in debug mode, an access log line.
type LoggerMiddleware struct {
	logger  *slog.Logger
	metrics service.MetricsRecorder
	debug   bool
}

// NewLoggerMiddleware creates a new logger middleware
func NewLoggerMiddleware(logger *slog.Logger, metrics service.MetricsRecorder, config *config.Config) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger:  logger,
		metrics: metrics,
		debug:   config.Env.Debug,
	}
}

// Handle processes request logging
func (m *LoggerMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			// Let echo resolve the final status before it is observed.
			c.Error(err)
		}

		elapsed := time.Since(start)
		m.metrics.ObserveHTTPRequest(c.Request().Method, c.Path(), c.Response().Status, elapsed)
		if m.debug {
			m.logRequest(c, start, elapsed, err)
		}

		return nil
	}
}

func (m *LoggerMiddleware) logRequest(c echo.Context, start time.Time, latency time.Duration, err error) {
	req := c.Request()
	res := c.Response()

	fields := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("uri", req.URL.Path),
		slog.String("route", c.Path()),
		slog.Int("status", res.Status),
		slog.Duration("latency", latency),
		slog.String("remote_ip", c.RealIP()),
		slog.String("user_agent", req.UserAgent()),
		slog.String("time", start.Format(time.RFC3339)),
	}

	if len(req.URL.RawQuery) > 0 {
		fields = append(fields, slog.String("query", req.URL.RawQuery))
	}

	if err != nil {
		fields = append(fields, slog.Any("error", err))
	}

	logLevel := slog.LevelInfo
	if res.Status >= 400 {
		logLevel = slog.LevelWarn
	}
	if res.Status >= 500 {
		logLevel = slog.LevelError
	}

	ctx := req.Context()
	deliverycontext.GetLoggerOrDefault(ctx, m.logger).LogAttrs(ctx, logLevel, "HTTP Request", fields...)
}

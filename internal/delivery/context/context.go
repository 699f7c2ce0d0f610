// Package context carries request-scoped values (request id, logger, principal)
// across the echo boundary into plain context.Context.
package context

import (
	"context"
	"log/slog"

	"warden/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyLogger
	keyPrincipal
)

const (
	// HeaderXRequestID is the HTTP header name for request ID.
	HeaderXRequestID = echo.HeaderXRequestID

	echoKeyRequestID = "request_id"
	echoKeyPrincipal = "principal"
)

// RequestID returns the request id stored on the echo context, or "".
func RequestID(c echo.Context) string {
	if id, ok := c.Get(echoKeyRequestID).(string); ok {
		return id
	}

	return ""
}

// SetRequestID stores the request id on the echo context and its request context.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(echoKeyRequestID, requestID)
	req := c.Request()
	c.SetRequest(req.WithContext(WithRequestID(req.Context(), requestID)))
}

// WithRequestID returns a new context with the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// RequestIDFrom extracts the request ID from a context, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)

	return id
}

// WithLogger returns a new context with the logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLoggerOrDefault extracts the request-scoped logger, falling back when absent.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}

// SetPrincipal records the authenticated identity on the echo context and its request context.
func SetPrincipal(c echo.Context, principal entity.Principal) {
	c.Set(echoKeyPrincipal, principal)
	req := c.Request()
	c.SetRequest(req.WithContext(WithPrincipal(req.Context(), principal)))
}

// Principal returns the identity established by the auth middleware.
func Principal(c echo.Context) (entity.Principal, bool) {
	p, ok := c.Get(echoKeyPrincipal).(entity.Principal)

	return p, ok
}

// WithPrincipal returns a new context carrying the principal.
func WithPrincipal(ctx context.Context, principal entity.Principal) context.Context {
	return context.WithValue(ctx, keyPrincipal, principal)
}

// PrincipalFrom extracts the principal from a context.
func PrincipalFrom(ctx context.Context) (entity.Principal, bool) {
	p, ok := ctx.Value(keyPrincipal).(entity.Principal)

	return p, ok
}

package context

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEchoContext() echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestRequestID_PropagatesToRequestContext(t *testing.T) {
	c := newEchoContext()
	assert.Empty(t, RequestID(c))

	SetRequestID(c, "req-1")

	assert.Equal(t, "req-1", RequestID(c))
	assert.Equal(t, "req-1", RequestIDFrom(c.Request().Context()))
}

func TestPrincipal_PropagatesToRequestContext(t *testing.T) {
	c := newEchoContext()
	_, ok := Principal(c)
	assert.False(t, ok)

	principal := entity.Principal{AccountID: uuid.New(), Email: "a@example.com", Role: entity.RoleAdmin}
	SetPrincipal(c, principal)

	got, ok := Principal(c)
	require.True(t, ok)
	assert.Equal(t, principal, got)

	got, ok = PrincipalFrom(c.Request().Context())
	require.True(t, ok)
	assert.Equal(t, principal, got)
}

func TestGetLoggerOrDefault(t *testing.T) {
	fallback := slog.New(slog.DiscardHandler)
	scoped := fallback.With("request_id", "abc")

	assert.Same(t, fallback, GetLoggerOrDefault(context.Background(), fallback))
	assert.Same(t, scoped, GetLoggerOrDefault(WithLogger(context.Background(), scoped), fallback))
}

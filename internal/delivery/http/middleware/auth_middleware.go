package middleware

import (
	deliverycontext "warden/internal/delivery/context"
	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthMiddleware adapts the access guard to echo routes.
type AuthMiddleware struct {
	guard usecase.AccessGuard
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(guard usecase.AccessGuard) *AuthMiddleware {
	return &AuthMiddleware{guard: guard}
}

// Require guards a route with policy. For ownership-scoped policies the target
// is read from the :id path parameter, so it must be attached per route.
func (m *AuthMiddleware) Require(policy usecase.Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := usecase.AccessRequest{
				Policy:        policy,
				Authorization: c.Request().Header.Get(echo.HeaderAuthorization),
			}
			if policy.OwnershipScoped {
				if id, err := uuid.Parse(c.Param("id")); err == nil {
					req.ResourceID = &id
				}
			}

			result, err := m.guard.Authorize(c.Request().Context(), req)
			if err != nil {
				return errors.WithStack(err)
			}

			if result.Principal != nil {
				deliverycontext.SetPrincipal(c, *result.Principal)
			}

			return next(c)
		}
	}
}

// GetPrincipal returns the caller identity of a guarded route.
func GetPrincipal(c echo.Context) (entity.Principal, error) {
	principal, ok := deliverycontext.Principal(c)
	if !ok {
		return entity.Principal{}, domainerrors.ErrUnauthorized
	}

	return principal, nil
}

package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "warden/internal/delivery/context"
	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/domain/repository"
	"warden/internal/domain/service"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const bearerPrefix = "Bearer "

// accessGuard implements the AccessGuard interface.
type accessGuard struct {
	verifier service.TokenVerifier
	owners   repository.OwnerLookup
	metrics  service.MetricsRecorder
	logger   *slog.Logger
}

// AccessGuardParams holds dependencies for the access guard, injected by Fx.
type AccessGuardParams struct {
	fx.In

	Verifier service.TokenVerifier
	Owners   repository.OwnerLookup
	Metrics  service.MetricsRecorder
	Logger   *slog.Logger
}

// NewAccessGuard creates the guard that gates every protected operation.
func NewAccessGuard(params AccessGuardParams) usecase.AccessGuard {
	return &accessGuard{
		verifier: params.Verifier,
		owners:   params.Owners,
		metrics:  params.Metrics,
		logger:   params.Logger,
	}
}

func (g *accessGuard) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, g.logger)
}

// Authorize walks the decision in a fixed order: public, token presence, token
// validity, role, then ownership. The first failing step decides the outcome.
func (g *accessGuard) Authorize(ctx context.Context, req usecase.AccessRequest) (*usecase.AccessResult, error) {
	label := req.Policy.Label()

	result, outcome, err := g.decide(ctx, req)
	g.metrics.RecordAccessDecision(label, outcome)

	return result, err
}

func (g *accessGuard) decide(ctx context.Context, req usecase.AccessRequest) (*usecase.AccessResult, string, error) {
	if req.Policy.Public {
		return &usecase.AccessResult{}, service.OutcomeAllowed, nil
	}

	token, ok := bearerToken(req.Authorization)
	if !ok {
		return nil, service.OutcomeUnauthorized, domainerrors.ErrUnauthorized
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		// Expired and forged tokens look the same to the client.
		g.log(ctx).Info("Rejected bearer token", slog.Any("reason", err))

		return nil, service.OutcomeUnauthorized, domainerrors.ErrUnauthorized
	}
	principal := claims.Principal()

	if !principal.Role.Satisfies(req.Policy.RequiredRole) {
		g.log(ctx).Info("Role requirement not met",
			slog.String("account_id", principal.AccountID.String()),
			slog.String("role", principal.Role.String()),
			slog.String("required", req.Policy.RequiredRole.String()))

		return nil, service.OutcomeForbidden, domainerrors.ErrForbidden
	}

	if req.Policy.OwnershipScoped {
		if outcome, err := g.checkOwnership(ctx, principal, req.ResourceID); err != nil {
			return nil, outcome, err
		}
	}

	return &usecase.AccessResult{Principal: &principal}, service.OutcomeAllowed, nil
}

func (g *accessGuard) checkOwnership(ctx context.Context, principal entity.Principal, resourceID *uuid.UUID) (string, error) {
	if resourceID == nil {
		return service.OutcomeNotFound, domainerrors.ErrNotFound
	}

	ownerID, err := g.owners.FindOwnerID(ctx, *resourceID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return service.OutcomeNotFound, domainerrors.ErrNotFound
		}
		g.log(ctx).Error("Failed to look up resource owner", slog.String("resource_id", resourceID.String()), slog.Any("error", err))

		return service.OutcomeError, errors.Wrap(err, "failed to look up resource owner")
	}

	if ownerID != principal.AccountID && !entity.CanBypassOwnership(principal.Role) {
		g.log(ctx).Info("Ownership check failed",
			slog.String("account_id", principal.AccountID.String()),
			slog.String("resource_id", resourceID.String()))

		return service.OutcomeForbidden, domainerrors.ErrForbidden
	}

	return "", nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" value.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])

	return token, token != ""
}

package impl

import (
	"context"
	"testing"

	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/domain/repository"
	"warden/internal/domain/service"
	mockRepo "warden/internal/mocks/repository"
	mockSvc "warden/internal/mocks/service"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type guardFixtures struct {
	guard    usecase.AccessGuard
	verifier *mockSvc.MockTokenService
	owners   *mockRepo.MockOwnerLookup
	metrics  *mockSvc.RecordingMetrics
}

func createTestAccessGuard(t *testing.T) guardFixtures {
	verifier := mockSvc.NewMockTokenService(t)
	owners := mockRepo.NewMockOwnerLookup(t)
	metrics := &mockSvc.RecordingMetrics{}

	guard := NewAccessGuard(AccessGuardParams{
		Verifier: verifier,
		Owners:   owners,
		Metrics:  metrics,
		Logger:   newDiscardLogger(),
	})

	return guardFixtures{guard: guard, verifier: verifier, owners: owners, metrics: metrics}
}

func claimsFor(id uuid.UUID, role entity.Role) *service.Claims {
	return &service.Claims{AccountID: id, Email: "someone@example.com", Role: role}
}

func TestAccessGuard_PublicSkipsAuthentication(t *testing.T) {
	fx := createTestAccessGuard(t)

	result, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{Policy: usecase.PublicPolicy()})

	require.NoError(t, err)
	assert.Nil(t, result.Principal)
	assert.Equal(t, []string{"public=allowed"}, fx.metrics.Decisions())
}

func TestAccessGuard_MissingOrMalformedHeader(t *testing.T) {
	headers := []string{"", "Bearer", "Bearer   ", "Basic dXNlcjpwYXNz", "token-without-scheme"}

	for _, header := range headers {
		t.Run(header, func(t *testing.T) {
			fx := createTestAccessGuard(t)

			_, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{
				Policy:        usecase.AuthenticatedPolicy(),
				Authorization: header,
			})

			assert.Same(t, domainerrors.ErrUnauthorized, err)
			assert.Equal(t, []string{"authenticated=unauthorized"}, fx.metrics.Decisions())
		})
	}
}

func TestAccessGuard_InvalidAndExpiredTokensCollapseToUnauthorized(t *testing.T) {
	for _, cause := range []error{domainerrors.ErrInvalidToken, domainerrors.ErrExpiredToken} {
		fx := createTestAccessGuard(t)
		fx.verifier.On("Verify", "tok").Return(nil, cause).Once()

		_, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{
			Policy:        usecase.AuthenticatedPolicy(),
			Authorization: "Bearer tok",
		})

		assert.Same(t, domainerrors.ErrUnauthorized, err)
	}
}

func TestAccessGuard_SchemeIsCaseInsensitive(t *testing.T) {
	fx := createTestAccessGuard(t)
	id := uuid.New()
	fx.verifier.On("Verify", "tok").Return(claimsFor(id, entity.RoleUser), nil).Once()

	result, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{
		Policy:        usecase.AuthenticatedPolicy(),
		Authorization: "bearer tok",
	})

	require.NoError(t, err)
	assert.Equal(t, id, result.Principal.AccountID)
}

func TestAccessGuard_RoleRequirement(t *testing.T) {
	tests := []struct {
		name     string
		role     entity.Role
		required entity.Role
		wantErr  error
	}{
		{name: "user on user route", role: entity.RoleUser, required: entity.RoleUser},
		{name: "admin on user route", role: entity.RoleAdmin, required: entity.RoleUser},
		{name: "admin on admin route", role: entity.RoleAdmin, required: entity.RoleAdmin},
		{name: "user on admin route", role: entity.RoleUser, required: entity.RoleAdmin, wantErr: domainerrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAccessGuard(t)
			fx.verifier.On("Verify", "tok").Return(claimsFor(uuid.New(), tt.role), nil).Once()

			result, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{
				Policy:        usecase.RolePolicy(tt.required),
				Authorization: "Bearer tok",
			})

			if tt.wantErr != nil {
				assert.Same(t, tt.wantErr, err)
				assert.Nil(t, result)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, result.Principal.Role)
		})
	}
}

func TestAccessGuard_Ownership(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	admin := uuid.New()
	itemID := uuid.New()

	tests := []struct {
		name    string
		caller  uuid.UUID
		role    entity.Role
		wantErr error
		outcome string
	}{
		{name: "owner", caller: owner, role: entity.RoleUser, outcome: "owner=allowed"},
		{name: "non owner", caller: stranger, role: entity.RoleUser, wantErr: domainerrors.ErrForbidden, outcome: "owner=forbidden"},
		{name: "admin bypass", caller: admin, role: entity.RoleAdmin, outcome: "owner=allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestAccessGuard(t)
			fx.verifier.On("Verify", "tok").Return(claimsFor(tt.caller, tt.role), nil).Once()
			fx.owners.On("FindOwnerID", mock.Anything, itemID).Return(owner, nil).Once()

			_, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{
				Policy:        usecase.OwnerPolicy(),
				Authorization: "Bearer tok",
				ResourceID:    &itemID,
			})

			if tt.wantErr != nil {
				assert.Same(t, tt.wantErr, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{tt.outcome}, fx.metrics.Decisions())
		})
	}
}

func TestAccessGuard_MissingResourceIsNotFoundBeforeForbidden(t *testing.T) {
	for _, role := range []entity.Role{entity.RoleUser, entity.RoleAdmin} {
		fx := createTestAccessGuard(t)
		missing := uuid.New()
		fx.verifier.On("Verify", "tok").Return(claimsFor(uuid.New(), role), nil).Once()
		fx.owners.On("FindOwnerID", mock.Anything, missing).Return(uuid.Nil, repository.ErrItemNotFound).Once()

		_, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{
			Policy:        usecase.OwnerPolicy(),
			Authorization: "Bearer tok",
			ResourceID:    &missing,
		})

		assert.Same(t, domainerrors.ErrNotFound, err, role)
	}
}

func TestAccessGuard_NoResourceIDIsNotFound(t *testing.T) {
	fx := createTestAccessGuard(t)
	fx.verifier.On("Verify", "tok").Return(claimsFor(uuid.New(), entity.RoleUser), nil).Once()

	_, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{
		Policy:        usecase.OwnerPolicy(),
		Authorization: "Bearer tok",
	})

	assert.Same(t, domainerrors.ErrNotFound, err)
}

func TestAccessGuard_OwnerLookupFailure(t *testing.T) {
	fx := createTestAccessGuard(t)
	itemID := uuid.New()
	fx.verifier.On("Verify", "tok").Return(claimsFor(uuid.New(), entity.RoleUser), nil).Once()
	fx.owners.On("FindOwnerID", mock.Anything, itemID).Return(uuid.Nil, errors.New("connection refused")).Once()

	_, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{
		Policy:        usecase.OwnerPolicy(),
		Authorization: "Bearer tok",
		ResourceID:    &itemID,
	})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domainerrors.ErrNotFound))
	assert.Equal(t, []string{"owner=error"}, fx.metrics.Decisions())
}

func TestAccessGuard_UnauthenticatedBeatsMissingResource(t *testing.T) {
	fx := createTestAccessGuard(t)
	missing := uuid.New()

	_, err := fx.guard.Authorize(context.Background(), usecase.AccessRequest{
		Policy:     usecase.OwnerPolicy(),
		ResourceID: &missing,
	})

	// The owner lookup is never reached without a valid token.
	assert.Same(t, domainerrors.ErrUnauthorized, err)
}

// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
)

// TokenTypeBearer is the scheme clients must use when presenting an issued token.
const TokenTypeBearer = "Bearer"

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	DisplayName string `json:"displayName" validate:"required,displayname"`
	Password    string `json:"password" validate:"required,password"`
}

// LoginInput defines the data required for an account to log in.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileInput carries the fields an account may change about itself.
type UpdateProfileInput struct {
	DisplayName string `json:"displayName" validate:"required,displayname"`
}

// ChangeRoleInput carries the target role of an administrative role change.
type ChangeRoleInput struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN"`
}

// ListInput is an offset page request. A zero Limit selects DefaultPageSize.
type ListInput struct {
	Offset int `json:"offset" query:"offset" validate:"min=0"`
	Limit  int `json:"limit" query:"limit" validate:"min=0,max=100"`
}

// BootstrapAdminInput describes the administrator seeded at startup.
type BootstrapAdminInput struct {
	Email       string
	DisplayName string
	Password    string
}

// DefaultPageSize is used when a ListInput leaves Limit unset.
const DefaultPageSize = 50

// PageLimit returns the effective page size.
func (in ListInput) PageLimit() int {
	if in.Limit <= 0 {
		return DefaultPageSize
	}

	return in.Limit
}

// --- Output DTOs ---

// LoginOutput returns the issued token after a successful login.
type LoginOutput struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	Account   *entity.Account
}

// AccountUsecase is the credential store: account registration, lookup and authentication.
type AccountUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	Authenticate(ctx context.Context, email, password string) (*entity.Account, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Account, error)
	UpdateProfile(ctx context.Context, accountID uuid.UUID, input UpdateProfileInput) (*entity.Account, error)
	ListAccounts(ctx context.Context, input ListInput) ([]*entity.Account, error)
	ChangeRole(ctx context.Context, actor entity.Principal, accountID uuid.UUID, input ChangeRoleInput) (*entity.Account, error)
	EnsureAdmin(ctx context.Context, input BootstrapAdminInput) (*entity.Account, error)
}

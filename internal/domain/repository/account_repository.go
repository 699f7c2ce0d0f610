// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound is returned when no account matches a lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountEmailTaken is returned when an insert collides with the email uniqueness constraint.
	ErrAccountEmailTaken = errors.New("account email already taken")
)

// AccountRepository defines the standard operations for account persistence.
// Emails passed in are expected to be normalized already.
type AccountRepository interface {
	// FindByID retrieves a single account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail retrieves a single account by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// ExistsByEmail reports whether an account with the email is registered.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns accounts ordered by creation time.
	List(ctx context.Context, offset, limit int) ([]*entity.Account, error)

	// Create persists a new account entity to the storage.
	Create(ctx context.Context, account *entity.Account) error

	// Update modifies an existing account entity in the storage.
	Update(ctx context.Context, account *entity.Account) error
}

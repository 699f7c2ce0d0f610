package repository

import (
	"context"
	"errors"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrItemNotFound is returned when no item matches a lookup.
var ErrItemNotFound = errors.New("item not found")

// OwnerLookup resolves the owner of an ownership-scoped resource.
type OwnerLookup interface {
	// FindOwnerID returns the owning account's ID, or ErrItemNotFound.
	FindOwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// ItemRepository defines persistence for owned items.
type ItemRepository interface {
	OwnerLookup

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	List(ctx context.Context, offset, limit int) ([]*entity.Item, error)
	Create(ctx context.Context, item *entity.Item) error
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}

package usecase

import (
	"context"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
)

// Item field limits, in characters. Keep in sync with the ItemInput tags.
const (
	ItemTitleMaxLength       = 200
	ItemDescriptionMaxLength = 2000
)

// ItemInput carries the mutable fields of an item.
type ItemInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// ItemUsecase manages owned items. Update and Delete assume the caller has
// already passed the ownership-scoped access check.
type ItemUsecase interface {
	List(ctx context.Context, input ListInput) ([]*entity.Item, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	Create(ctx context.Context, principal entity.Principal, input ItemInput) (*entity.Item, error)
	Update(ctx context.Context, principal entity.Principal, id uuid.UUID, input ItemInput) (*entity.Item, error)
	Delete(ctx context.Context, principal entity.Principal, id uuid.UUID) error
}

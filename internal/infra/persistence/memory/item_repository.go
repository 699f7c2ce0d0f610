package memory

import (
	"cmp"
	"context"
	"slices"

	"warden/internal/domain/entity"
	"warden/internal/domain/repository"

	"github.com/google/uuid"
)

type itemRepository struct {
	store *Store
	undo  *undoLog
}

func (r *itemRepository) FindOwnerID(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.items[id]
	if !ok {
		return uuid.Nil, repository.ErrItemNotFound
	}

	return item.OwnerID, nil
}

func (r *itemRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}

	return &item, nil
}

func (r *itemRepository) List(_ context.Context, offset, limit int) ([]*entity.Item, error) {
	r.store.mu.RLock()
	all := make([]*entity.Item, 0, len(r.store.items))
	for _, item := range r.store.items {
		all = append(all, &item)
	}
	r.store.mu.RUnlock()

	slices.SortFunc(all, func(a, b *entity.Item) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	return page(all, offset, limit), nil
}

func (r *itemRepository) Create(_ context.Context, item *entity.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.undo.item(r.store, item.ID)
	r.store.items[item.ID] = *item

	return nil
}

func (r *itemRepository) Update(_ context.Context, item *entity.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.items[item.ID]
	if !ok {
		return repository.ErrItemNotFound
	}
	updated := *item
	updated.OwnerID = existing.OwnerID
	r.undo.item(r.store, item.ID)
	r.store.items[item.ID] = updated

	return nil
}

func (r *itemRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[id]; !ok {
		return repository.ErrItemNotFound
	}
	r.undo.item(r.store, id)
	delete(r.store.items, id)

	return nil
}

package memory

import (
	"cmp"
	"context"
	"slices"

	"warden/internal/domain/entity"
	"warden/internal/domain/repository"

	"github.com/google/uuid"
)

type accountRepository struct {
	store *Store
	undo  *undoLog
}

func (r *accountRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	return &account, nil
}

func (r *accountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.emails[email]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	account := r.store.accounts[id]

	return &account, nil
}

func (r *accountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.emails[email]

	return ok, nil
}

func (r *accountRepository) List(_ context.Context, offset, limit int) ([]*entity.Account, error) {
	r.store.mu.RLock()
	all := make([]*entity.Account, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		all = append(all, &account)
	}
	r.store.mu.RUnlock()

	slices.SortFunc(all, func(a, b *entity.Account) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	return page(all, offset, limit), nil
}

func (r *accountRepository) Create(_ context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, taken := r.store.emails[account.Email]; taken {
		return repository.ErrAccountEmailTaken
	}
	r.undo.account(r.store, account.ID)
	r.undo.email(r.store, account.Email)
	r.store.accounts[account.ID] = *account
	r.store.emails[account.Email] = account.ID

	return nil
}

func (r *accountRepository) Update(_ context.Context, account *entity.Account) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.accounts[account.ID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	if existing.Email != account.Email {
		if _, taken := r.store.emails[account.Email]; taken {
			return repository.ErrAccountEmailTaken
		}
		r.undo.email(r.store, existing.Email)
		r.undo.email(r.store, account.Email)
		delete(r.store.emails, existing.Email)
		r.store.emails[account.Email] = account.ID
	}
	r.undo.account(r.store, account.ID)
	r.store.accounts[account.ID] = *account

	return nil
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return all[offset:end]
}

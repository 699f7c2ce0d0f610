// Package memory provides process-local repositories for storage.driver=memory
// and for tests. Data does not survive a restart.
package memory

import (
	"context"
	"sync"

	"warden/internal/domain/entity"
	"warden/internal/domain/repository"

	"github.com/google/uuid"
)

// Store holds all tables behind one lock.
type Store struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	accounts map[uuid.UUID]entity.Account
	emails   map[string]uuid.UUID
	items    map[uuid.UUID]entity.Item
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[uuid.UUID]entity.Account),
		emails:   make(map[string]uuid.UUID),
		items:    make(map[uuid.UUID]entity.Item),
	}
}

// NewAccountRepository returns the account table of the store.
func (s *Store) NewAccountRepository() repository.AccountRepository {
	return &accountRepository{store: s}
}

// NewItemRepository returns the item table of the store.
func (s *Store) NewItemRepository() repository.ItemRepository {
	return &itemRepository{store: s}
}

// NewTransactionManager returns a TransactionManager over the store.
func (s *Store) NewTransactionManager() repository.TransactionManager {
	return &transactionManager{store: s}
}

type transactionManager struct {
	store *Store
}

// Execute serializes callers, so a read-then-write inside fn cannot interleave
// with another transaction. A failing fn has its own writes undone; writes made
// outside the transaction meanwhile are kept.
func (m *transactionManager) Execute(ctx context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := m.store
	s.txMu.Lock()
	defer s.txMu.Unlock()

	undo := newUndoLog()
	if err := fn(&txFactory{store: s, undo: undo}); err != nil {
		s.mu.Lock()
		undo.restore(s)
		s.mu.Unlock()

		return err
	}

	return nil
}

// txFactory hands out repositories that journal their writes into undo.
type txFactory struct {
	store *Store
	undo  *undoLog
}

func (f *txFactory) NewAccountRepository() repository.AccountRepository {
	return &accountRepository{store: f.store, undo: f.undo}
}

func (f *txFactory) NewItemRepository() repository.ItemRepository {
	return &itemRepository{store: f.store, undo: f.undo}
}

// undoLog keeps the value each key had before the transaction first wrote it.
// A nil entry means the key was absent. Callers hold Store.mu.
type undoLog struct {
	accounts map[uuid.UUID]*entity.Account
	emails   map[string]*uuid.UUID
	items    map[uuid.UUID]*entity.Item
}

func newUndoLog() *undoLog {
	return &undoLog{
		accounts: make(map[uuid.UUID]*entity.Account),
		emails:   make(map[string]*uuid.UUID),
		items:    make(map[uuid.UUID]*entity.Item),
	}
}

func (u *undoLog) account(s *Store, id uuid.UUID) {
	if u == nil {
		return
	}
	if _, seen := u.accounts[id]; seen {
		return
	}
	if prev, ok := s.accounts[id]; ok {
		u.accounts[id] = &prev
	} else {
		u.accounts[id] = nil
	}
}

func (u *undoLog) email(s *Store, email string) {
	if u == nil {
		return
	}
	if _, seen := u.emails[email]; seen {
		return
	}
	if prev, ok := s.emails[email]; ok {
		u.emails[email] = &prev
	} else {
		u.emails[email] = nil
	}
}

func (u *undoLog) item(s *Store, id uuid.UUID) {
	if u == nil {
		return
	}
	if _, seen := u.items[id]; seen {
		return
	}
	if prev, ok := s.items[id]; ok {
		u.items[id] = &prev
	} else {
		u.items[id] = nil
	}
}

func (u *undoLog) restore(s *Store) {
	for id, prev := range u.accounts {
		if prev == nil {
			delete(s.accounts, id)
		} else {
			s.accounts[id] = *prev
		}
	}
	for email, prev := range u.emails {
		if prev == nil {
			delete(s.emails, email)
		} else {
			s.emails[email] = *prev
		}
	}
	for id, prev := range u.items {
		if prev == nil {
			delete(s.items, id)
		} else {
			s.items[id] = *prev
		}
	}
}

// Package persistence selects the storage backend named by storage.driver.
package persistence

import (
	"log/slog"

	"warden/config"
	"warden/internal/domain/repository"
	"warden/internal/infra/persistence/memory"
	"warden/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the storage backend, injected by Fx.
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// Result exposes one backend through every repository contract.
type Result struct {
	fx.Out

	TxManager repository.TransactionManager
	Accounts  repository.AccountRepository
	Items     repository.ItemRepository
	Owners    repository.OwnerLookup
}

// New opens the configured backend.
func New(params Params) (Result, error) {
	switch params.Config.Storage.Driver {
	case config.StorageDriverMemory:
		params.Logger.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		items := store.NewItemRepository()

		return Result{
			TxManager: store.NewTransactionManager(),
			Accounts:  store.NewAccountRepository(),
			Items:     items,
			Owners:    items,
		}, nil

	case config.StorageDriverPostgres, "":
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Result{}, err
		}
		items := postgres.NewItemRepository(db)

		return Result{
			TxManager: postgres.NewTransactionManager(db),
			Accounts:  postgres.NewAccountRepository(db),
			Items:     items,
			Owners:    items,
		}, nil

	default:
		return Result{}, errors.Errorf("unknown storage driver: %s", params.Config.Storage.Driver)
	}
}

// Module provides the storage FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)

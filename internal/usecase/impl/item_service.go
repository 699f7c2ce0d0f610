package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

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

// itemService implements the ItemUsecase interface.
type itemService struct {
	txManager repository.TransactionManager
	items     repository.ItemRepository
	publisher service.EventPublisher
	validator *usecase.Validator
	clock     service.Clock
	logger    *slog.Logger
}

// ItemServiceParams holds dependencies for ItemService, injected by Fx.
type ItemServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Items     repository.ItemRepository
	Publisher service.EventPublisher
	Validator *usecase.Validator
	Clock     service.Clock `optional:"true"`
	Logger    *slog.Logger
}

// NewItemService is the constructor for itemService.
func NewItemService(params ItemServiceParams) usecase.ItemUsecase {
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}

	return &itemService{
		txManager: params.TxManager,
		items:     params.Items,
		publisher: params.Publisher,
		validator: params.Validator,
		clock:     clock,
		logger:    params.Logger,
	}
}

func (srv *itemService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *itemService) List(ctx context.Context, input usecase.ListInput) ([]*entity.Item, error) {
	if err := srv.validator.Validate(&input); err != nil {
		return nil, err
	}

	items, err := srv.items.List(ctx, input.Offset, input.PageLimit())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list items")
	}

	return items, nil
}

func (srv *itemService) Get(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	item, err := srv.items.FindByID(ctx, id)
	if err != nil {
		return nil, mapItemError(err, "failed to find item")
	}

	return item, nil
}

// Create stores a new item owned by the caller, whatever the caller's role.
func (srv *itemService) Create(ctx context.Context, principal entity.Principal, input usecase.ItemInput) (*entity.Item, error) {
	input = normalizeItemInput(input)
	if err := srv.validator.ValidateItem(&input); err != nil {
		return nil, err
	}

	now := srv.clock().UTC()
	item := &entity.Item{
		ID:          uuid.New(),
		OwnerID:     principal.AccountID,
		Title:       input.Title,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := srv.items.Create(ctx, item); err != nil {
		srv.log(ctx).Error("Failed to create item", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create item")
	}

	srv.publish(ctx, principal, service.EventItemCreated, item.ID)

	return item, nil
}

// Update replaces the mutable fields. The owner is never changed.
func (srv *itemService) Update(ctx context.Context, principal entity.Principal, id uuid.UUID, input usecase.ItemInput) (*entity.Item, error) {
	input = normalizeItemInput(input)
	if err := srv.validator.ValidateItem(&input); err != nil {
		return nil, err
	}

	var updated *entity.Item
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		repo := repoFactory.NewItemRepository()

		item, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapItemError(err, "failed to find item")
		}

		item.Title = input.Title
		item.Description = input.Description
		item.UpdatedAt = srv.clock().UTC()
		if err := repo.Update(ctx, item); err != nil {
			return mapItemError(err, "failed to update item")
		}
		updated = item

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.publish(ctx, principal, service.EventItemUpdated, id)

	return updated, nil
}

// Delete removes the item permanently.
func (srv *itemService) Delete(ctx context.Context, principal entity.Principal, id uuid.UUID) error {
	if err := srv.items.Delete(ctx, id); err != nil {
		return mapItemError(err, "failed to delete item")
	}

	srv.publish(ctx, principal, service.EventItemDeleted, id)

	return nil
}

func (srv *itemService) publish(ctx context.Context, principal entity.Principal, eventType string, itemID uuid.UUID) {
	publishAudit(ctx, srv.publisher, srv.log(ctx), srv.clock, &service.AuditEvent{
		Type:       eventType,
		AccountID:  principal.AccountID.String(),
		ResourceID: itemID.String(),
	})
}

func normalizeItemInput(input usecase.ItemInput) usecase.ItemInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	return input
}

func mapItemError(err error, message string) error {
	if errors.Is(err, repository.ErrItemNotFound) {
		return domainerrors.ErrNotFound
	}

	return errors.Wrap(err, message)
}

package postgres

import (
	"context"

	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/domain/repository"
	"warden/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates an ItemRepository over db, which may be a transaction.
func NewItemRepository(db *gorm.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

// FindOwnerID reads only the owner column.
func (r *itemRepository) FindOwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var row model.ItemModel
	err := r.db.WithContext(ctx).Select("owner_id").Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, repository.ErrItemNotFound
		}

		return uuid.Nil, domainerrors.NewDatabaseExecuteError(err, "find item owner")
	}

	return row.OwnerID, nil
}

func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	var row model.ItemModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrItemNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "find item")
	}

	return toItemDomain(&row), nil
}

func (r *itemRepository) List(ctx context.Context, offset, limit int) ([]*entity.Item, error) {
	var rows []model.ItemModel
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "list items")
	}

	items := make([]*entity.Item, 0, len(rows))
	for i := range rows {
		items = append(items, toItemDomain(&rows[i]))
	}

	return items, nil
}

func (r *itemRepository) Create(ctx context.Context, item *entity.Item) error {
	row := &model.ItemModel{
		ID:          item.ID,
		OwnerID:     item.OwnerID,
		Title:       item.Title,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrAccountNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "create item")
	}

	return nil
}

// Update writes the mutable columns only; owner_id is never part of the statement.
func (r *itemRepository) Update(ctx context.Context, item *entity.Item) error {
	result := r.db.WithContext(ctx).
		Model(&model.ItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"title":       item.Title,
			"description": item.Description,
			"updated_at":  item.UpdatedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "update item")
	}
	if result.RowsAffected == 0 {
		return repository.ErrItemNotFound
	}

	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ItemModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "delete item")
	}
	if result.RowsAffected == 0 {
		return repository.ErrItemNotFound
	}

	return nil
}

func toItemDomain(row *model.ItemModel) *entity.Item {
	return &entity.Item{
		ID:          row.ID,
		OwnerID:     row.OwnerID,
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

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

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an AccountRepository over db, which may be a transaction.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *accountRepository) findOne(ctx context.Context, query string, arg any) (*entity.Account, error) {
	var row model.AccountModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "find account")
	}

	return toAccountDomain(&row), nil
}

func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AccountModel{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, domainerrors.NewDatabaseExecuteError(err, "count accounts by email")
	}

	return count > 0, nil
}

func (r *accountRepository) List(ctx context.Context, offset, limit int) ([]*entity.Account, error) {
	var rows []model.AccountModel
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "list accounts")
	}

	accounts := make([]*entity.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, toAccountDomain(&rows[i]))
	}

	return accounts, nil
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	row := fromAccountDomain(account)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrAccountEmailTaken
		}

		return domainerrors.NewDatabaseExecuteError(err, "create account")
	}

	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	result := r.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", account.ID).
		Updates(map[string]any{
			"email":         account.Email,
			"display_name":  account.DisplayName,
			"password_hash": account.PasswordHash,
			"role":          account.Role.String(),
			"updated_at":    account.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrAccountEmailTaken
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "update account")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

func toAccountDomain(row *model.AccountModel) *entity.Account {
	return &entity.Account{
		ID:           row.ID,
		Email:        row.Email,
		DisplayName:  row.DisplayName,
		PasswordHash: row.PasswordHash,
		Role:         entity.Role(row.Role),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func fromAccountDomain(account *entity.Account) *model.AccountModel {
	return &model.AccountModel{
		ID:           account.ID,
		Email:        account.Email,
		DisplayName:  account.DisplayName,
		PasswordHash: account.PasswordHash,
		Role:         account.Role.String(),
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

// Package impl contains the implementation of the application's business logic.
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

// dummyPassword is hashed once at startup so lookups of unknown emails still pay for one bcrypt comparison.
const dummyPassword = "warden-timing-equalizer"

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager repository.TransactionManager
	accounts  repository.AccountRepository
	hasher    service.PasswordHasher
	tokens    service.TokenIssuer
	publisher service.EventPublisher
	metrics   service.MetricsRecorder
	validator *usecase.Validator
	clock     service.Clock
	dummyHash string
	logger    *slog.Logger
}

// AccountServiceParams holds dependencies for AccountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Accounts  repository.AccountRepository
	Hasher    service.PasswordHasher
	Tokens    service.TokenIssuer
	Publisher service.EventPublisher
	Metrics   service.MetricsRecorder
	Validator *usecase.Validator
	Clock     service.Clock `optional:"true"`
	Logger    *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) (usecase.AccountUsecase, error) {
	dummyHash, err := params.Hasher.Hash(dummyPassword)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare dummy password hash")
	}

	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}

	return &accountService{
		txManager: params.TxManager,
		accounts:  params.Accounts,
		hasher:    params.Hasher,
		tokens:    params.Tokens,
		publisher: params.Publisher,
		metrics:   params.Metrics,
		validator: params.Validator,
		clock:     clock,
		dummyHash: dummyHash,
		logger:    params.Logger,
	}, nil
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a USER account. The password is hashed first; the email check and insert share one transaction.
func (srv *accountService) Register(ctx context.Context, input usecase.RegisterInput) (*entity.Account, error) {
	input.Email = entity.NormalizeEmail(input.Email)
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	if err := srv.validator.ValidateRegister(&input); err != nil {
		srv.metrics.RecordRegistration(false)

		return nil, err
	}

	account, err := srv.createAccount(ctx, input.Email, input.DisplayName, input.Password, entity.RoleUser)
	if err != nil {
		srv.metrics.RecordRegistration(false)
		if errors.Is(err, domainerrors.ErrDuplicateEmail) {
			srv.log(ctx).Info("Registration rejected, email already registered")

			return nil, err
		}
		srv.log(ctx).Error("Failed to register account", slog.Any("error", err))

		return nil, err
	}

	srv.metrics.RecordRegistration(true)
	srv.publish(ctx, &service.AuditEvent{
		Type:       service.EventAccountRegistered,
		AccountID:  account.ID.String(),
		ResourceID: account.ID.String(),
	})
	srv.log(ctx).Info("Account registered", slog.String("account_id", account.ID.String()))

	return account, nil
}

func (srv *accountService) createAccount(ctx context.Context, email, displayName, password string, role entity.Role) (*entity.Account, error) {
	hash, err := srv.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	var created *entity.Account

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		repo := repoFactory.NewAccountRepository()

		exists, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			return errors.Wrap(err, "failed to check email availability")
		}
		if exists {
			return domainerrors.ErrDuplicateEmail
		}

		now := srv.clock().UTC()
		account := &entity.Account{
			ID:           uuid.New(),
			Email:        email,
			DisplayName:  displayName,
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repo.Create(ctx, account); err != nil {
			if errors.Is(err, repository.ErrAccountEmailTaken) {
				return domainerrors.ErrDuplicateEmail
			}

			return errors.Wrap(err, "failed to create account")
		}
		created = account

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// FindByEmail looks an account up case-insensitively.
func (srv *accountService) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	account, err := srv.accounts.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by email")
	}

	return account, nil
}

// Authenticate verifies a password. Unknown email and wrong password return the
// same error value after the same amount of hashing work.
func (srv *accountService) Authenticate(ctx context.Context, email, password string) (*entity.Account, error) {
	account, err := srv.accounts.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errors.Wrap(err, "failed to find account by email")
		}
		_, _ = srv.hasher.Verify(password, srv.dummyHash)

		return nil, domainerrors.ErrInvalidCredentials
	}

	ok, err := srv.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		srv.log(ctx).Error("Stored password hash is unusable", slog.String("account_id", account.ID.String()), slog.Any("error", err))

		return nil, domainerrors.ErrInvalidCredentials
	}
	if !ok {
		return nil, domainerrors.ErrInvalidCredentials
	}

	return account, nil
}

// Login authenticates and issues an access token.
func (srv *accountService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	account, err := srv.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		srv.metrics.RecordLogin(false)
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			srv.publish(ctx, &service.AuditEvent{Type: service.EventLoginFailed})
		}

		return nil, err
	}

	issued, err := srv.tokens.Issue(account.Principal())
	if err != nil {
		srv.metrics.RecordLogin(false)
		srv.log(ctx).Error("Failed to issue token", slog.String("account_id", account.ID.String()), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue token")
	}

	srv.metrics.RecordLogin(true)
	srv.publish(ctx, &service.AuditEvent{
		Type:       service.EventLoginSucceeded,
		AccountID:  account.ID.String(),
		ResourceID: account.ID.String(),
	})

	return &usecase.LoginOutput{
		Token:     issued.Token,
		TokenType: usecase.TokenTypeBearer,
		ExpiresAt: issued.ExpiresAt,
		Account:   account,
	}, nil
}

// GetProfile returns the account with the given id.
func (srv *accountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Account, error) {
	account, err := srv.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrNotFound
		}

		return nil, errors.Wrap(err, "failed to find account")
	}

	return account, nil
}

// UpdateProfile changes the caller's own display name.
func (srv *accountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, input usecase.UpdateProfileInput) (*entity.Account, error) {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if err := srv.validator.ValidateProfile(&input); err != nil {
		return nil, err
	}

	var updated *entity.Account
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		repo := repoFactory.NewAccountRepository()

		account, err := repo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrNotFound
			}

			return errors.Wrap(err, "failed to find account")
		}

		account.DisplayName = input.DisplayName
		account.UpdatedAt = srv.clock().UTC()
		if err := repo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to update account")
		}
		updated = account

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.publish(ctx, &service.AuditEvent{
		Type:       service.EventAccountUpdated,
		AccountID:  accountID.String(),
		ResourceID: accountID.String(),
	})

	return updated, nil
}

// ListAccounts pages through all accounts.
func (srv *accountService) ListAccounts(ctx context.Context, input usecase.ListInput) ([]*entity.Account, error) {
	if err := srv.validator.Validate(&input); err != nil {
		return nil, err
	}

	accounts, err := srv.accounts.List(ctx, input.Offset, input.PageLimit())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}

	return accounts, nil
}

// ChangeRole sets the role of another account. Tokens already issued keep their old role until they expire.
func (srv *accountService) ChangeRole(ctx context.Context, actor entity.Principal, accountID uuid.UUID, input usecase.ChangeRoleInput) (*entity.Account, error) {
	input.Role = strings.ToUpper(strings.TrimSpace(input.Role))
	if err := srv.validator.Validate(&input); err != nil {
		return nil, err
	}
	role := entity.Role(input.Role)

	var (
		updated  *entity.Account
		previous entity.Role
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		repo := repoFactory.NewAccountRepository()

		account, err := repo.FindByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return domainerrors.ErrNotFound
			}

			return errors.Wrap(err, "failed to find account")
		}

		previous = account.Role
		if previous == role {
			updated = account

			return nil
		}

		account.Role = role
		account.UpdatedAt = srv.clock().UTC()
		if err := repo.Update(ctx, account); err != nil {
			return errors.Wrap(err, "failed to update account role")
		}
		updated = account

		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != role {
		srv.log(ctx).Info("Account role changed",
			slog.String("actor_id", actor.AccountID.String()),
			slog.String("account_id", accountID.String()),
			slog.String("from", previous.String()),
			slog.String("to", role.String()))
		srv.publish(ctx, &service.AuditEvent{
			Type:       service.EventAccountRoleChanged,
			AccountID:  actor.AccountID.String(),
			ResourceID: accountID.String(),
			Attributes: map[string]string{"from": previous.String(), "to": role.String()},
		})
	}

	return updated, nil
}

// EnsureAdmin creates the bootstrap administrator, or promotes the account if
// the email is already registered. Running it again is a no-op.
func (srv *accountService) EnsureAdmin(ctx context.Context, input usecase.BootstrapAdminInput) (*entity.Account, error) {
	email := entity.NormalizeEmail(input.Email)
	displayName := strings.TrimSpace(input.DisplayName)

	existing, err := srv.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == entity.RoleAdmin {
			return existing, nil
		}

		return srv.ChangeRole(ctx, existing.Principal(), existing.ID, usecase.ChangeRoleInput{Role: entity.RoleAdmin.String()})
	case !errors.Is(err, repository.ErrAccountNotFound):
		return nil, errors.Wrap(err, "failed to look up bootstrap admin")
	}

	register := usecase.RegisterInput{Email: email, DisplayName: displayName, Password: input.Password}
	if err := srv.validator.ValidateRegister(&register); err != nil {
		return nil, err
	}

	account, err := srv.createAccount(ctx, email, displayName, input.Password, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	srv.log(ctx).Info("Bootstrap admin created", slog.String("account_id", account.ID.String()))
	srv.publish(ctx, &service.AuditEvent{
		Type:       service.EventAccountRegistered,
		ResourceID: account.ID.String(),
		Attributes: map[string]string{"role": entity.RoleAdmin.String()},
	})

	return account, nil
}

// publish sends an audit event without letting a broker failure fail the request.
func (srv *accountService) publish(ctx context.Context, event *service.AuditEvent) {
	publishAudit(ctx, srv.publisher, srv.log(ctx), srv.clock, event)
}

func publishAudit(ctx context.Context, publisher service.EventPublisher, logger *slog.Logger, clock service.Clock, event *service.AuditEvent) {
	event.RequestID = deliverycontext.RequestIDFrom(ctx)
	event.OccurredAt = clock().UTC()

	if err := publisher.PublishAuditEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish audit event", slog.String("type", event.Type), slog.Any("error", err))
	}
}

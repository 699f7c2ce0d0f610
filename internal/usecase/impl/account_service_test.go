package impl

import (
	"context"
	"testing"
	"time"

	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/domain/repository"
	"warden/internal/domain/service"
	"warden/internal/infra/auth"
	"warden/internal/infra/persistence/memory"
	mockSvc "warden/internal/mocks/service"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_access_secret_key_very_long_for_testing"

type accountFixtures struct {
	service   usecase.AccountUsecase
	store     *memory.Store
	tokens    service.TokenService
	publisher *capturePublisher
	metrics   *mockSvc.RecordingMetrics
	now       time.Time
}

func createTestAccountService(t *testing.T) accountFixtures {
	t.Helper()

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := memory.NewStore()
	tokens, err := auth.NewTokenService([]byte(testSecret), time.Hour, "warden", clock)
	require.NoError(t, err)
	publisher := &capturePublisher{}
	metrics := &mockSvc.RecordingMetrics{}

	svc, err := NewAccountService(AccountServiceParams{
		TxManager: store.NewTransactionManager(),
		Accounts:  store.NewAccountRepository(),
		Hasher:    auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		Tokens:    tokens,
		Publisher: publisher,
		Metrics:   metrics,
		Validator: newTestValidator(),
		Clock:     clock,
		Logger:    newDiscardLogger(),
	})
	require.NoError(t, err)

	return accountFixtures{service: svc, store: store, tokens: tokens, publisher: publisher, metrics: metrics, now: now}
}

func registerAlice(t *testing.T, fx accountFixtures) *entity.Account {
	t.Helper()

	account, err := fx.service.Register(context.Background(), usecase.RegisterInput{
		Email:       "Alice@Example.com ",
		DisplayName: "Alice",
		Password:    "secret1",
	})
	require.NoError(t, err)

	return account
}

func TestAccountService_Register(t *testing.T) {
	fx := createTestAccountService(t)

	account := registerAlice(t, fx)

	assert.NotEqual(t, uuid.Nil, account.ID)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, entity.RoleUser, account.Role)
	assert.Equal(t, fx.now, account.CreatedAt)
	assert.NotEqual(t, "secret1", account.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("secret1")))
	assert.Equal(t, []string{service.EventAccountRegistered}, fx.publisher.types())
}

func TestAccountService_Register_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	fx := createTestAccountService(t)
	registerAlice(t, fx)

	_, err := fx.service.Register(context.Background(), usecase.RegisterInput{
		Email:       "ALICE@example.COM",
		DisplayName: "Impostor",
		Password:    "another1",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateEmail))

	accounts, err := fx.service.ListAccounts(context.Background(), usecase.ListInput{})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Alice", accounts[0].DisplayName)
}

// txCheckingHasher reports whether a transaction could start while Hash ran.
type txCheckingHasher struct {
	service.PasswordHasher
	tx       repository.TransactionManager
	txFreeCh chan bool
}

func (h *txCheckingHasher) Hash(password string) (string, error) {
	done := make(chan struct{})
	go func() {
		_ = h.tx.Execute(context.Background(), func(repository.RepositoryFactory) error { return nil })
		close(done)
	}()
	select {
	case <-done:
		h.txFreeCh <- true
	case <-time.After(time.Second):
		h.txFreeCh <- false
	}

	return h.PasswordHasher.Hash(password)
}

func TestAccountService_Register_HashesOutsideTransaction(t *testing.T) {
	store := memory.NewStore()
	txManager := store.NewTransactionManager()
	hasher := &txCheckingHasher{
		PasswordHasher: auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		tx:             txManager,
		txFreeCh:       make(chan bool, 1),
	}
	tokens, err := auth.NewTokenService([]byte(testSecret), time.Hour, "warden", nil)
	require.NoError(t, err)

	svc, err := NewAccountService(AccountServiceParams{
		TxManager: txManager,
		Accounts:  store.NewAccountRepository(),
		Hasher:    hasher,
		Tokens:    tokens,
		Publisher: &capturePublisher{},
		Metrics:   &mockSvc.RecordingMetrics{},
		Validator: newTestValidator(),
		Logger:    newDiscardLogger(),
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), usecase.RegisterInput{
		Email:       "carol@example.com",
		DisplayName: "Carol",
		Password:    "secret1",
	})
	require.NoError(t, err)
	assert.True(t, <-hasher.txFreeCh)
}

func TestAccountService_Register_Validation(t *testing.T) {
	fx := createTestAccountService(t)

	_, err := fx.service.Register(context.Background(), usecase.RegisterInput{
		Email:       "bob@example.com",
		DisplayName: "B",
		Password:    "123",
	})

	var verr *domainerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)

	exists, err := fx.store.NewAccountRepository().ExistsByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAccountService_Register_PublishFailureDoesNotFailRequest(t *testing.T) {
	fx := createTestAccountService(t)
	fx.publisher.err = errors.New("broker down")

	account := registerAlice(t, fx)
	assert.NotNil(t, account)
}

func TestAccountService_FindByEmail(t *testing.T) {
	fx := createTestAccountService(t)
	registered := registerAlice(t, fx)

	found, err := fx.service.FindByEmail(context.Background(), "  ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, found.ID)

	_, err = fx.service.FindByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestAccountService_Authenticate_UniformFailure(t *testing.T) {
	fx := createTestAccountService(t)
	registerAlice(t, fx)
	ctx := context.Background()

	account, err := fx.service.Authenticate(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Email)

	_, unknownErr := fx.service.Authenticate(ctx, "ghost@example.com", "secret1")
	_, wrongErr := fx.service.Authenticate(ctx, "alice@example.com", "wrong-password")

	assert.Same(t, domainerrors.ErrInvalidCredentials, unknownErr)
	assert.Same(t, domainerrors.ErrInvalidCredentials, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestAccountService_Authenticate_UnknownEmailStillHashes(t *testing.T) {
	hasher := mockSvc.NewMockPasswordHasher(t)
	hasher.On("Hash", dummyPassword).Return("$2a$04$dummy", nil).Once()
	hasher.On("Verify", "any-password", "$2a$04$dummy").Return(false, nil).Once()

	store := memory.NewStore()
	svc, err := NewAccountService(AccountServiceParams{
		TxManager: store.NewTransactionManager(),
		Accounts:  store.NewAccountRepository(),
		Hasher:    hasher,
		Publisher: &capturePublisher{},
		Metrics:   service.NopMetrics{},
		Validator: newTestValidator(),
		Logger:    newDiscardLogger(),
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "ghost@example.com", "any-password")
	assert.Same(t, domainerrors.ErrInvalidCredentials, err)
}

func TestAccountService_Authenticate_MalformedStoredHash(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()

	broken := &entity.Account{
		ID:           uuid.New(),
		Email:        "broken@example.com",
		DisplayName:  "Broken",
		PasswordHash: "not-a-bcrypt-hash",
		Role:         entity.RoleUser,
	}
	require.NoError(t, fx.store.NewAccountRepository().Create(ctx, broken))

	_, err := fx.service.Authenticate(ctx, "broken@example.com", "whatever")
	assert.Same(t, domainerrors.ErrInvalidCredentials, err)
}

func TestAccountService_Login(t *testing.T) {
	fx := createTestAccountService(t)
	registered := registerAlice(t, fx)

	out, err := fx.service.Login(context.Background(), usecase.LoginInput{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, usecase.TokenTypeBearer, out.TokenType)
	assert.Equal(t, fx.now.Add(time.Hour), out.ExpiresAt)
	assert.Equal(t, registered.ID, out.Account.ID)

	claims, err := fx.tokens.Verify(out.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.AccountID)
	assert.Equal(t, entity.RoleUser, claims.Role)
	assert.Equal(t, 1, fx.metrics.Logins(true))
}

func TestAccountService_Login_Failure(t *testing.T) {
	fx := createTestAccountService(t)
	registerAlice(t, fx)

	out, err := fx.service.Login(context.Background(), usecase.LoginInput{Email: "alice@example.com", Password: "nope-nope"})

	assert.Nil(t, out)
	assert.Same(t, domainerrors.ErrInvalidCredentials, err)
	assert.Equal(t, 1, fx.metrics.Logins(false))
	assert.Contains(t, fx.publisher.types(), service.EventLoginFailed)
}

func TestAccountService_Profile(t *testing.T) {
	fx := createTestAccountService(t)
	registered := registerAlice(t, fx)
	ctx := context.Background()

	profile, err := fx.service.GetProfile(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.DisplayName)

	updated, err := fx.service.UpdateProfile(ctx, registered.ID, usecase.UpdateProfileInput{DisplayName: "  Alice B.  "})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", updated.DisplayName)

	_, err = fx.service.UpdateProfile(ctx, registered.ID, usecase.UpdateProfileInput{DisplayName: "A"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	_, err = fx.service.GetProfile(ctx, uuid.New())
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))
}

func TestAccountService_ChangeRoleAndList(t *testing.T) {
	fx := createTestAccountService(t)
	registered := registerAlice(t, fx)
	ctx := context.Background()
	actor := entity.Principal{AccountID: uuid.New(), Role: entity.RoleAdmin}

	promoted, err := fx.service.ChangeRole(ctx, actor, registered.ID, usecase.ChangeRoleInput{Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, promoted.Role)
	assert.Contains(t, fx.publisher.types(), service.EventAccountRoleChanged)

	_, err = fx.service.ChangeRole(ctx, actor, registered.ID, usecase.ChangeRoleInput{Role: "ROOT"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	_, err = fx.service.ChangeRole(ctx, actor, uuid.New(), usecase.ChangeRoleInput{Role: "USER"})
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound))

	accounts, err := fx.service.ListAccounts(ctx, usecase.ListInput{})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, entity.RoleAdmin, accounts[0].Role)
}

func TestAccountService_EnsureAdmin(t *testing.T) {
	fx := createTestAccountService(t)
	ctx := context.Background()
	input := usecase.BootstrapAdminInput{Email: "root@example.com", DisplayName: "Root", Password: "rootpass"}

	created, err := fx.service.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, created.Role)

	again, err := fx.service.EnsureAdmin(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	// An existing USER with the bootstrap email is promoted in place.
	user := registerAlice(t, fx)
	promoted, err := fx.service.EnsureAdmin(ctx, usecase.BootstrapAdminInput{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, promoted.ID)
	assert.Equal(t, entity.RoleAdmin, promoted.Role)
}

func TestAccountService_Register_RepositoryFailure(t *testing.T) {
	fx := createTestAccountService(t)
	boom := errors.New("disk full")

	svc, err := NewAccountService(AccountServiceParams{
		TxManager: failingTxManager{err: boom},
		Accounts:  fx.store.NewAccountRepository(),
		Hasher:    auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		Tokens:    fx.tokens,
		Publisher: fx.publisher,
		Metrics:   fx.metrics,
		Validator: newTestValidator(),
		Logger:    newDiscardLogger(),
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), usecase.RegisterInput{Email: "c@example.com", DisplayName: "Cee", Password: "secret1"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, fx.publisher.types())
}

type failingTxManager struct {
	err error
}

func (m failingTxManager) Execute(context.Context, func(repository.RepositoryFactory) error) error {
	return m.err
}


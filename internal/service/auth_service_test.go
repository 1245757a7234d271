package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"llm_gateway/internal/model"
	"llm_gateway/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newFileBackedAuth(t *testing.T) AuthService {
	t.Helper()
	repo, err := repository.NewFileAccountRepository(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return NewAuthService(repo)
}

func TestNormalizePhone(t *testing.T) {
	valid := map[string]string{
		"+1 (555) 000-1111": "+15550001111",
		" 8 900 123 45 67 ": "89001234567",
		"+44.7700.900123":   "+447700900123",
		"1234567":           "1234567",
	}
	for in, want := range valid {
		got, err := NormalizePhone(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "   ", "abc", "+", "123", "++15550001111", "1234567890123456", "555-CALL-NOW"} {
		_, err := NormalizePhone(in)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr, "input %q", in)
	}
}

func TestNormalizePhone_EmptyMessage(t *testing.T) {
	_, err := NormalizePhone("  ")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Please enter a phone number.", vErr.Message)
}

func TestRegisterThenLogin(t *testing.T) {
	auth := newFileBackedAuth(t)
	ctx := context.Background()

	created, err := auth.Register(ctx, "+1 555 000 1111")
	require.NoError(t, err)
	assert.Equal(t, "+15550001111", created.Phone)
	assert.False(t, created.Subscribed)

	found, err := auth.Login(ctx, "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, created.Phone, found.Phone)
}

func TestRegister_Duplicate(t *testing.T) {
	auth := newFileBackedAuth(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "+15550001111")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "+1-555-000-1111")
	assert.ErrorIs(t, err, repository.ErrAccountExists)
}

func TestLogin_UnknownPhone(t *testing.T) {
	auth := newFileBackedAuth(t)

	_, err := auth.Login(context.Background(), "+15550001111")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLogin_InvalidPhoneSkipsStore(t *testing.T) {
	repo := new(mockAccountRepo)
	auth := NewAuthService(repo)

	_, err := auth.Login(context.Background(), "not a phone")
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	repo.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
}

func TestLogin_StoreFailure(t *testing.T) {
	repo := new(mockAccountRepo)
	repo.On("FindByPhone", mock.Anything, "+15550001111").Return(nil, errors.New("disk error"))
	auth := NewAuthService(repo)

	_, err := auth.Login(context.Background(), "+15550001111")
	var pErr *PersistenceError
	assert.ErrorAs(t, err, &pErr)
}

func TestRegister_CreateFailure(t *testing.T) {
	repo := new(mockAccountRepo)
	repo.On("FindByPhone", mock.Anything, "+15550001111").Return(nil, nil)
	repo.On("Create", mock.Anything, "+15550001111").Return(nil, errors.New("read-only filesystem"))
	auth := NewAuthService(repo)

	_, err := auth.Register(context.Background(), "+15550001111")
	var pErr *PersistenceError
	assert.ErrorAs(t, err, &pErr)
	repo.AssertExpectations(t)
}

func TestRegister_CreateRaceConflict(t *testing.T) {
	repo := new(mockAccountRepo)
	repo.On("FindByPhone", mock.Anything, "+15550001111").Return(nil, nil)
	repo.On("Create", mock.Anything, "+15550001111").Return(nil, repository.ErrAccountExists)
	auth := NewAuthService(repo)

	_, err := auth.Register(context.Background(), "+15550001111")
	assert.ErrorIs(t, err, repository.ErrAccountExists)
}

func TestToggleSubscription_TwiceRestores(t *testing.T) {
	auth := newFileBackedAuth(t)
	ctx := context.Background()

	created, err := auth.Register(ctx, "+15550001111")
	require.NoError(t, err)

	first, err := auth.ToggleSubscription(ctx, created.Phone)
	require.NoError(t, err)
	assert.True(t, first.Subscribed)

	second, err := auth.ToggleSubscription(ctx, created.Phone)
	require.NoError(t, err)
	assert.Equal(t, created.Subscribed, second.Subscribed)

	resolved, err := auth.Resolve(ctx, created.Phone)
	require.NoError(t, err)
	assert.Equal(t, created.Subscribed, resolved.Subscribed)
}

func TestToggleSubscription_VanishedAccount(t *testing.T) {
	auth := newFileBackedAuth(t)

	_, err := auth.ToggleSubscription(context.Background(), "+15550001111")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestResolve(t *testing.T) {
	auth := newFileBackedAuth(t)
	ctx := context.Background()

	account, err := auth.Resolve(ctx, "")
	assert.NoError(t, err)
	assert.Nil(t, account)

	account, err = auth.Resolve(ctx, "+15550001111")
	assert.NoError(t, err)
	assert.Nil(t, account)

	_, err = auth.Register(ctx, "+15550001111")
	require.NoError(t, err)
	account, err = auth.Resolve(ctx, "+15550001111")
	require.NoError(t, err)
	assert.Equal(t, &model.Account{Phone: "+15550001111", CreatedAt: account.CreatedAt}, account)
}

func TestLogin_LegacyStoredPhone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	legacy := `[{"phone":"+7 900 123-45-67","subscribed":true,"createdAt":"2024-03-01T10:00:00Z"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))
	repo, err := repository.NewFileAccountRepository(path)
	require.NoError(t, err)
	auth := NewAuthService(repo)
	ctx := context.Background()

	account, err := auth.Login(ctx, "+7 900 123-45-67")
	require.NoError(t, err)
	assert.Equal(t, "+79001234567", account.Phone)
	assert.True(t, account.Subscribed)

	_, err = auth.Register(ctx, "+79001234567")
	assert.ErrorIs(t, err, repository.ErrAccountExists)
}

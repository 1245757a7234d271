package service

import (
	"context"

	"llm_gateway/internal/model"
	"llm_gateway/internal/policy"

	"github.com/stretchr/testify/mock"
)

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) FindByPhone(ctx context.Context, phone string) (*model.Account, error) {
	args := m.Called(ctx, phone)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *mockAccountRepo) Create(ctx context.Context, phone string) (*model.Account, error) {
	args := m.Called(ctx, phone)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

func (m *mockAccountRepo) Update(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockAccountRepo) Modify(ctx context.Context, phone string, fn func(*model.Account)) (*model.Account, error) {
	args := m.Called(ctx, phone, fn)
	account, _ := args.Get(0).(*model.Account)
	return account, args.Error(1)
}

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Authorize(account *model.Account, modelID string) policy.Decision {
	return m.Called(account, modelID).Get(0).(policy.Decision)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt, modelID string) (string, error) {
	args := m.Called(ctx, prompt, modelID)
	return args.String(0), args.Error(1)
}

package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"llm_gateway/internal/model"
	"llm_gateway/internal/repository"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// NormalizePhone trims the input, drops common separators and checks the
// result looks like a phone number.
func NormalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", &ValidationError{Field: "phone", Message: "Please enter a phone number."}
	}
	phone := model.CanonicalPhone(raw)
	if !phonePattern.MatchString(phone) {
		return "", &ValidationError{Field: "phone", Message: "Please enter a valid phone number."}
	}
	return phone, nil
}

// AuthService provides account lifecycle operations
type AuthService interface {
	Login(ctx context.Context, rawPhone string) (*model.Account, error)
	Register(ctx context.Context, rawPhone string) (*model.Account, error)
	Resolve(ctx context.Context, phone string) (*model.Account, error)
	ToggleSubscription(ctx context.Context, phone string) (*model.Account, error)
}

type authService struct {
	accountRepo repository.AccountRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(accountRepo repository.AccountRepository) AuthService {
	return &authService{accountRepo: accountRepo}
}

// Login resolves an existing account. Unknown phones yield ErrAccountNotFound.
func (s *authService) Login(ctx context.Context, rawPhone string) (*model.Account, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, &PersistenceError{Op: "find account", Err: err}
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Register creates a new unsubscribed account
func (s *authService) Register(ctx context.Context, rawPhone string) (*model.Account, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	existing, err := s.accountRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, &PersistenceError{Op: "find account", Err: err}
	}
	if existing != nil {
		return nil, repository.ErrAccountExists
	}

	account, err := s.accountRepo.Create(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "create account", Err: err}
	}
	return account, nil
}

// Resolve returns the account for an already-authenticated phone, or nil
// when the record no longer exists.
func (s *authService) Resolve(ctx context.Context, phone string) (*model.Account, error) {
	if phone == "" {
		return nil, nil
	}
	account, err := s.accountRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, &PersistenceError{Op: "find account", Err: err}
	}
	return account, nil
}

// ToggleSubscription flips the subscribed flag atomically
func (s *authService) ToggleSubscription(ctx context.Context, phone string) (*model.Account, error) {
	account, err := s.accountRepo.Modify(ctx, phone, func(a *model.Account) {
		a.Subscribed = !a.Subscribed
	})
	if err != nil {
		return nil, &PersistenceError{Op: "update subscription", Err: err}
	}
	if account == nil {
		return nil, ErrNotAuthenticated
	}
	return account, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"llm_gateway/internal/model"
)

var ErrAccountExists = errors.New("account with this phone number already exists")

// AccountRepository defines operations for account data
type AccountRepository interface {
	FindByPhone(ctx context.Context, phone string) (*model.Account, error)
	Create(ctx context.Context, phone string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error
	Modify(ctx context.Context, phone string, fn func(*model.Account)) (*model.Account, error)
}

// fileAccountRepository keeps the whole collection in memory and rewrites
// the JSON file on every change. All access goes through mu, so concurrent
// writers cannot clobber each other.
type fileAccountRepository struct {
	mu       sync.RWMutex
	path     string
	accounts []model.Account
	index    map[string]int
	now      func() time.Time
}

// NewFileAccountRepository opens (or initialises) the collection stored at path.
// The parent directory is created if needed; a missing file is an empty collection.
func NewFileAccountRepository(path string) (AccountRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	r := &fileAccountRepository{
		path:  path,
		index: make(map[string]int),
		now:   func() time.Time { return time.Now().UTC() },
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *fileAccountRepository) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read accounts file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var accounts []model.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return fmt.Errorf("failed to decode accounts file %s: %w", r.path, err)
	}
	// Older files may hold phones as typed ("+7 900 123-45-67"). Records
	// are keyed by their canonical form; the first record per key wins.
	for _, a := range accounts {
		a.Phone = model.CanonicalPhone(a.Phone)
		if _, dup := r.index[a.Phone]; dup {
			continue
		}
		r.index[a.Phone] = len(r.accounts)
		r.accounts = append(r.accounts, a)
	}
	return nil
}

// persist writes the full collection through a temp file and rename.
// Callers must hold the write lock.
func (r *fileAccountRepository) persist(accounts []model.Account) error {
	if accounts == nil {
		accounts = []model.Account{}
	}
	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp accounts file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write accounts: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp accounts file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace accounts file: %w", err)
	}
	return nil
}

// FindByPhone returns nil, nil when no account matches.
func (r *fileAccountRepository) FindByPhone(ctx context.Context, phone string) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[model.CanonicalPhone(phone)]
	if !ok {
		return nil, nil
	}
	return r.accounts[i].Clone(), nil
}

// Create inserts a new unsubscribed account
func (r *fileAccountRepository) Create(ctx context.Context, phone string) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	phone = model.CanonicalPhone(phone)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[phone]; ok {
		return nil, ErrAccountExists
	}

	account := model.Account{
		Phone:      phone,
		Subscribed: false,
		CreatedAt:  r.now(),
	}
	next := append(r.accounts[:len(r.accounts):len(r.accounts)], account)
	if err := r.persist(next); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	r.accounts = next
	r.index[phone] = len(next) - 1
	return account.Clone(), nil
}

// Update replaces the stored record for account.Phone. Unknown phones are ignored.
func (r *fileAccountRepository) Update(ctx context.Context, account *model.Account) error {
	if account == nil {
		return nil
	}
	_, err := r.Modify(ctx, account.Phone, func(stored *model.Account) {
		stored.Subscribed = account.Subscribed
	})
	return err
}

// Modify applies fn to the stored record under the write lock and persists
// the result. It returns nil, nil when the phone is unknown. Phone and
// CreatedAt are immutable and restored if fn changes them.
func (r *fileAccountRepository) Modify(ctx context.Context, phone string, fn func(*model.Account)) (*model.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[model.CanonicalPhone(phone)]
	if !ok {
		return nil, nil
	}

	updated := r.accounts[i]
	fn(&updated)
	updated.Phone = r.accounts[i].Phone
	updated.CreatedAt = r.accounts[i].CreatedAt

	next := make([]model.Account, len(r.accounts))
	copy(next, r.accounts)
	next[i] = updated
	if err := r.persist(next); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	r.accounts = next
	return updated.Clone(), nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"account-service/internal/domain/account"
	apperrors "account-service/pkg/errors"

	"github.com/google/uuid"
)

// MemoryAccountRepository keeps accounts in process memory. It backs local
// runs without postgres and the handler/service tests. Uniqueness is checked
// under the same lock as the insert.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]account.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[uuid.UUID]account.Account)}
}

func (r *MemoryAccountRepository) Create(_ context.Context, a *account.Account) error {
	const op = "repository.MemoryAccount.Create"

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Username == a.Username || existing.Email == a.Email {
			return fmt.Errorf("%s: %w", op, apperrors.ErrAlreadyExists)
		}
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	r.accounts[a.ID] = *a
	return nil
}

func (r *MemoryAccountRepository) GetAccountByID(_ context.Context, id uuid.UUID) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return account.Account{}, fmt.Errorf("repository.MemoryAccount.GetAccountByID: %w", apperrors.ErrNotFound)
	}
	return a, nil
}

func (r *MemoryAccountRepository) FindProfileByID(ctx context.Context, id uuid.UUID) (account.Profile, error) {
	a, err := r.GetAccountByID(ctx, id)
	if err != nil {
		return account.Profile{}, err
	}
	return a.Profile(), nil
}

func (r *MemoryAccountRepository) FindByUsernameOrEmail(_ context.Context, username, email string) (account.Account, error) {
	const op = "repository.MemoryAccount.FindByUsernameOrEmail"

	if username == "" && email == "" {
		return account.Account{}, fmt.Errorf("%s: %w", op, apperrors.ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found account.Account
		ok    bool
	)
	for _, a := range r.accounts {
		if (username != "" && a.Username == username) || (email != "" && a.Email == email) {
			if !ok || a.CreatedAt.Before(found.CreatedAt) {
				found, ok = a, true
			}
		}
	}
	if !ok {
		return account.Account{}, fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return found, nil
}

func (r *MemoryAccountRepository) SetRefreshToken(_ context.Context, id uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("repository.MemoryAccount.SetRefreshToken: %w", apperrors.ErrNotFound)
	}
	a.RefreshToken = sql.NullString{String: token, Valid: token != ""}
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return nil
}

// Len reports the number of stored accounts.
func (r *MemoryAccountRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

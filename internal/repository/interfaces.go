package repository

import (
	"context"

	"account-service/internal/domain/account"

	"github.com/google/uuid"
)

// AccountRepository is the account store. Lookups return apperrors.ErrNotFound
// when nothing matches and Create returns apperrors.ErrAlreadyExists on a
// duplicate username or email.
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (account.Account, error)
	FindProfileByID(ctx context.Context, id uuid.UUID) (account.Profile, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (account.Account, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
}

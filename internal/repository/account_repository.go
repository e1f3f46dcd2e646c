package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"account-service/internal/domain/account"
	apperrors "account-service/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	accountColumns = `id, username, email, full_name, password_hash, avatar, cover_image, refresh_token, created_at, updated_at`
	profileColumns = `id, username, email, full_name, avatar, cover_image, created_at, updated_at`
)

type PostgresAccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) AccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) Create(ctx context.Context, a *account.Account) error {
	const op = "repository.Account.Create"

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	query := `INSERT INTO accounts (id, username, email, full_name, password_hash, avatar, cover_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		a.ID.String(),
		a.Username,
		a.Email,
		a.FullName,
		a.PasswordHash,
		a.Avatar,
		a.CoverImage,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapError(op, err)
}

func (r *PostgresAccountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (account.Account, error) {
	const op = "repository.Account.GetAccountByID"

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRow(ctx, query, id.String()))
	if err != nil {
		return account.Account{}, mapError(op, err)
	}
	return a, nil
}

// FindProfileByID reads the account without the password hash and refresh
// token columns.
func (r *PostgresAccountRepository) FindProfileByID(ctx context.Context, id uuid.UUID) (account.Profile, error) {
	const op = "repository.Account.FindProfileByID"

	query := `SELECT ` + profileColumns + ` FROM accounts WHERE id = $1`

	var (
		p     account.Profile
		rawID string
	)
	err := r.db.QueryRow(ctx, query, id.String()).Scan(
		&rawID,
		&p.Username,
		&p.Email,
		&p.FullName,
		&p.Avatar,
		&p.CoverImage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return account.Profile{}, mapError(op, err)
	}
	if p.ID, err = uuid.Parse(rawID); err != nil {
		return account.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// FindByUsernameOrEmail matches either identity. Empty values never match.
func (r *PostgresAccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (account.Account, error) {
	const op = "repository.Account.FindByUsernameOrEmail"

	if username == "" && email == "" {
		return account.Account{}, fmt.Errorf("%s: %w", op, apperrors.ErrInvalidInput)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE ($1 <> '' AND username = $1) OR ($2 <> '' AND email = $2)
		ORDER BY created_at
		LIMIT 1`

	a, err := scanAccount(r.db.QueryRow(ctx, query, username, email))
	if err != nil {
		return account.Account{}, mapError(op, err)
	}
	return a, nil
}

// SetRefreshToken overwrites the stored refresh token. An empty token clears it.
func (r *PostgresAccountRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	const op = "repository.Account.SetRefreshToken"

	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET refresh_token = $2, updated_at = $3 WHERE id = $1`,
		id.String(), nullableString(token), time.Now().UTC(),
	)
	if err != nil {
		return mapError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row) (account.Account, error) {
	var (
		a       account.Account
		rawID   string
		refresh *string
	)
	if err := row.Scan(
		&rawID,
		&a.Username,
		&a.Email,
		&a.FullName,
		&a.PasswordHash,
		&a.Avatar,
		&a.CoverImage,
		&refresh,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return account.Account{}, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return account.Account{}, err
	}
	a.ID = id
	if refresh != nil {
		a.RefreshToken = sql.NullString{String: *refresh, Valid: true}
	}
	return a, nil
}

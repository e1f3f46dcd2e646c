package services

import (
	"context"
	"fmt"
	"time"

	"account-service/config"
	"account-service/internal/domain/account"
	"account-service/internal/repository"
	apperrors "account-service/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CredentialPair is one access token and one refresh token issued together.
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type AccessClaims struct {
	AccountID string `json:"_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	AccountID string `json:"_id"`
	jwt.RegisteredClaims
}

// TokenIssuer signs credential pairs and records the refresh token on the
// account. Callers must have verified the password already.
type TokenIssuer struct {
	accounts      repository.AccountRepository
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accounts repository.AccountRepository, cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		accounts:      accounts,
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     time.Duration(cfg.AccessExpiryMin) * time.Minute,
		refreshTTL:    time.Duration(cfg.RefreshExpiryDays) * 24 * time.Hour,
		now:           time.Now,
	}
}

func (t *TokenIssuer) AccessTTL() time.Duration  { return t.accessTTL }
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

// IssuePair signs a fresh pair for accountID and overwrites the stored refresh
// token with exactly one write. Either both tokens are returned or neither.
func (t *TokenIssuer) IssuePair(ctx context.Context, accountID uuid.UUID) (CredentialPair, error) {
	profile, err := t.accounts.FindProfileByID(ctx, accountID)
	if err != nil {
		return CredentialPair{}, issuanceError(err)
	}

	now := t.now()
	accessToken, err := t.signAccess(profile, now)
	if err != nil {
		return CredentialPair{}, issuanceError(err)
	}
	refreshToken, err := t.signRefresh(profile.ID, now)
	if err != nil {
		return CredentialPair{}, issuanceError(err)
	}

	if err := t.accounts.SetRefreshToken(ctx, profile.ID, refreshToken); err != nil {
		return CredentialPair{}, issuanceError(err)
	}

	return CredentialPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessTTL:    t.accessTTL,
		RefreshTTL:   t.refreshTTL,
	}, nil
}

func (t *TokenIssuer) ParseAccessToken(tokenString string) (AccessClaims, error) {
	var claims AccessClaims
	if err := parseSigned(tokenString, t.accessSecret, &claims); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

func (t *TokenIssuer) ParseRefreshToken(tokenString string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := parseSigned(tokenString, t.refreshSecret, &claims); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

func (t *TokenIssuer) signAccess(p account.Profile, now time.Time) (string, error) {
	claims := AccessClaims{
		AccountID:        p.ID.String(),
		Username:         p.Username,
		Email:            p.Email,
		FullName:         p.FullName,
		RegisteredClaims: t.registered(p.ID, now, t.accessTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
}

func (t *TokenIssuer) signRefresh(id uuid.UUID, now time.Time) (string, error) {
	claims := RefreshClaims{
		AccountID:        id.String(),
		RegisteredClaims: t.registered(id, now, t.refreshTTL),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.refreshSecret)
}

func (t *TokenIssuer) registered(id uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func parseSigned(tokenString string, secret []byte, claims jwt.Claims) error {
	if tokenString == "" {
		return apperrors.ErrUnauthorized
	}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrUnauthorized
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func issuanceError(cause error) error {
	return apperrors.Internal("error generating tokens", fmt.Errorf("%w: %w", apperrors.ErrTokenIssuance, cause))
}

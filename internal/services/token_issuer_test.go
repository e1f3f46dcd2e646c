package services

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "account-service/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuePairPersistsRefreshToken(t *testing.T) {
	repo := newCountingRepo()
	acc := seedAccount(t, repo, "janedoe", "jane@x.com", "secret1")
	issuer := NewTokenIssuer(repo, testConfig())

	pair, err := issuer.IssuePair(context.Background(), acc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, 1, repo.refreshWrites)

	stored, err := repo.GetAccountByID(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.RefreshToken.String)
}

func TestIssuePairEncodesSameIdentity(t *testing.T) {
	repo := newCountingRepo()
	acc := seedAccount(t, repo, "janedoe", "jane@x.com", "secret1")
	issuer := NewTokenIssuer(repo, testConfig())

	pair, err := issuer.IssuePair(context.Background(), acc.ID)
	require.NoError(t, err)

	access, err := issuer.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := issuer.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, acc.ID.String(), access.AccountID)
	assert.Equal(t, access.AccountID, refresh.AccountID)
	assert.Equal(t, access.Subject, refresh.Subject)
	assert.Equal(t, "janedoe", access.Username)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
}

func TestIssuePairOverwritesPreviousRefreshToken(t *testing.T) {
	repo := newCountingRepo()
	acc := seedAccount(t, repo, "janedoe", "jane@x.com", "secret1")
	issuer := NewTokenIssuer(repo, testConfig())
	ctx := context.Background()

	first, err := issuer.IssuePair(ctx, acc.ID)
	require.NoError(t, err)
	second, err := issuer.IssuePair(ctx, acc.ID)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	stored, err := repo.GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, second.RefreshToken, stored.RefreshToken.String)
	assert.Equal(t, 2, repo.refreshWrites)
}

func TestIssuePairUnknownAccount(t *testing.T) {
	repo := newCountingRepo()
	issuer := NewTokenIssuer(repo, testConfig())

	pair, err := issuer.IssuePair(context.Background(), uuid.New())
	assert.Equal(t, CredentialPair{}, pair)
	assert.ErrorIs(t, err, apperrors.ErrTokenIssuance)
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
	assert.Zero(t, repo.refreshWrites)
}

func TestIssuePairWriteFailureReturnsNoCredentials(t *testing.T) {
	repo := newCountingRepo()
	acc := seedAccount(t, repo, "janedoe", "jane@x.com", "secret1")
	repo.setRefreshErr = errors.New("write timeout")
	issuer := NewTokenIssuer(repo, testConfig())

	pair, err := issuer.IssuePair(context.Background(), acc.ID)
	assert.Equal(t, CredentialPair{}, pair)
	assert.ErrorIs(t, err, apperrors.ErrTokenIssuance)
	assert.Equal(t, "error generating tokens", apperrors.Message(err))
	assert.Equal(t, 1, repo.refreshWrites)
}

func TestParseAccessTokenRejections(t *testing.T) {
	repo := newCountingRepo()
	acc := seedAccount(t, repo, "janedoe", "jane@x.com", "secret1")
	issuer := NewTokenIssuer(repo, testConfig())

	pair, err := issuer.IssuePair(context.Background(), acc.ID)
	require.NoError(t, err)

	_, err = issuer.ParseAccessToken("")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// a refresh token is signed with the other secret
	_, err = issuer.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		AccountID: acc.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte(testConfig().AccessTokenSecret))
	require.NoError(t, err)
	_, err = issuer.ParseAccessToken(signed)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{AccountID: acc.ID.String()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.ParseAccessToken(unsigned)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenTTLsFromConfig(t *testing.T) {
	issuer := NewTokenIssuer(newCountingRepo(), testConfig())
	assert.Equal(t, 15*time.Minute, issuer.AccessTTL())
	assert.Equal(t, 10*24*time.Hour, issuer.RefreshTTL())
}

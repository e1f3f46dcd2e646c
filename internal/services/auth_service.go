package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"account-service/internal/domain/account"
	"account-service/internal/redis"
	"account-service/internal/repository"
	"account-service/internal/storage"
	apperrors "account-service/pkg/errors"
	"account-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaUploader uploads a staged local file and returns its media reference.
type MediaUploader interface {
	Upload(ctx context.Context, localPath string) (storage.UploadResult, error)
}

// IdentityGuard reserves usernames and emails while a registration is in
// flight. Claim returns redis.ErrClaimHeld when another request holds one.
type IdentityGuard interface {
	Claim(ctx context.Context, username, email string) (func(context.Context), error)
}

type AuthService struct {
	accounts repository.AccountRepository
	issuer   *TokenIssuer
	media    MediaUploader
	guard    IdentityGuard
	logger   *logger.Logger
}

// NewAuthService wires the registration and login flows. guard may be nil.
func NewAuthService(accounts repository.AccountRepository, issuer *TokenIssuer, media MediaUploader, guard IdentityGuard, l *logger.Logger) *AuthService {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &AuthService{
		accounts: accounts,
		issuer:   issuer,
		media:    media,
		guard:    guard,
		logger:   l,
	}
}

type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User         account.Profile
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

const duplicateIdentityMessage = "User with email or username already exist"

// Register runs validate, uniqueness check, avatar upload, create and re-read
// in that order. The first failure aborts the rest.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (account.Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = account.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if err := validateRegister(in); err != nil {
		return account.Profile{}, err
	}
	username := account.NormalizeUsername(in.Username)

	if s.guard != nil {
		release, err := s.guard.Claim(ctx, username, in.Email)
		if err != nil {
			if errors.Is(err, redis.ErrClaimHeld) {
				return account.Profile{}, apperrors.Conflict(duplicateIdentityMessage)
			}
			return account.Profile{}, apperrors.Internal("Error reserving username", err)
		}
		defer release(context.WithoutCancel(ctx))
	}

	if err := s.ensureIdentityAvailable(ctx, username, in.Email); err != nil {
		return account.Profile{}, err
	}

	if in.AvatarPath == "" {
		return account.Profile{}, apperrors.Validation("Avatar image is required", "avatar")
	}

	avatar, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil {
		return account.Profile{}, apperrors.Internal("Error uploading avatar image", err)
	}

	coverImage := ""
	if in.CoverImagePath != "" {
		cover, err := s.media.Upload(ctx, in.CoverImagePath)
		if err != nil {
			s.logger.WarnCtx(ctx, "cover image upload failed", zap.Error(err))
		} else {
			coverImage = cover.SecureURL
		}
	}

	newAccount := &account.Account{
		ID:         uuid.New(),
		Username:   username,
		Email:      in.Email,
		FullName:   in.FullName,
		Avatar:     avatar.SecureURL,
		CoverImage: coverImage,
	}
	if err := newAccount.SetPassword(in.Password); err != nil {
		return account.Profile{}, apperrors.Internal("Error creating new user", err)
	}

	if err := s.accounts.Create(ctx, newAccount); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return account.Profile{}, apperrors.Conflict(duplicateIdentityMessage)
		}
		return account.Profile{}, apperrors.Internal("Error creating new user", err)
	}

	created, err := s.accounts.FindProfileByID(ctx, newAccount.ID)
	if err != nil {
		return account.Profile{}, apperrors.Internal("Error creating new user", err)
	}

	s.logger.InfoCtx(ctx, "account registered", zap.String("account_id", created.ID.String()), zap.String("username", created.Username))
	return created, nil
}

// Login verifies the password and issues a credential pair. Unknown accounts
// and wrong passwords both surface as 400.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	username := account.NormalizeUsername(in.Username)
	email := account.NormalizeEmail(in.Email)

	if username == "" && email == "" {
		return LoginResult{}, apperrors.Validation("username or email is required", "username", "email")
	}
	if in.Password == "" {
		return LoginResult{}, apperrors.Validation("password is required", "password")
	}

	found, err := s.accounts.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return LoginResult{}, apperrors.NotFound("User does not exist")
		}
		return LoginResult{}, apperrors.Internal("Error looking up user", err)
	}

	if !found.IsPasswordCorrect(in.Password) {
		return LoginResult{}, apperrors.InvalidCredentials("Invalid user credentials")
	}

	pair, err := s.issuer.IssuePair(ctx, found.ID)
	if err != nil {
		return LoginResult{}, err
	}

	profile, err := s.accounts.FindProfileByID(ctx, found.ID)
	if err != nil {
		return LoginResult{}, apperrors.Internal("Error loading user", err)
	}

	s.logger.InfoCtx(ctx, "account logged in", zap.String("account_id", profile.ID.String()))
	return LoginResult{
		User:         profile,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		AccessTTL:    pair.AccessTTL,
		RefreshTTL:   pair.RefreshTTL,
	}, nil
}

// Logout clears the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, accountID uuid.UUID) error {
	if err := s.accounts.SetRefreshToken(ctx, accountID, ""); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized("unauthorized")
		}
		return apperrors.Internal("Error logging out", err)
	}
	return nil
}

func (s *AuthService) CurrentAccount(ctx context.Context, accountID uuid.UUID) (account.Profile, error) {
	profile, err := s.accounts.FindProfileByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return account.Profile{}, apperrors.Unauthorized("unauthorized")
		}
		return account.Profile{}, apperrors.Internal("Error loading user", err)
	}
	return profile, nil
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	return s.issuer.ParseAccessToken(tokenString)
}

func (s *AuthService) ensureIdentityAvailable(ctx context.Context, username, email string) error {
	_, err := s.accounts.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		return apperrors.Conflict(duplicateIdentityMessage)
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	default:
		return apperrors.Internal("Error checking existing user", err)
	}
}

// validateRegister rejects the request when any required field is blank.
func validateRegister(in RegisterInput) error {
	fields := []struct {
		name  string
		value string
	}{
		{"fullName", in.FullName},
		{"email", in.Email},
		{"username", in.Username},
		{"password", strings.TrimSpace(in.Password)},
	}

	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperrors.Validation("All fields are required", missing...)
	}

	if !strings.Contains(in.Email, "@") {
		return apperrors.Validation("Email is invalid", "email")
	}
	if len(in.Password) > account.MaxPasswordBytes {
		return apperrors.Validation(fmt.Sprintf("Password must be at most %d bytes", account.MaxPasswordBytes), "password")
	}
	return nil
}

type ctxKey string

var accountIDKey ctxKey = "account_id"

func WithAccountContext(ctx context.Context, accountID uuid.UUID) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	return logger.WithAccountID(ctx, accountID.String())
}

func AccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	value := ctx.Value(accountIDKey)
	if value == nil {
		return uuid.Nil, false
	}
	accountID, ok := value.(uuid.UUID)
	return accountID, ok
}

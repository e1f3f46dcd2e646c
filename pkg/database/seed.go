package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"account-service/internal/domain/account"
	"account-service/internal/repository"
	apperrors "account-service/pkg/errors"
)

// SeedConfig holds configuration for seeding the database
type SeedConfig struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   string
}

// DefaultSeedConfig returns default seed configuration
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Username: "demo",
		Email:    "demo@example.com",
		FullName: "Demo Account",
		Password: "Demo@123!",
		Avatar:   "https://placehold.co/256x256.png",
	}
}

// Seed creates the demo account unless an account with the same username or
// email already exists. It returns the sanitized account either way.
func Seed(ctx context.Context, repo repository.AccountRepository, cfg SeedConfig) (account.Profile, error) {
	username := account.NormalizeUsername(cfg.Username)
	email := account.NormalizeEmail(cfg.Email)

	existing, err := repo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil {
		log.Printf("Seed account %s already exists", existing.Username)
		return existing.Profile(), nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return account.Profile{}, fmt.Errorf("seed lookup: %w", err)
	}

	a := &account.Account{
		Username: username,
		Email:    email,
		FullName: cfg.FullName,
		Avatar:   cfg.Avatar,
	}
	if err := a.SetPassword(cfg.Password); err != nil {
		return account.Profile{}, fmt.Errorf("seed password: %w", err)
	}
	if err := repo.Create(ctx, a); err != nil {
		return account.Profile{}, fmt.Errorf("seed create: %w", err)
	}
	return repo.FindProfileByID(ctx, a.ID)
}

package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"account-service/config"
	"account-service/internal/domain/account"
	"account-service/internal/repository"
	"account-service/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:  "access-secret",
		AccessExpiryMin:    15,
		RefreshTokenSecret: "refresh-secret",
		RefreshExpiryDays:  10,
	}
}

// countingRepo wraps the memory repository, counts writes and can inject
// failures.
type countingRepo struct {
	*repository.MemoryAccountRepository

	mu            sync.Mutex
	creates       int
	refreshWrites int
	setRefreshErr error
	profileErr    error
	findErr       error
}

func newCountingRepo() *countingRepo {
	return &countingRepo{MemoryAccountRepository: repository.NewMemoryAccountRepository()}
}

func (r *countingRepo) Create(ctx context.Context, a *account.Account) error {
	r.mu.Lock()
	r.creates++
	r.mu.Unlock()
	return r.MemoryAccountRepository.Create(ctx, a)
}

func (r *countingRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (account.Account, error) {
	if r.findErr != nil {
		return account.Account{}, r.findErr
	}
	return r.MemoryAccountRepository.FindByUsernameOrEmail(ctx, username, email)
}

func (r *countingRepo) FindProfileByID(ctx context.Context, id uuid.UUID) (account.Profile, error) {
	if r.profileErr != nil {
		return account.Profile{}, r.profileErr
	}
	return r.MemoryAccountRepository.FindProfileByID(ctx, id)
}

func (r *countingRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	r.mu.Lock()
	r.refreshWrites++
	r.mu.Unlock()
	if r.setRefreshErr != nil {
		return r.setRefreshErr
	}
	return r.MemoryAccountRepository.SetRefreshToken(ctx, id, token)
}

// fakeMedia hands out deterministic URLs and records what it was asked to upload.
type fakeMedia struct {
	mu       sync.Mutex
	uploaded []string
	failFor  map[string]error
}

func (m *fakeMedia) Upload(_ context.Context, localPath string) (storage.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[localPath]; ok {
		return storage.UploadResult{}, err
	}
	m.uploaded = append(m.uploaded, localPath)
	return storage.UploadResult{Key: localPath, SecureURL: "https://cdn.example.com/" + localPath}, nil
}

var errUploadFailed = errors.New("upload failed")

func seedAccount(t *testing.T, repo repository.AccountRepository, username, email, password string) account.Account {
	t.Helper()
	a := &account.Account{
		Username: username,
		Email:    email,
		FullName: "Seeded",
		Avatar:   "https://cdn.example.com/seed.png",
	}
	require.NoError(t, a.SetPassword(password))
	require.NoError(t, repo.Create(context.Background(), a))
	return *a
}

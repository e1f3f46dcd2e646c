package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("ACCESS_TOKEN_EXPIRY_MIN", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, "", cfg.AppPort)
	assert.Equal(t, 15, cfg.AccessExpiryMin)
	assert.Equal(t, 10, cfg.RefreshExpiryDays)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "avatars", cfg.S3KeyPrefix)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("REFRESH_TOKEN_EXPIRY_DAYS", "30")
	t.Setenv("S3_PUBLIC_BASE", "https://cdn.example.com/")

	cfg := LoadConfig()

	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 30, cfg.RefreshExpiryDays)
	assert.Equal(t, "https://cdn.example.com", cfg.S3PublicBase)
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "accounts", DBPort: "5432", DBSSLMode: "disable"}

	assert.Equal(t, "host=db user=u password=p dbname=accounts port=5432 sslmode=disable TimeZone=UTC", cfg.DatabaseURL())
}

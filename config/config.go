package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppMode string
	AppEnv  string

	// StoreDriver selects the account store: "postgres" or "memory".
	StoreDriver string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	AccessTokenSecret  string
	AccessExpiryMin    int
	RefreshTokenSecret string
	RefreshExpiryDays  int

	CookieSecure bool
	CookieDomain string

	RedisHost           string
	RedisPort           string
	RedisPassword       string
	RedisDB             int
	RegistrationLockTTL int

	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3Endpoint   string
	S3PublicBase string
	S3KeyPrefix  string
	S3ACL        string

	UploadTempDir string
	UploadMaxMB   int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "8080"),
		AppMode: getEnv("APP_MODE", "debug"),
		AppEnv:  getEnv("APP_ENV", "development"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "postgres")),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "accounts"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", "change-me-access"),
		AccessExpiryMin:    getEnvAsInt("ACCESS_TOKEN_EXPIRY_MIN", 15),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", "change-me-refresh"),
		RefreshExpiryDays:  getEnvAsInt("REFRESH_TOKEN_EXPIRY_DAYS", 10),

		CookieSecure: getEnvAsBool("COOKIE_SECURE", true),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),

		RedisHost:           getEnv("REDIS_HOST", "localhost"),
		RedisPort:           getEnv("REDIS_PORT", "6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		RegistrationLockTTL: getEnvAsInt("REGISTRATION_LOCK_TTL_SEC", 30),

		S3Region:     getEnv("S3_REGION", "us-east-1"),
		S3Bucket:     getEnv("S3_BUCKET", "account-media"),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3PublicBase: strings.TrimRight(getEnv("S3_PUBLIC_BASE", ""), "/"),
		S3KeyPrefix:  getEnv("S3_KEY_PREFIX", "avatars"),
		S3ACL:        getEnv("S3_ACL", ""),

		UploadTempDir: getEnv("UPLOAD_TEMP_DIR", "./public/temp"),
		UploadMaxMB:   getEnvAsInt("UPLOAD_MAX_MB", 10),
	}
}

// DatabaseURL builds a libpq style connection string for pgx.
func (c *Config) DatabaseURL() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

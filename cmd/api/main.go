package main

import (
	"context"
	"log"
	"time"

	"account-service/config"
	"account-service/internal/handler"
	"account-service/internal/redis"
	"account-service/internal/repository"
	"account-service/internal/server"
	"account-service/internal/services"
	"account-service/internal/storage"
	"account-service/pkg/database"
	"account-service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppEnv)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	ctx := context.Background()
	checks := map[string]handler.HealthCheck{}

	var accounts repository.AccountRepository
	switch cfg.StoreDriver {
	case "memory":
		l.Warnf("Using in-memory account store, data is lost on restart")
		accounts = repository.NewMemoryAccountRepository()
	default:
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		if err := database.ApplyMigrations(ctx, pool, database.MigrateUp); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		accounts = repository.NewAccountRepository(pool)
		checks["postgres"] = func(ctx context.Context) error {
			return database.HealthCheck(ctx, pool)
		}
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	if err := redis.Ping(ctx, redisClient); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	checks["redis"] = func(ctx context.Context) error {
		return redis.Ping(ctx, redisClient)
	}
	claims := redis.NewIdentityClaims(redisClient, time.Duration(cfg.RegistrationLockTTL)*time.Second)

	s3Client, err := storage.NewClient(ctx, storage.S3Config{
		Region:       cfg.S3Region,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Endpoint:     cfg.S3Endpoint,
		PublicBase:   cfg.S3PublicBase,
		KeyPrefix:    cfg.S3KeyPrefix,
		ACL:          cfg.S3ACL,
		AllowedTypes: []string{"image/"},
	})
	if err != nil {
		log.Fatalf("Failed to create media client: %v", err)
	}

	media := services.NewMediaService(s3Client, l)
	issuer := services.NewTokenIssuer(accounts, cfg)
	authService := services.NewAuthService(accounts, issuer, media, claims, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.CookieConfig{
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
		}),
		Health: handler.NewHealthHandler(checks),
	}, authService)

	if err := srv.Start(); err != nil {
		l.ErrorCtx(ctx, "server stopped with error", zap.Error(err))
	}
}

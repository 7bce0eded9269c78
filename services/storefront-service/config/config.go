package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awspkg "github.com/rayhanbeg/Sajbela-sub000/pkg/aws"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/database"
)

// Config holds the storefront service settings.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	Postgres database.PostgresConfig

	RedisURL       string
	CartTTL        time.Duration
	IdempotencyTTL time.Duration

	OrderSNSTopicARN string
}

type secretGetter interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// Load reads .env (if present) and the environment, with an optional Secrets
// Manager override for the database credentials and JWT secret.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("No .env file found, using environment variables")
	}

	var secrets secretGetter
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		secrets = awspkg.NewSecretsClient(awsCfg)
	}
	return load(secrets)
}

func load(secrets secretGetter) (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8091"),
		Env:       getEnv("APP_ENV", "development"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       os.Getenv("POSTGRES_DB"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Dhaka"),
		},
		RedisURL:         getEnv("REDIS_URL", "redis://redis:6379"),
		CartTTL:          getDuration("CART_TTL", 7*24*time.Hour),
		IdempotencyTTL:   getDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		OrderSNSTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
	}

	if secrets != nil {
		if m, err := secrets.GetSecretMap(context.Background(), "storefront/DB_CREDENTIALS"); err == nil {
			override(&cfg.Postgres.User, m["POSTGRES_USER"])
			override(&cfg.Postgres.Password, m["POSTGRES_PASSWORD"])
			override(&cfg.Postgres.DB, m["POSTGRES_DB"])
			override(&cfg.Postgres.Host, m["POSTGRES_HOST"])
			override(&cfg.Postgres.Port, m["POSTGRES_PORT"])
		} else {
			zap.L().Warn("DB credentials secret unavailable", zap.Error(err))
		}
		if m, err := secrets.GetSecretMap(context.Background(), "storefront/APP_SECRETS"); err == nil {
			override(&cfg.JWTSecret, m["JWT_SECRET"])
		} else {
			zap.L().Warn("App secrets unavailable", zap.Error(err))
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Postgres.User == "" || cfg.Postgres.Password == "" || cfg.Postgres.DB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

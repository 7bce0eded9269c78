package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awspkg "github.com/rayhanbeg/Sajbela-sub000/pkg/aws"
)

// Config holds the checkout service settings.
type Config struct {
	Port          string
	Env           string
	StorefrontURL string
	// StorefrontTimeout bounds every storefront call; a timeout counts as a
	// network error.
	StorefrontTimeout time.Duration
	JWTSecret         string

	RedisURL  string
	IntentTTL time.Duration

	SessionIdleTimeout time.Duration
	EvictInterval      time.Duration

	EventsDriver string
	SNSTopicARN  string
	KafkaBrokers []string
	KafkaTopic   string

	CORSOrigins        []string
	RateLimitPerMinute int
	RateLimitBurst     int
}

// secretGetter is the part of the secrets client Load needs.
type secretGetter interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// Load reads .env (if present) and the environment. With AWS_USE_SECRETS=true
// the JWT secret and storefront URL may be overridden from Secrets Manager.
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
		Port:               getEnv("PORT", "8090"),
		Env:                getEnv("APP_ENV", "development"),
		StorefrontURL:      getEnv("STOREFRONT_SERVICE_URL", "http://storefront-service:8091"),
		StorefrontTimeout:  getDuration("STOREFRONT_TIMEOUT", 10*time.Second),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		RedisURL:           os.Getenv("REDIS_URL"),
		IntentTTL:          getDuration("INTENT_TTL", 7*24*time.Hour),
		SessionIdleTimeout: getDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		EvictInterval:      getDuration("SESSION_EVICT_INTERVAL", 5*time.Minute),
		EventsDriver:       strings.ToLower(getEnv("EVENTS_DRIVER", "none")),
		SNSTopicARN:        os.Getenv("CHECKOUT_EVENTS_TOPIC_ARN"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "checkout.events"),
		CORSOrigins:        splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 30),
	}

	if secrets != nil {
		m, err := secrets.GetSecretMap(context.Background(), "checkout/APP_SECRETS")
		if err != nil {
			zap.L().Warn("Secrets Manager lookup failed, keeping environment values", zap.Error(err))
		} else {
			if v := m["JWT_SECRET"]; v != "" {
				cfg.JWTSecret = v
			}
			if v := m["STOREFRONT_SERVICE_URL"]; v != "" {
				cfg.StorefrontURL = v
			}
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.EventsDriver {
	case "none":
	case "sns":
		if cfg.SNSTopicARN == "" {
			return nil, fmt.Errorf("CHECKOUT_EVENTS_TOPIC_ARN is required for EVENTS_DRIVER=sns")
		}
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is required for EVENTS_DRIVER=kafka")
		}
	default:
		return nil, fmt.Errorf("unknown EVENTS_DRIVER %q", cfg.EventsDriver)
	}
	return cfg, nil
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

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

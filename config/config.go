package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port       string
	Env        string
	DBURL      string
	JWTSecret  string
	CORSOrigin string

	// RedisURL empty disables rate limiting.
	RedisURL          string
	ProgressRateLimit int // position updates per minute per user

	// Both must be set for /webhook/stripe to accept events.
	StripeWebhookSecret string
	BillingAdminID      uint
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found. Using system environment variables.")
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("APP_ENV", "development"),
		CORSOrigin:          getEnv("CORS_ORIGIN", "http://localhost:5173"),
		RedisURL:            getEnv("REDIS_URL", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
	}

	var err error
	if cfg.DBURL, err = mustEnv("DB_URL"); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = mustEnv("JWT_SECRET"); err != nil {
		return nil, err
	}

	limit, err := getInt("PROGRESS_RATE_LIMIT", 120)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("PROGRESS_RATE_LIMIT must not be negative, got %d", limit)
	}
	cfg.ProgressRateLimit = limit

	adminID, err := getInt("BILLING_ADMIN_ID", 0)
	if err != nil {
		return nil, err
	}
	if adminID < 0 {
		return nil, fmt.Errorf("BILLING_ADMIN_ID must not be negative, got %d", adminID)
	}
	cfg.BillingAdminID = uint(adminID)

	return cfg, nil
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required environment variable: %s", key)
	}
	return v, nil
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

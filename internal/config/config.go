// Package config manages application configuration
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	CORSOrigin  string

	// Storage
	DatabaseURL string
	RedisAddr   string
	SeedFile    string

	// Market data
	MarketProvider    string // "mock", "yahoo" or "coingecko"
	QuoteCacheTTL     time.Duration
	FallbackEURPerUSD decimal.Decimal

	// Advisor
	OpenAIAPIKey string

	// Jobs
	SnapshotCron    string
	SnapshotEnabled bool

	// Dashboard
	RebalanceThresholdPct decimal.Decimal
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		Port:                  getEnv("PATRIMONIO_PORT", "8080"),
		Environment:           getEnv("PATRIMONIO_ENV", "development"),
		CORSOrigin:            getEnv("PATRIMONIO_CORS_ORIGIN", "*"),
		DatabaseURL:           getEnv("PATRIMONIO_DATABASE_URL", "patrimonio.db"),
		RedisAddr:             getEnv("PATRIMONIO_REDIS_ADDR", "localhost:6379"),
		SeedFile:              getEnv("PATRIMONIO_SEED_FILE", "positions.json"),
		MarketProvider:        getEnv("PATRIMONIO_MARKET_PROVIDER", "yahoo"),
		QuoteCacheTTL:         getDurationEnv("PATRIMONIO_QUOTE_CACHE_TTL", 5*time.Minute),
		FallbackEURPerUSD:     getDecimalEnv("PATRIMONIO_FALLBACK_EUR_PER_USD", decimal.NewFromFloat(0.92)),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		SnapshotCron:          getEnv("PATRIMONIO_SNAPSHOT_CRON", "0 22 * * *"),
		SnapshotEnabled:       getBoolEnv("PATRIMONIO_SNAPSHOT_ENABLED", true),
		RebalanceThresholdPct: getDecimalEnv("PATRIMONIO_REBALANCE_THRESHOLD_PCT", decimal.NewFromInt(5)),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDecimalEnv(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

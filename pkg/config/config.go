// Package config collects the gateway's environment-driven configuration:
// Redis connection, per-provider credentials and budgets, and per-operation
// cache TTLs. Nothing in the retrieval logic is hard-coded; it all flows
// from here.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ProviderConfig is the configuration surface of one upstream provider.
type ProviderConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	RateLimit      int           // calls per RateInterval
	RateInterval   time.Duration // throttle window
	MaxRetries     int
	InitialBackoff time.Duration
}

// TTLConfig is the per-operation-family staleness bound.
type TTLConfig struct {
	EODPrices      time.Duration
	LatestPrice    time.Duration
	CompanyProfile time.Duration
	CorporateActs  time.Duration
	Regulatory     time.Duration
	News           time.Duration
}

// Config is the full gateway daemon configuration.
type Config struct {
	ListenAddr string
	LogLevel   string
	LogPretty  bool
	UserAgent  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Marketstack ProviderConfig
	OpenFDA     ProviderConfig
	News        ProviderConfig

	TTL TTLConfig
}

// FromEnv assembles the configuration from environment variables with
// production defaults. Only the provider API keys have no default.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogPretty:  getEnvBool("LOG_PRETTY", false),
		UserAgent:  getEnv("USER_AGENT", "stocksight-data-gateway/1.0 (ops@stocksight.io)"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		Marketstack: ProviderConfig{
			BaseURL:        getEnv("MARKETSTACK_BASE_URL", "https://api.marketstack.com/v1"),
			APIKey:         os.Getenv("MARKETSTACK_API_KEY"),
			Timeout:        getEnvDuration("MARKETSTACK_TIMEOUT", 30*time.Second),
			RateLimit:      getEnvInt("MARKETSTACK_RATE_LIMIT", 5),
			RateInterval:   getEnvDuration("MARKETSTACK_RATE_INTERVAL", time.Second),
			MaxRetries:     getEnvInt("MARKETSTACK_MAX_RETRIES", 3),
			InitialBackoff: getEnvDuration("MARKETSTACK_INITIAL_BACKOFF", time.Second),
		},
		OpenFDA: ProviderConfig{
			BaseURL:        getEnv("OPENFDA_BASE_URL", "https://api.fda.gov"),
			APIKey:         os.Getenv("OPENFDA_API_KEY"),
			Timeout:        getEnvDuration("OPENFDA_TIMEOUT", 30*time.Second),
			RateLimit:      getEnvInt("OPENFDA_RATE_LIMIT", 4),
			RateInterval:   getEnvDuration("OPENFDA_RATE_INTERVAL", time.Second),
			MaxRetries:     getEnvInt("OPENFDA_MAX_RETRIES", 3),
			InitialBackoff: getEnvDuration("OPENFDA_INITIAL_BACKOFF", time.Second),
		},
		News: ProviderConfig{
			BaseURL:        getEnv("NEWS_BASE_URL", "https://newsapi.org/v2"),
			APIKey:         os.Getenv("NEWS_API_KEY"),
			Timeout:        getEnvDuration("NEWS_TIMEOUT", 30*time.Second),
			RateLimit:      getEnvInt("NEWS_RATE_LIMIT", 2),
			RateInterval:   getEnvDuration("NEWS_RATE_INTERVAL", time.Second),
			MaxRetries:     getEnvInt("NEWS_MAX_RETRIES", 3),
			InitialBackoff: getEnvDuration("NEWS_INITIAL_BACKOFF", time.Second),
		},

		TTL: TTLConfig{
			EODPrices:      getEnvDuration("TTL_EOD_PRICES", 5*time.Minute),
			LatestPrice:    getEnvDuration("TTL_LATEST_PRICE", time.Minute),
			CompanyProfile: getEnvDuration("TTL_COMPANY_PROFILE", 24*time.Hour),
			CorporateActs:  getEnvDuration("TTL_CORPORATE_ACTIONS", 24*time.Hour),
			Regulatory:     getEnvDuration("TTL_REGULATORY", 24*time.Hour),
			News:           getEnvDuration("TTL_NEWS", time.Hour),
		},
	}

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	cfg.RedisDB = db

	if cfg.Marketstack.APIKey == "" {
		return Config{}, fmt.Errorf("MARKETSTACK_API_KEY is required")
	}
	if cfg.News.APIKey == "" {
		return Config{}, fmt.Errorf("NEWS_API_KEY is required")
	}
	// openFDA works unauthenticated at a reduced rate budget.

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Cache store (empty REDIS_ADDR selects the in-process fallback,
	// which is not safe across multiple processes)
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// External stat API
	GitHubAPIURL string
	GitHubToken  string
	StatCacheTTL time.Duration

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	return &Config{
		AppName: envString("APP_NAME", "Stride"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/stride.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		RedisAddr:     envString("REDIS_ADDR", ""),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		CacheTTL:      envDuration("CACHE_TTL", 30*24*time.Hour),

		GitHubAPIURL: envString("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:  envString("GITHUB_TOKEN", ""),
		StatCacheTTL: envDuration("STAT_CACHE_TTL", time.Hour),

		SentryDSN: envString("SENTRY_DSN", ""),
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

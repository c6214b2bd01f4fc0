package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	APIBaseURL  string
	APITimeout  time.Duration
	DatabaseURL string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	RefreshInterval        time.Duration
	SummaryRefreshInterval time.Duration
	TopCongestionLimit     int
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is honored when present.
// DATABASE_URL is optional; leaving it empty disables the fallback store.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiTimeout, err := parseDuration("API_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "15s")
	if err != nil {
		return nil, err
	}
	summaryInterval, err := parseDuration("SUMMARY_REFRESH_INTERVAL", "10s")
	if err != nil {
		return nil, err
	}
	topLimit, err := parseInt("TOP_CONGESTION_LIMIT", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIBaseURL:  envOrDefault("API_BASE_URL", "http://localhost:8000"),
		APITimeout:  apiTimeout,
		DatabaseURL: os.Getenv("DATABASE_URL"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RefreshInterval:        refreshInterval,
		SummaryRefreshInterval: summaryInterval,
		TopCongestionLimit:     topLimit,
	}

	if cfg.APIBaseURL == "" {
		return nil, errors.New("API_BASE_URL is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: want a positive duration", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: want a positive integer", key)
	}
	return n, nil
}

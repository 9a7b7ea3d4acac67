package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatabaseURL          string
	HTTPPort             string
	AdminAPIKey          string
	LogLevel             slog.Level
	SettingsFile         string
	RatesURL             string
	PricesURL            string
	PricesAPIKey         string
	QuoteRateLimit       int
	QuoteRetryMax        int
	QuoteRetryBaseDelay  time.Duration
	QuoteHistoryYears    int
	QuoteWorkerInterval  time.Duration
	ReportWorkerInterval time.Duration
	SpreadsheetID        string
	GoogleCredentials    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:          envOrDefaultWarn("DATABASE_URL", ""),
		HTTPPort:             envOrDefault("HTTP_PORT", "8080"),
		AdminAPIKey:          envOrDefault("ADMIN_API_KEY", ""),
		LogLevel:             envOrDefaultLevel("LOG_LEVEL", slog.LevelInfo),
		SettingsFile:         envOrDefault("SETTINGS_FILE", "budget.toml"),
		RatesURL:             envOrDefault("RATES_URL", "https://api.frankfurter.app"),
		PricesURL:            envOrDefault("PRICES_URL", "https://eodhd.com/api"),
		PricesAPIKey:         envOrDefault("PRICES_API_KEY", ""),
		QuoteRateLimit:       envOrDefaultInt("QUOTE_RATE_LIMIT", 5),
		QuoteRetryMax:        envOrDefaultInt("QUOTE_RETRY_MAX", 3),
		QuoteRetryBaseDelay:  envOrDefaultDuration("QUOTE_RETRY_BASE_DELAY", 10*time.Second),
		QuoteHistoryYears:    envOrDefaultInt("QUOTE_HISTORY_YEARS", 10),
		QuoteWorkerInterval:  envOrDefaultDuration("QUOTE_WORKER_INTERVAL", 6*time.Hour),
		ReportWorkerInterval: envOrDefaultDuration("REPORT_WORKER_INTERVAL", 24*time.Hour),
		SpreadsheetID:        envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		GoogleCredentials:    envOrDefault("GOOGLE_CREDENTIALS_JSON", ""),
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("env var not set", "key", key)
	}
	return v
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return n
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}

func envOrDefaultLevel(key string, defaultVal slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			slog.Warn("invalid log level env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return level
	}
	return defaultVal
}

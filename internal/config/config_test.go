package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Clear any env vars that might affect defaults
	for _, key := range []string{"DATABASE_URL", "HTTP_PORT", "LOG_LEVEL", "RATES_URL", "QUOTE_RETRY_MAX", "QUOTE_HISTORY_YEARS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q, want 8080", cfg.HTTPPort)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if cfg.RatesURL != "https://api.frankfurter.app" {
		t.Errorf("RatesURL = %q, want default", cfg.RatesURL)
	}
	if cfg.QuoteRetryMax != 3 {
		t.Errorf("QuoteRetryMax = %d, want 3", cfg.QuoteRetryMax)
	}
	if cfg.QuoteHistoryYears != 10 {
		t.Errorf("QuoteHistoryYears = %d, want 10", cfg.QuoteHistoryYears)
	}
	if cfg.ReportWorkerInterval != 24*time.Hour {
		t.Errorf("ReportWorkerInterval = %v, want 24h", cfg.ReportWorkerInterval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/testdb")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("QUOTE_RETRY_MAX", "10")
	t.Setenv("QUOTE_RETRY_BASE_DELAY", "5s")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://localhost/testdb" {
		t.Errorf("DatabaseURL = %q, want override", cfg.DatabaseURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q, want 9090", cfg.HTTPPort)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want DEBUG", cfg.LogLevel)
	}
	if cfg.QuoteRetryMax != 10 {
		t.Errorf("QuoteRetryMax = %d, want 10", cfg.QuoteRetryMax)
	}
	if cfg.QuoteRetryBaseDelay != 5*time.Second {
		t.Errorf("QuoteRetryBaseDelay = %v, want 5s", cfg.QuoteRetryBaseDelay)
	}
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("QUOTE_RETRY_MAX", "not-a-number")
	t.Setenv("QUOTE_RETRY_BASE_DELAY", "invalid-duration")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load()

	if cfg.QuoteRetryMax != 3 {
		t.Errorf("QuoteRetryMax = %d, want default 3 on invalid input", cfg.QuoteRetryMax)
	}
	if cfg.QuoteRetryBaseDelay != 10*time.Second {
		t.Errorf("QuoteRetryBaseDelay = %v, want default 10s on invalid input", cfg.QuoteRetryBaseDelay)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want default INFO on invalid input", cfg.LogLevel)
	}
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budget.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if s.DefaultCurrency != "EUR" || s.WithdrawalRate.String() != "4" || s.ExpectedROI.String() != "5" || !s.FIExpenses.IsZero() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := writeSettings(t, `
default_currency = "CHF"
withdrawal_rate = 3.5
fi_expenses = 36000
`)
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.DefaultCurrency != "CHF" {
		t.Errorf("DefaultCurrency = %q", s.DefaultCurrency)
	}
	if s.WithdrawalRate.String() != "3.5" {
		t.Errorf("WithdrawalRate = %s", s.WithdrawalRate)
	}
	if s.ExpectedROI.String() != "5" {
		t.Errorf("ExpectedROI = %s, want default", s.ExpectedROI)
	}
	if s.FIExpenses.String() != "36000.00" {
		t.Errorf("FIExpenses = %s", s.FIExpenses)
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `withdrawal_rate = = 4`},
		{"unknown currency", `default_currency = "XXQ"`},
		{"zero withdrawal rate", `withdrawal_rate = 0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadSettings(writeSettings(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

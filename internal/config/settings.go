package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/valuation"
)

// settingsFile mirrors budget.toml. Unset numbers keep their defaults.
type settingsFile struct {
	DefaultCurrency string   `toml:"default_currency"`
	WithdrawalRate  *float64 `toml:"withdrawal_rate"`
	ExpectedROI     *float64 `toml:"expected_roi"`
	FIExpenses      *float64 `toml:"fi_expenses"`
}

// DefaultSettings returns the finance settings used without a settings file.
func DefaultSettings() valuation.Settings {
	return valuation.Settings{
		DefaultCurrency: "EUR",
		WithdrawalRate:  decimal.NewFromInt(4),
		ExpectedROI:     decimal.NewFromInt(5),
	}
}

// LoadSettings reads the finance settings from a TOML file. A missing file yields defaults.
func LoadSettings(path string) (valuation.Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return valuation.Settings{}, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var file settingsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return valuation.Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if file.DefaultCurrency != "" {
		if !domain.ValidCurrency(file.DefaultCurrency) {
			return valuation.Settings{}, fmt.Errorf("settings file %s: unknown default_currency %q", path, file.DefaultCurrency)
		}
		settings.DefaultCurrency = file.DefaultCurrency
	}
	if file.WithdrawalRate != nil {
		if *file.WithdrawalRate <= 0 {
			return valuation.Settings{}, fmt.Errorf("settings file %s: withdrawal_rate must be positive", path)
		}
		settings.WithdrawalRate = decimal.NewFromFloat(*file.WithdrawalRate)
	}
	if file.ExpectedROI != nil {
		settings.ExpectedROI = decimal.NewFromFloat(*file.ExpectedROI)
	}
	if file.FIExpenses != nil {
		settings.FIExpenses = domain.NewMoney(decimal.NewFromFloat(*file.FIExpenses))
	}
	return settings, nil
}

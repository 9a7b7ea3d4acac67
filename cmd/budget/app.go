package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/budget/internal/config"
	"github.com/mtlprog/budget/internal/database"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/export"
	"github.com/mtlprog/budget/internal/quote"
	"github.com/mtlprog/budget/internal/snapshot"
	"github.com/mtlprog/budget/internal/store"
	"github.com/mtlprog/budget/internal/valuation"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// app holds the wired services shared by every command.
type app struct {
	cfg       config.Config
	pool      *pgxpool.Pool
	stores    *store.Stores
	provider  *quote.Provider
	quotes    *quote.Service
	engine    *valuation.Engine
	snapshots *snapshot.Service
}

func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newApp connects to the database, loads the records and warms the quote tables.
func newApp(ctx context.Context, settingsFile string) (*app, error) {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if settingsFile == "" {
		settingsFile = cfg.SettingsFile
	}
	settings, err := config.LoadSettings(settingsFile)
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	pool, err := database.Open(ctx, cfg.DatabaseURL, migrations)
	if err != nil {
		return nil, err
	}

	recordRepo := store.NewPgRepository(pool)
	stores := store.New(recordRepo)
	if err := stores.LoadFrom(ctx, recordRepo); err != nil {
		pool.Close()
		return nil, fmt.Errorf("loading records: %w", err)
	}

	provider := quote.NewProvider()
	client := quote.NewHTTPClient(cfg.PricesAPIKey,
		quote.WithRatesURL(cfg.RatesURL),
		quote.WithPricesURL(cfg.PricesURL),
		quote.WithRateLimit(cfg.QuoteRateLimit),
		quote.WithRetry(cfg.QuoteRetryMax, cfg.QuoteRetryBaseDelay),
	)
	historyStart := date.Today().AddMonths(-12 * cfg.QuoteHistoryYears).StartOfYear()
	quotes := quote.NewService(provider, client, quote.NewPgRepository(pool), stores, settings.DefaultCurrency, historyStart)
	if err := quotes.Warm(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	engine := valuation.New(provider, settings)
	slog.Info("budget loaded",
		"assets", len(stores.Assets()),
		"values", len(stores.AssetValues()),
		"currency", settings.DefaultCurrency)

	return &app{
		cfg:       cfg,
		pool:      pool,
		stores:    stores,
		provider:  provider,
		quotes:    quotes,
		engine:    engine,
		snapshots: snapshot.NewService(engine, stores, snapshot.NewPgRepository(pool)),
	}, nil
}

func (a *app) Close() { a.pool.Close() }

// sheetsExporter returns the Google Sheets export, or nil when it is not configured.
func (a *app) sheetsExporter(ctx context.Context) (*export.Service, error) {
	if a.cfg.SpreadsheetID == "" || a.cfg.GoogleCredentials == "" {
		return nil, nil
	}
	w, err := export.NewSheetsWriter(ctx, a.cfg.SpreadsheetID, a.cfg.GoogleCredentials)
	if err != nil {
		return nil, err
	}
	return export.NewService(a.engine, a.stores, w), nil
}

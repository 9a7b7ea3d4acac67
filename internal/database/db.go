package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates a PostgreSQL connection pool.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// Open connects and applies the migrations of fsys.
func Open(ctx context.Context, databaseURL string, fsys fs.FS) (*pgxpool.Pool, error) {
	pool, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, pool, fsys); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// pendingMigrations returns the .up.sql files of fsys not yet in applied, in name order.
func pendingMigrations(fsys fs.FS, applied map[string]bool) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasSuffix(name, ".up.sql") && !applied[name] {
			pending = append(pending, name)
		}
	}
	slices.Sort(pending)
	return pending, nil
}

// RunMigrations applies all .up.sql migration files from the given filesystem.
// Each file runs in its own transaction together with its schema_migrations
// row, so a failing migration leaves no trace and is retried on the next start.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT        PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	rows, err := pool.Query(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("reading applied migrations: %w", err)
	}
	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("scanning migration name: %w", err)
		}
		applied[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating applied migrations: %w", err)
	}

	pending, err := pendingMigrations(fsys, applied)
	if err != nil {
		return err
	}

	for _, file := range pending {
		if err := applyMigration(ctx, pool, fsys, file); err != nil {
			return err
		}
		slog.Info("migration applied", "file", file)
	}
	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, file string) error {
	sql, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", file, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("starting migration %s: %w", file, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("executing migration %s: %w", file, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (filename) VALUES ($1)`, file); err != nil {
		return fmt.Errorf("recording migration %s: %w", file, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing migration %s: %w", file, err)
	}
	return nil
}

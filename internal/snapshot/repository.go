package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/budget/internal/date"
)

// ErrNotFound indicates that the requested snapshot was not found.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a stored daily net worth summary.
type Snapshot struct {
	ID           int             `json:"id"`
	SnapshotDate date.Date       `json:"snapshotDate"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// Summary decodes the stored data.
func (s Snapshot) Summary() (Summary, error) {
	var sum Summary
	if err := json.Unmarshal(s.Data, &sum); err != nil {
		return Summary{}, fmt.Errorf("decoding snapshot %s: %w", s.SnapshotDate, err)
	}
	return sum, nil
}

// Repository defines persistent storage for snapshots.
type Repository interface {
	Save(ctx context.Context, d date.Date, data json.RawMessage) error
	GetLatest(ctx context.Context) (*Snapshot, error)
	GetByDate(ctx context.Context, d date.Date) (*Snapshot, error)
	List(ctx context.Context, limit int) ([]Snapshot, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL snapshot repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, d date.Date, data json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO networth_snapshots (snapshot_date, data)
		 VALUES ($1, $2::jsonb)
		 ON CONFLICT (snapshot_date)
		 DO UPDATE SET data = $2::jsonb, created_at = now()`,
		d, data)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (r *PgRepository) GetLatest(ctx context.Context) (*Snapshot, error) {
	var s Snapshot
	err := r.pool.QueryRow(ctx,
		`SELECT id, snapshot_date, data, created_at
		 FROM networth_snapshots
		 ORDER BY snapshot_date DESC
		 LIMIT 1`).Scan(&s.ID, &s.SnapshotDate, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return &s, nil
}

func (r *PgRepository) GetByDate(ctx context.Context, d date.Date) (*Snapshot, error) {
	var s Snapshot
	err := r.pool.QueryRow(ctx,
		`SELECT id, snapshot_date, data, created_at
		 FROM networth_snapshots
		 WHERE snapshot_date = $1`, d).Scan(&s.ID, &s.SnapshotDate, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting snapshot by date: %w", err)
	}
	return &s, nil
}

func (r *PgRepository) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, snapshot_date, data, created_at
		 FROM networth_snapshots
		 ORDER BY snapshot_date DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.SnapshotDate, &s.Data, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snapshots, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Kind names a record collection in persistent storage.
type Kind string

const (
	KindAccount    Kind = "account"
	KindExpense    Kind = "expense"
	KindEarning    Kind = "earning"
	KindIncome     Kind = "income"
	KindAsset      Kind = "asset"
	KindLiability  Kind = "liability"
	KindAssetClass Kind = "asset_class"
	KindAssetValue Kind = "asset_value"
	KindAssetShare Kind = "asset_share"
	KindObjective  Kind = "objective"
)

// Repository defines persistent storage for records.
type Repository interface {
	Save(ctx context.Context, kind Kind, id int, data json.RawMessage) error
	Delete(ctx context.Context, kind Kind, id int) error
	LoadAll(ctx context.Context, kind Kind) ([]json.RawMessage, error)
}

// PgRepository implements Repository with PostgreSQL, one JSONB row per record.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL record repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Save(ctx context.Context, kind Kind, id int, data json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO records (kind, id, data, updated_at)
		 VALUES ($1, $2, $3::jsonb, NOW())
		 ON CONFLICT (kind, id)
		 DO UPDATE SET data = $3::jsonb, updated_at = NOW()`,
		string(kind), id, data)
	if err != nil {
		return fmt.Errorf("saving %s %d: %w", kind, id, err)
	}
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, kind Kind, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM records WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", kind, id, err)
	}
	return nil
}

func (r *PgRepository) LoadAll(ctx context.Context, kind Kind) ([]json.RawMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT data FROM records WHERE kind = $1 ORDER BY id`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("loading %s records: %w", kind, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var data json.RawMessage
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", kind, err)
		}
		out = append(out, data)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s records: %w", kind, err)
	}
	return out, nil
}

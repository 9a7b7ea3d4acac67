package quote

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/date"
)

// Kind separates exchange rates from share prices in storage.
type Kind string

const (
	KindRate  Kind = "rate"
	KindPrice Kind = "price"
)

// Quote is one persisted daily quote.
type Quote struct {
	Kind   Kind            `json:"kind"`
	Symbol string          `json:"symbol"`
	Date   date.Date       `json:"date"`
	Value  decimal.Decimal `json:"value"`
}

// Repository defines persistent storage for quotes.
type Repository interface {
	SaveQuotes(ctx context.Context, quotes []Quote) error
	LoadQuotes(ctx context.Context, kind Kind) ([]Quote, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL quote repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) SaveQuotes(ctx context.Context, quotes []Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(
			`INSERT INTO quotes (kind, symbol, quote_date, value)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (kind, symbol, quote_date) DO UPDATE SET value = $4`,
			string(q.Kind), q.Symbol, q.Date, q.Value)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving %d quotes: %w", len(quotes), err)
	}
	return nil
}

func (r *PgRepository) LoadQuotes(ctx context.Context, kind Kind) ([]Quote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT kind, symbol, quote_date, value FROM quotes WHERE kind = $1 ORDER BY symbol, quote_date`,
		string(kind))
	if err != nil {
		return nil, fmt.Errorf("loading %s quotes: %w", kind, err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		var q Quote
		var k string
		if err := rows.Scan(&k, &q.Symbol, &q.Date, &q.Value); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		q.Kind = Kind(k)
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

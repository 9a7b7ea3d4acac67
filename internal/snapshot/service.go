package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/valuation"
)

// Summary is the point-in-time valuation stored in a snapshot.
type Summary struct {
	Date        date.Date         `json:"date"`
	Currency    string            `json:"currency"`
	NetWorth    domain.Money      `json:"netWorth"`
	FINetWorth  domain.Money      `json:"fiNetWorth"`
	Portfolio   domain.Money      `json:"portfolio"`
	FIRatio     decimal.Decimal   `json:"fiRatio"`
	SavingsRate decimal.Decimal   `json:"savingsRate"`
	Currencies  []valuation.Share `json:"currencies"`
	Classes     []valuation.Share `json:"classes"`
}

// Summarize values the records of c at d.
func Summarize(e *valuation.Engine, c *cache.Cache, d date.Date) Summary {
	return Summary{
		Date:        d,
		Currency:    e.DefaultCurrency(),
		NetWorth:    e.NetWorth(c, d),
		FINetWorth:  e.FINetWorth(c, d),
		Portfolio:   e.PortfolioValue(c, d),
		FIRatio:     e.FIRatio(c, d),
		SavingsRate: e.RunningSavingsRate(c, d),
		Currencies:  e.CurrencyBreakdown(c, d),
		Classes:     e.ClassBreakdown(c, d),
	}
}

// Service manages snapshot generation and retrieval.
type Service struct {
	engine *valuation.Engine
	source cache.Source
	repo   Repository
}

// NewService creates a new snapshot Service valuing the records of source.
func NewService(engine *valuation.Engine, source cache.Source, repo Repository) *Service {
	return &Service{engine: engine, source: source, repo: repo}
}

// Generate values the records at d from a fresh cache and stores the result.
func (s *Service) Generate(ctx context.Context, d date.Date) (Summary, error) {
	summary := Summarize(s.engine, cache.New(s.source), d)

	data, err := json.Marshal(summary)
	if err != nil {
		return Summary{}, fmt.Errorf("marshaling summary: %w", err)
	}

	if err := s.repo.Save(ctx, d, data); err != nil {
		return Summary{}, fmt.Errorf("saving snapshot: %w", err)
	}

	slog.Info("snapshot generated", "date", d, "net_worth", summary.NetWorth)
	return summary, nil
}

// GetLatest retrieves the most recent snapshot.
func (s *Service) GetLatest(ctx context.Context) (*Snapshot, error) {
	return s.repo.GetLatest(ctx)
}

// GetByDate retrieves the snapshot of a specific date.
func (s *Service) GetByDate(ctx context.Context, d date.Date) (*Snapshot, error) {
	return s.repo.GetByDate(ctx, d)
}

// List retrieves recent snapshots, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, limit)
}

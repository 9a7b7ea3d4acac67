package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/mtlprog/budget/internal/date"
)

// Fetcher retrieves quotes from upstream APIs.
type Fetcher interface {
	FetchRates(ctx context.Context, base string, symbols []string, from, to date.Date) ([]Quote, error)
	FetchPrices(ctx context.Context, ticker string, from, to date.Date) ([]Quote, error)
}

// Symbols lists what needs quotes: the currencies and tickers of the user's assets.
type Symbols interface {
	Currencies() []string
	Tickers() []string
}

// Service keeps the provider tables filled from the persistent cache and upstream APIs.
type Service struct {
	provider     *Provider
	fetcher      Fetcher
	repo         Repository
	symbols      Symbols
	base         string
	historyStart date.Date
	today        func() date.Date
}

// NewService creates a quote service converting into base. Quotes are fetched
// back to historyStart for symbols without any cached history.
func NewService(provider *Provider, fetcher Fetcher, repo Repository, symbols Symbols, base string, historyStart date.Date) *Service {
	return &Service{
		provider:     provider,
		fetcher:      fetcher,
		repo:         repo,
		symbols:      symbols,
		base:         base,
		historyStart: historyStart,
		today:        date.Today,
	}
}

// Warm loads every persisted quote into the provider tables.
func (s *Service) Warm(ctx context.Context) error {
	for kind, table := range map[Kind]*Table{KindRate: s.provider.Rates(), KindPrice: s.provider.Prices()} {
		quotes, err := s.repo.LoadQuotes(ctx, kind)
		if err != nil {
			return fmt.Errorf("warming %s quotes: %w", kind, err)
		}
		for _, q := range quotes {
			table.Set(q.Symbol, q.Date, q.Value)
		}
		slog.Info("quote cache warmed", "kind", kind, "count", len(quotes))
	}
	return nil
}

// Refresh fetches the days missing since the last known quote of every
// currency pair and ticker, stores them and publishes them to the provider.
// A failing symbol does not stop the others.
func (s *Service) Refresh(ctx context.Context) error {
	today := s.today()
	var errs []error

	currencies := lo.Without(s.symbols.Currencies(), s.base)
	if len(currencies) > 0 {
		from := lo.MinBy(lo.Map(currencies, func(c string, _ int) date.Date {
			return s.nextDay(s.provider.Rates(), Pair(s.base, c))
		}), func(a, b date.Date) bool { return a.Before(b) })
		if !from.After(today) {
			quotes, err := s.fetcher.FetchRates(ctx, s.base, currencies, from, today)
			if err != nil {
				errs = append(errs, err)
			} else if err := s.publish(ctx, s.provider.Rates(), quotes); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, ticker := range s.symbols.Tickers() {
		from := s.nextDay(s.provider.Prices(), ticker)
		if from.After(today) {
			continue
		}
		quotes, err := s.fetcher.FetchPrices(ctx, ticker, from, today)
		if err != nil {
			slog.Warn("share price refresh failed", "ticker", ticker, "error", err)
			errs = append(errs, err)
			continue
		}
		if err := s.publish(ctx, s.provider.Prices(), quotes); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (s *Service) nextDay(table *Table, symbol string) date.Date {
	if p, ok := table.Latest(symbol); ok {
		return p.Date.Add(1)
	}
	return s.historyStart
}

func (s *Service) publish(ctx context.Context, table *Table, quotes []Quote) error {
	if err := s.repo.SaveQuotes(ctx, quotes); err != nil {
		return fmt.Errorf("storing quotes: %w", err)
	}
	for _, q := range quotes {
		table.Set(q.Symbol, q.Date, q.Value)
	}
	return nil
}

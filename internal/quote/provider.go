package quote

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/date"
)

const inversePrecision = 10

var one = decimal.NewFromInt(1)

// Provider answers exchange rate and share price lookups from in-memory tables.
// It never blocks on the network; a missing quote resolves to zero.
type Provider struct {
	rates  *Table
	prices *Table
}

func NewProvider() *Provider {
	return &Provider{rates: NewTable(), prices: NewTable()}
}

// Rates holds exchange rates keyed by Pair.
func (p *Provider) Rates() *Table { return p.rates }

// Prices holds share prices keyed by ticker.
func (p *Provider) Prices() *Table { return p.prices }

// Pair returns the rate symbol for converting from into to.
func Pair(from, to string) string { return from + "/" + to }

// ExchangeRate returns how many units of to one unit of from was worth on d.
// Identical currencies convert at 1; a pair only quoted the other way is inverted.
func (p *Provider) ExchangeRate(from, to string, d date.Date) decimal.Decimal {
	if from == to {
		return one
	}
	if r, ok := p.rates.AsOf(Pair(from, to), d); ok {
		return r
	}
	if r, ok := p.rates.AsOf(Pair(to, from), d); ok && !r.IsZero() {
		return one.DivRound(r, inversePrecision)
	}
	slog.Debug("no exchange rate", "from", from, "to", to, "date", d)
	return decimal.Zero
}

// SharePrice returns the unrounded price of ticker on d, or zero when it has no history yet.
func (p *Provider) SharePrice(ticker string, d date.Date) decimal.Decimal {
	v, ok := p.prices.AsOf(ticker, d)
	if !ok {
		slog.Debug("no share price", "ticker", ticker, "date", d)
		return decimal.Zero
	}
	return v
}

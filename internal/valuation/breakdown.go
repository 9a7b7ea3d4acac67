package valuation

import (
	"cmp"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/view"
)

// Share is one slice of a breakdown.
type Share struct {
	Key   string       `json:"key"`
	Value domain.Money `json:"value"`
	// Percent is the part of the breakdown total, 0 to 100 for positive totals.
	Percent decimal.Decimal `json:"percent"`
}

// BreakdownPoint is a breakdown on one day.
type BreakdownPoint struct {
	Date   date.Date `json:"date"`
	Shares []Share   `json:"shares"`
}

func withPercents(shares []Share) []Share {
	total := domain.Sum(lo.Map(shares, func(s Share, _ int) domain.Money { return s.Value })...)
	for i := range shares {
		shares[i].Percent = domain.Ratio(shares[i].Value, total).Mul(hundred)
	}
	return shares
}

// CurrencyBreakdown splits the net worth at d by the currency of the holdings,
// each slice converted to the default currency.
func (e *Engine) CurrencyBreakdown(c *cache.Cache, d date.Date) []Share {
	return e.currencyBreakdown(c, c.UserAssets(), c.Liabilities(), d)
}

// PortfolioCurrencyBreakdown splits the portfolio value at d by currency.
func (e *Engine) PortfolioCurrencyBreakdown(c *cache.Cache, d date.Date) []Share {
	portfolio := slices.Collect(view.IsPortfolio(view.All(c.UserAssets())))
	return e.currencyBreakdown(c, portfolio, nil, d)
}

func (e *Engine) currencyBreakdown(c *cache.Cache, assets []domain.Asset, liabilities []domain.Liability, d date.Date) []Share {
	currencies := lo.Uniq(append(
		lo.Map(assets, func(a domain.Asset, _ int) string { return a.Currency }),
		lo.Map(liabilities, func(l domain.Liability, _ int) string { return l.Currency })...,
	))
	slices.Sort(currencies)

	shares := make([]Share, 0, len(currencies))
	for _, cur := range currencies {
		value := view.Sum(ToValueConv(e, c, view.ByCurrency(view.All(assets), cur), d)).
			Sub(view.Sum(ToValueConv(e, c, view.ByCurrency(view.All(liabilities), cur), d)))
		shares = append(shares, Share{Key: cur, Value: value})
	}
	return withPercents(shares)
}

// ClassBreakdown splits the net worth at d by asset class, in class id order.
func (e *Engine) ClassBreakdown(c *cache.Cache, d date.Date) []Share {
	classes := slices.Clone(c.AssetClasses())
	slices.SortFunc(classes, func(a, b domain.AssetClass) int { return cmp.Compare(a.ID, b.ID) })

	shares := make([]Share, 0, len(classes))
	for _, cl := range classes {
		shares = append(shares, Share{Key: cl.Name, Value: e.ClassValue(c, cl.ID, d)})
	}
	return withPercents(shares)
}

// BreakdownSeries evaluates a breakdown for every day in [from, to].
func (e *Engine) BreakdownSeries(from, to date.Date, fn func(date.Date) []Share) []BreakdownPoint {
	var points []BreakdownPoint
	for d := range date.Days(from, to) {
		points = append(points, BreakdownPoint{Date: d, Shares: fn(d)})
	}
	return points
}

func (e *Engine) CurrencyBreakdownSeries(c *cache.Cache, from, to date.Date) []BreakdownPoint {
	return e.BreakdownSeries(from, to, func(d date.Date) []Share { return e.CurrencyBreakdown(c, d) })
}

func (e *Engine) PortfolioCurrencyBreakdownSeries(c *cache.Cache, from, to date.Date) []BreakdownPoint {
	return e.BreakdownSeries(from, to, func(d date.Date) []Share { return e.PortfolioCurrencyBreakdown(c, d) })
}

func (e *Engine) ClassBreakdownSeries(c *cache.Cache, from, to date.Date) []BreakdownPoint {
	return e.BreakdownSeries(from, to, func(d date.Date) []Share { return e.ClassBreakdown(c, d) })
}

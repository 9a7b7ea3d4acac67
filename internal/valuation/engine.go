// Package valuation reconstructs the value of assets, liabilities and their
// aggregates at any past date.
//
// Every function reads a cache.Cache snapshot and returns plain values. Missing
// data (unknown ids, absent quotes, assets never valued) counts as zero, so an
// aggregate over many assets is never aborted by one of them.
package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
)

// Quotes supplies exchange rates and share prices, falling back to the most
// recent quote before the requested date.
type Quotes interface {
	ExchangeRate(from, to string, d date.Date) decimal.Decimal
	SharePrice(ticker string, d date.Date) decimal.Decimal
}

// Settings are the user's finance settings.
type Settings struct {
	DefaultCurrency string
	// WithdrawalRate is the safe yearly withdrawal rate, in percent.
	WithdrawalRate decimal.Decimal
	// ExpectedROI is the expected yearly return of the FI net worth, in percent.
	ExpectedROI decimal.Decimal
	// FIExpenses is a fixed yearly expense target. Zero means running expenses are used.
	FIExpenses domain.Money
}

// Engine computes valuations from a quote source and the user settings.
type Engine struct {
	quotes   Quotes
	settings Settings
	today    func() date.Date
}

func New(quotes Quotes, settings Settings) *Engine {
	return &Engine{quotes: quotes, settings: settings, today: date.Today}
}

func (e *Engine) Settings() Settings { return e.settings }

// DefaultCurrency is the currency aggregates are converted to.
func (e *Engine) DefaultCurrency() string { return e.settings.DefaultCurrency }

// Today is the day used when callers do not pass a date.
func (e *Engine) Today() date.Date { return e.today() }

type memoKind uint8

// Native and converted values are memoized under different kinds.
const (
	memoAsset memoKind = iota
	memoLiability
	memoAssetIn
	memoLiabilityIn
)

type memoKey struct {
	kind     memoKind
	id       int
	currency string
	day      date.Date
}

// ShareCount returns the number of shares of the asset held at the end of d.
func (e *Engine) ShareCount(c *cache.Cache, assetID int, d date.Date) decimal.Decimal {
	count := decimal.Zero
	for _, sh := range c.SharesOf(assetID) {
		if sh.Date.After(d) {
			break
		}
		count = count.Add(sh.Shares)
	}
	return count
}

// AssetValue returns the value of a in its own currency at d.
func (e *Engine) AssetValue(c *cache.Cache, a domain.Asset, d date.Date) domain.Money {
	return cache.Memo(c, memoKey{kind: memoAsset, id: a.ID, day: d}, func() domain.Money {
		if a.ShareBased {
			count := e.ShareCount(c, a.ID, d)
			if count.IsZero() {
				return domain.Zero
			}
			return domain.NewMoney(e.quotes.SharePrice(a.Ticker, d).Mul(count))
		}
		return latestValue(c.ValuesOf(a.ID, false), d)
	})
}

// LiabilityValue returns the value of l in its own currency at d.
func (e *Engine) LiabilityValue(c *cache.Cache, l domain.Liability, d date.Date) domain.Money {
	return cache.Memo(c, memoKey{kind: memoLiability, id: l.ID, day: d}, func() domain.Money {
		return latestValue(c.ValuesOf(l.ID, true), d)
	})
}

// latestValue picks the observation with the greatest set date not after d.
// values are ordered by set date then id, so of several observations on the
// same day the one entered last wins.
func latestValue(values []domain.AssetValue, d date.Date) domain.Money {
	i := sort.Search(len(values), func(i int) bool { return values[i].SetDate.After(d) })
	if i == 0 {
		return domain.Zero
	}
	return values[i-1].Amount
}

// AssetValueIn returns the value of a at d converted to currency.
func (e *Engine) AssetValueIn(c *cache.Cache, a domain.Asset, currency string, d date.Date) domain.Money {
	return cache.Memo(c, memoKey{kind: memoAssetIn, id: a.ID, currency: currency, day: d}, func() domain.Money {
		return e.convert(e.AssetValue(c, a, d), a.Currency, currency, d)
	})
}

// AssetValueConv returns the value of a at d in the default currency.
func (e *Engine) AssetValueConv(c *cache.Cache, a domain.Asset, d date.Date) domain.Money {
	return e.AssetValueIn(c, a, e.settings.DefaultCurrency, d)
}

// LiabilityValueIn returns the value of l at d converted to currency.
func (e *Engine) LiabilityValueIn(c *cache.Cache, l domain.Liability, currency string, d date.Date) domain.Money {
	return cache.Memo(c, memoKey{kind: memoLiabilityIn, id: l.ID, currency: currency, day: d}, func() domain.Money {
		return e.convert(e.LiabilityValue(c, l, d), l.Currency, currency, d)
	})
}

// LiabilityValueConv returns the value of l at d in the default currency.
func (e *Engine) LiabilityValueConv(c *cache.Cache, l domain.Liability, d date.Date) domain.Money {
	return e.LiabilityValueIn(c, l, e.settings.DefaultCurrency, d)
}

func (e *Engine) convert(m domain.Money, from, to string, d date.Date) domain.Money {
	if m.IsZero() || from == to {
		return m
	}
	return m.Mul(e.quotes.ExchangeRate(from, to, d))
}

// AssetStartDate returns the earliest day with any value observation or share
// transaction, or today when there are none.
func (e *Engine) AssetStartDate(c *cache.Cache) date.Date {
	var start date.Date
	for _, v := range c.AssetValues() {
		start = earliest(start, v.SetDate)
	}
	for _, sh := range c.AssetShares() {
		start = earliest(start, sh.Date)
	}
	if start.IsZero() {
		return e.today()
	}
	return start
}

// AssetStartDateOf is AssetStartDate restricted to one asset.
func (e *Engine) AssetStartDateOf(c *cache.Cache, a domain.Asset) date.Date {
	var start date.Date
	if values := c.ValuesOf(a.ID, false); len(values) > 0 {
		start = values[0].SetDate
	}
	if shares := c.SharesOf(a.ID); len(shares) > 0 {
		start = earliest(start, shares[0].Date)
	}
	if start.IsZero() {
		return e.today()
	}
	return start
}

func earliest(current, d date.Date) date.Date {
	if current.IsZero() || d.Before(current) {
		return d
	}
	return current
}

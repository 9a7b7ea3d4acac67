package valuation

import (
	"iter"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
)

// Holding is an asset or a liability.
type Holding interface {
	domain.Asset | domain.Liability
}

func (e *Engine) valueOf(c *cache.Cache, h any, currency string, d date.Date) domain.Money {
	switch h := h.(type) {
	case domain.Asset:
		if currency == "" {
			return e.AssetValue(c, h, d)
		}
		return e.AssetValueIn(c, h, currency, d)
	case domain.Liability:
		if currency == "" {
			return e.LiabilityValue(c, h, d)
		}
		return e.LiabilityValueIn(c, h, currency, d)
	}
	return domain.Zero
}

// ToValue projects holdings to their value at d in their own currency.
func ToValue[T Holding](e *Engine, c *cache.Cache, seq iter.Seq[T], d date.Date) iter.Seq[domain.Money] {
	return func(yield func(domain.Money) bool) {
		for h := range seq {
			if !yield(e.valueOf(c, h, "", d)) {
				return
			}
		}
	}
}

// ToValueConv projects holdings to their value at d in the default currency.
func ToValueConv[T Holding](e *Engine, c *cache.Cache, seq iter.Seq[T], d date.Date) iter.Seq[domain.Money] {
	return func(yield func(domain.Money) bool) {
		for h := range seq {
			if !yield(e.valueOf(c, h, e.settings.DefaultCurrency, d)) {
				return
			}
		}
	}
}

// ExpandValue pairs holdings with their value at d in their own currency.
func ExpandValue[T Holding](e *Engine, c *cache.Cache, seq iter.Seq[T], d date.Date) iter.Seq2[T, domain.Money] {
	return expand(e, c, seq, "", d)
}

// ExpandValueConv pairs holdings with their value at d in the default currency.
func ExpandValueConv[T Holding](e *Engine, c *cache.Cache, seq iter.Seq[T], d date.Date) iter.Seq2[T, domain.Money] {
	return expand(e, c, seq, e.settings.DefaultCurrency, d)
}

func expand[T Holding](e *Engine, c *cache.Cache, seq iter.Seq[T], currency string, d date.Date) iter.Seq2[T, domain.Money] {
	return func(yield func(T, domain.Money) bool) {
		for h := range seq {
			if !yield(h, e.valueOf(c, h, currency, d)) {
				return
			}
		}
	}
}

// NotZero drops pairs whose value is zero.
func NotZero[T any](seq iter.Seq2[T, domain.Money]) iter.Seq2[T, domain.Money] {
	return func(yield func(T, domain.Money) bool) {
		for h, m := range seq {
			if !m.IsZero() && !yield(h, m) {
				return
			}
		}
	}
}

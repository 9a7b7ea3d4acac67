// Package cache provides the request-scoped snapshot of the record stores.
//
// A Cache is created per request, copies a store the first time it is
// queried and keeps returning that copy afterwards. Derived views and
// valuation results are memoized for the same lifetime. A Cache is not
// safe for concurrent use.
package cache

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/mtlprog/budget/internal/domain"
)

// Source supplies snapshots of the record stores.
type Source interface {
	Accounts() []domain.Account
	Expenses() []domain.Expense
	Earnings() []domain.Earning
	Incomes() []domain.Income
	Assets() []domain.Asset
	Liabilities() []domain.Liability
	AssetClasses() []domain.AssetClass
	AssetValues() []domain.AssetValue
	AssetShares() []domain.AssetShare
	Objectives() []domain.Objective
}

type lazy[T any] struct {
	done bool
	v    T
}

func (l *lazy[T]) get(fn func() T) T {
	if !l.done {
		l.v = fn()
		l.done = true
	}
	return l.v
}

type valueKey struct {
	id        int
	liability bool
}

// Cache is a lazily populated, read-only view of the stores for one request.
type Cache struct {
	src Source

	accounts     lazy[[]domain.Account]
	expenses     lazy[[]domain.Expense]
	earnings     lazy[[]domain.Earning]
	incomes      lazy[[]domain.Income]
	assets       lazy[[]domain.Asset]
	activeAssets lazy[[]domain.Asset]
	liabilities  lazy[[]domain.Liability]
	assetClasses lazy[[]domain.AssetClass]
	assetValues  lazy[[]domain.AssetValue]
	assetShares  lazy[[]domain.AssetShare]
	objectives   lazy[[]domain.Objective]

	sortedExpenses lazy[[]domain.Expense]
	sortedEarnings lazy[[]domain.Earning]
	assetByID      lazy[map[int]domain.Asset]
	liabilityByID  lazy[map[int]domain.Liability]
	classByID      lazy[map[int]domain.AssetClass]
	valuesOf       lazy[map[valueKey][]domain.AssetValue]
	sharesOf       lazy[map[int][]domain.AssetShare]

	memo map[any]any
}

// New creates a cache over src. A nil src behaves as empty stores.
func New(src Source) *Cache {
	return &Cache{src: src, memo: make(map[any]any)}
}

func snapshot[T any](c *Cache, fn func(Source) []T) func() []T {
	return func() []T {
		if c.src == nil {
			return nil
		}
		return fn(c.src)
	}
}

func (c *Cache) Accounts() []domain.Account {
	return c.accounts.get(snapshot(c, Source.Accounts))
}

func (c *Cache) Expenses() []domain.Expense {
	return c.expenses.get(snapshot(c, Source.Expenses))
}

func (c *Cache) Earnings() []domain.Earning {
	return c.earnings.get(snapshot(c, Source.Earnings))
}

func (c *Cache) Incomes() []domain.Income {
	return c.incomes.get(snapshot(c, Source.Incomes))
}

// UserAssets returns every asset of the user.
func (c *Cache) UserAssets() []domain.Asset {
	return c.assets.get(snapshot(c, Source.Assets))
}

// ActiveUserAssets returns the assets flagged active.
func (c *Cache) ActiveUserAssets() []domain.Asset {
	return c.activeAssets.get(func() []domain.Asset {
		return lo.Filter(c.UserAssets(), func(a domain.Asset, _ int) bool { return a.Active })
	})
}

func (c *Cache) Liabilities() []domain.Liability {
	return c.liabilities.get(snapshot(c, Source.Liabilities))
}

func (c *Cache) AssetClasses() []domain.AssetClass {
	return c.assetClasses.get(snapshot(c, Source.AssetClasses))
}

func (c *Cache) AssetValues() []domain.AssetValue {
	return c.assetValues.get(snapshot(c, Source.AssetValues))
}

func (c *Cache) AssetShares() []domain.AssetShare {
	return c.assetShares.get(snapshot(c, Source.AssetShares))
}

func (c *Cache) Objectives() []domain.Objective {
	return c.objectives.get(snapshot(c, Source.Objectives))
}

// SortedExpenses returns expenses ordered by descending frequency of their
// name; names used equally often are ordered alphabetically.
func (c *Cache) SortedExpenses() []domain.Expense {
	return c.sortedExpenses.get(func() []domain.Expense {
		return byNameFrequency(c.Expenses(), func(e domain.Expense) string { return e.Name })
	})
}

// SortedEarnings is SortedExpenses for earnings.
func (c *Cache) SortedEarnings() []domain.Earning {
	return c.sortedEarnings.get(func() []domain.Earning {
		return byNameFrequency(c.Earnings(), func(e domain.Earning) string { return e.Name })
	})
}

func byNameFrequency[T any](items []T, name func(T) string) []T {
	freq := lo.CountValuesBy(items, name)
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		na, nb := name(a), name(b)
		if c := cmp.Compare(freq[nb], freq[na]); c != 0 {
			return c
		}
		return cmp.Compare(na, nb)
	})
	return sorted
}

// Asset looks up an asset by id.
func (c *Cache) Asset(id int) (domain.Asset, bool) {
	byID := c.assetByID.get(func() map[int]domain.Asset {
		return lo.KeyBy(c.UserAssets(), func(a domain.Asset) int { return a.ID })
	})
	a, ok := byID[id]
	return a, ok
}

// Liability looks up a liability by id.
func (c *Cache) Liability(id int) (domain.Liability, bool) {
	byID := c.liabilityByID.get(func() map[int]domain.Liability {
		return lo.KeyBy(c.Liabilities(), func(l domain.Liability) int { return l.ID })
	})
	l, ok := byID[id]
	return l, ok
}

// AssetClass looks up an asset class by id.
func (c *Cache) AssetClass(id int) (domain.AssetClass, bool) {
	byID := c.classByID.get(func() map[int]domain.AssetClass {
		return lo.KeyBy(c.AssetClasses(), func(cl domain.AssetClass) int { return cl.ID })
	})
	cl, ok := byID[id]
	return cl, ok
}

// ValuesOf returns the value observations of one asset (or liability when
// liability is set), ordered by set date and then by id.
func (c *Cache) ValuesOf(id int, liability bool) []domain.AssetValue {
	index := c.valuesOf.get(func() map[valueKey][]domain.AssetValue {
		grouped := lo.GroupBy(c.AssetValues(), func(v domain.AssetValue) valueKey {
			return valueKey{id: v.AssetID, liability: v.Liability}
		})
		for _, values := range grouped {
			slices.SortFunc(values, func(a, b domain.AssetValue) int {
				if n := a.SetDate.Compare(b.SetDate); n != 0 {
					return n
				}
				return cmp.Compare(a.ID, b.ID)
			})
		}
		return grouped
	})
	return index[valueKey{id: id, liability: liability}]
}

// SharesOf returns the share transactions of one asset ordered by date and then by id.
func (c *Cache) SharesOf(assetID int) []domain.AssetShare {
	index := c.sharesOf.get(func() map[int][]domain.AssetShare {
		grouped := lo.GroupBy(c.AssetShares(), func(s domain.AssetShare) int { return s.AssetID })
		for _, shares := range grouped {
			slices.SortFunc(shares, func(a, b domain.AssetShare) int {
				if n := a.Date.Compare(b.Date); n != 0 {
					return n
				}
				return cmp.Compare(a.ID, b.ID)
			})
		}
		return grouped
	})
	return index[assetID]
}

// Memo returns the value stored under key, computing it with fn on first use.
// key must be comparable; callers use their own key types to avoid collisions.
func Memo[T any](c *Cache, key any, fn func() T) T {
	if v, ok := c.memo[key]; ok {
		return v.(T)
	}
	v := fn()
	c.memo[key] = v
	return v
}

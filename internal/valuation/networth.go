package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/view"
)

// NetWorth is the converted value of all assets minus all liabilities at d.
func (e *Engine) NetWorth(c *cache.Cache, d date.Date) domain.Money {
	assets := view.Sum(ToValueConv(e, c, view.All(c.UserAssets()), d))
	liabilities := view.Sum(ToValueConv(e, c, view.All(c.Liabilities()), d))
	return assets.Sub(liabilities)
}

// FINetWorth is NetWorth with every holding weighted by the share of its
// allocation that goes to FI classes.
func (e *Engine) FINetWorth(c *cache.Cache, d date.Date) domain.Money {
	fi := make(map[int]bool)
	for _, cl := range c.AssetClasses() {
		if cl.FI {
			fi[cl.ID] = true
		}
	}
	weight := func(alloc domain.Allocation) decimal.Decimal {
		w := decimal.Zero
		for id, p := range alloc {
			if fi[id] {
				w = w.Add(p)
			}
		}
		return w
	}

	total := domain.Zero
	for a, v := range ExpandValueConv(e, c, view.All(c.UserAssets()), d) {
		total = total.Add(v.MulPercent(weight(a.Classes)))
	}
	for l, v := range ExpandValueConv(e, c, view.All(c.Liabilities()), d) {
		total = total.Sub(v.MulPercent(weight(l.Classes)))
	}
	return total
}

// PortfolioValue is the converted value of the portfolio assets at d.
func (e *Engine) PortfolioValue(c *cache.Cache, d date.Date) domain.Money {
	return view.Sum(ToValueConv(e, c, view.IsPortfolio(view.All(c.UserAssets())), d))
}

// ClassValue is the converted value allocated to one asset class at d,
// liabilities deducted.
func (e *Engine) ClassValue(c *cache.Cache, classID int, d date.Date) domain.Money {
	total := domain.Zero
	for a, v := range ExpandValueConv(e, c, view.All(c.UserAssets()), d) {
		total = total.Add(v.MulPercent(a.Classes.Of(classID)))
	}
	for l, v := range ExpandValueConv(e, c, view.All(c.Liabilities()), d) {
		total = total.Sub(v.MulPercent(l.Classes.Of(classID)))
	}
	return total
}

// Point is one day of a valuation series.
type Point struct {
	Date  date.Date    `json:"date"`
	Value domain.Money `json:"value"`
}

// Series evaluates fn for every day in [from, to].
func (e *Engine) Series(from, to date.Date, fn func(date.Date) domain.Money) []Point {
	var points []Point
	for d := range date.Days(from, to) {
		points = append(points, Point{Date: d, Value: fn(d)})
	}
	return points
}

// NetWorthSeries is the daily net worth from the first observation to to.
func (e *Engine) NetWorthSeries(c *cache.Cache, to date.Date) []Point {
	return e.Series(e.AssetStartDate(c), to, func(d date.Date) domain.Money { return e.NetWorth(c, d) })
}

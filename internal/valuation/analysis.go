package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/view"
)

// maxCountdownMonths bounds the retirement projection to a century.
const maxCountdownMonths = 1200

// NetWorthAccrual returns the net worth change of every month after the first
// observed one, up to the month of to. Each point is dated on the first of its month.
func (e *Engine) NetWorthAccrual(c *cache.Cache, to date.Date) []Point {
	var points []Point
	for m := range date.Months(e.AssetStartDate(c).AddMonths(1), to) {
		end := date.Min(m.EndOfMonth(), to)
		points = append(points, Point{Date: m, Value: e.NetWorth(c, end).Sub(e.NetWorth(c, m))})
	}
	return points
}

// Growth is the month-to-date and year-to-date change of a valuation.
type Growth struct {
	Current    domain.Money    `json:"current"`
	MonthStart domain.Money    `json:"monthStart"`
	YearStart  domain.Money    `json:"yearStart"`
	MTDChange  domain.Money    `json:"mtdChange"`
	YTDChange  domain.Money    `json:"ytdChange"`
	MTDPercent decimal.Decimal `json:"mtdPercent"`
	YTDPercent decimal.Decimal `json:"ytdPercent"`
}

// Growth measures fn at d against the first day of d's month and year.
func (e *Engine) Growth(d date.Date, fn func(date.Date) domain.Money) Growth {
	g := Growth{
		Current:    fn(d),
		MonthStart: fn(d.StartOfMonth()),
		YearStart:  fn(d.StartOfYear()),
	}
	g.MTDChange = g.Current.Sub(g.MonthStart)
	g.YTDChange = g.Current.Sub(g.YearStart)
	g.MTDPercent = domain.Ratio(g.MTDChange, g.MonthStart).Mul(hundred)
	g.YTDPercent = domain.Ratio(g.YTDChange, g.YearStart).Mul(hundred)
	return g
}

// RebalanceItem compares a portfolio asset with its target allocation.
type RebalanceItem struct {
	AssetID        int             `json:"assetId"`
	Name           string          `json:"name"`
	Current        domain.Money    `json:"current"`
	CurrentPercent decimal.Decimal `json:"currentPercent"`
	TargetPercent  decimal.Decimal `json:"targetPercent"`
	Target         domain.Money    `json:"target"`
	// Delta is what to buy (positive) or sell (negative) to reach the target.
	Delta domain.Money `json:"delta"`
}

// Rebalance lists the portfolio assets that hold value or have a target,
// with the converted amounts needed to reach their target allocation at d.
func (e *Engine) Rebalance(c *cache.Cache, d date.Date) []RebalanceItem {
	total := e.PortfolioValue(c, d)

	var items []RebalanceItem
	for a, v := range ExpandValueConv(e, c, view.IsPortfolio(view.All(c.UserAssets())), d) {
		if v.IsZero() && a.PortfolioAlloc.IsZero() {
			continue
		}
		target := total.MulPercent(a.PortfolioAlloc)
		items = append(items, RebalanceItem{
			AssetID:        a.ID,
			Name:           a.Name,
			Current:        v,
			CurrentPercent: domain.Ratio(v, total).Mul(hundred),
			TargetPercent:  a.PortfolioAlloc,
			Target:         target,
			Delta:          target.Sub(v),
		})
	}
	return items
}

// Countdown is the projected time until the FI net worth reaches the FI goal.
type Countdown struct {
	// Available is false when there are no expenses or no withdrawal rate to project from.
	Available  bool         `json:"available"`
	Reached    bool         `json:"reached"`
	Reachable  bool         `json:"reachable"`
	FINetWorth domain.Money `json:"fiNetWorth"`
	Goal       domain.Money `json:"goal"`
	Months     int          `json:"months"`
	Years      int          `json:"years"`
	// RemainingMonths is Months minus whole Years.
	RemainingMonths int `json:"remainingMonths"`
}

// RetirementCountdown projects, month by month from d, the FI net worth
// growing at the expected return plus the running savings, until it covers the
// yearly FI expenses divided by the withdrawal rate.
func (e *Engine) RetirementCountdown(c *cache.Cache, d date.Date) Countdown {
	expenses := e.FIExpenses(c, d)
	wrate := e.settings.WithdrawalRate
	if !expenses.IsPositive() || !wrate.IsPositive() {
		return Countdown{}
	}

	nw := e.FINetWorth(c, d)
	goal := domain.NewMoney(expenses.Decimal().Mul(hundred).Div(wrate))
	cd := Countdown{Available: true, Reachable: true, FINetWorth: nw, Goal: goal}
	if nw.GreaterThanOrEqual(goal) {
		cd.Reached = true
		return cd
	}

	twelve := decimal.NewFromInt(12)
	growth := decimal.NewFromInt(1).Add(e.settings.ExpectedROI.Div(hundred).Div(twelve))
	savings := domain.Zero
	if income := e.RunningIncome(c, d); income.IsPositive() {
		savings = income.Sub(e.RunningExpenses(c, d)).Div(twelve)
	}

	months := 0
	for current := nw; current.LessThan(goal); months++ {
		if months == maxCountdownMonths {
			cd.Reachable = false
			return cd
		}
		current = current.Mul(growth).Add(savings)
	}
	cd.Months = months
	cd.Years = months / 12
	cd.RemainingMonths = months % 12
	return cd
}

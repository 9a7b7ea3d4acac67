package valuation

import (
	"iter"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/view"
)

var hundred = decimal.NewFromInt(100)

// window returns the twelve months ending at d.
func window(d date.Date) (date.Date, date.Date) {
	return d.AddMonths(-12).Add(1), d
}

func confirmed[T view.Flagged](seq iter.Seq[T]) iter.Seq[T] {
	return view.Persistent(view.NotTemplate(seq))
}

// RunningExpenses is the total of the expenses of the twelve months ending at d.
func (e *Engine) RunningExpenses(c *cache.Cache, d date.Date) domain.Money {
	from, to := window(d)
	return view.Sum(view.ToAmount(view.Between(confirmed(view.All(c.Expenses())), from, to)))
}

// BaseIncome is the monthly income in effect at d. When several incomes
// overlap, the one entered last wins.
func (e *Engine) BaseIncome(c *cache.Cache, d date.Date) domain.Money {
	incomes := c.Incomes()
	for i := len(incomes) - 1; i >= 0; i-- {
		if incomes[i].ActiveOn(d) {
			return incomes[i].Amount
		}
	}
	return domain.Zero
}

// RunningIncome is the base income plus earnings of the twelve months ending at d.
func (e *Engine) RunningIncome(c *cache.Cache, d date.Date) domain.Money {
	from, to := window(d)
	total := view.Sum(view.ToAmount(view.Between(confirmed(view.All(c.Earnings())), from, to)))
	for i := range 12 {
		total = total.Add(e.BaseIncome(c, d.AddMonths(-i)))
	}
	return total
}

// RunningSavingsRate is the share of the running income that was not spent,
// as a fraction. It is zero without income.
func (e *Engine) RunningSavingsRate(c *cache.Cache, d date.Date) decimal.Decimal {
	income := e.RunningIncome(c, d)
	return domain.Ratio(income.Sub(e.RunningExpenses(c, d)), income)
}

// FIExpenses returns the yearly expenses FI is measured against at d.
func (e *Engine) FIExpenses(c *cache.Cache, d date.Date) domain.Money {
	if e.settings.FIExpenses.IsPositive() {
		return e.settings.FIExpenses
	}
	return e.RunningExpenses(c, d)
}

// FIRatio is the share of the yearly expenses the FI net worth sustains at
// the withdrawal rate: 1 means financially independent.
func (e *Engine) FIRatio(c *cache.Cache, d date.Date) decimal.Decimal {
	return e.FixedFIRatio(c, d, e.FIExpenses(c, d))
}

// FixedFIRatio is FIRatio against a given yearly expense figure.
func (e *Engine) FixedFIRatio(c *cache.Cache, d date.Date, yearlyExpenses domain.Money) decimal.Decimal {
	sustainable := e.FINetWorth(c, d).MulPercent(e.settings.WithdrawalRate)
	return domain.Ratio(sustainable, yearlyExpenses)
}

// ObjectiveStatus is the evaluation of an objective over its current period.
type ObjectiveStatus struct {
	Objective domain.Objective `json:"objective"`
	From      date.Date        `json:"from"`
	To        date.Date        `json:"to"`
	Value     decimal.Decimal  `json:"value"`
	Success   bool             `json:"success"`
}

// Objective evaluates o over the month or the year containing d, up to d.
func (e *Engine) Objective(c *cache.Cache, o domain.Objective, d date.Date) ObjectiveStatus {
	from := d.StartOfMonth()
	if o.Type == domain.ObjectiveYearly {
		from = d.StartOfYear()
	}

	expenses := view.Sum(view.ToAmount(view.Between(confirmed(view.All(c.Expenses())), from, d)))
	income := view.Sum(view.ToAmount(view.Between(confirmed(view.All(c.Earnings())), from, d)))
	for m := range date.Months(from, d) {
		income = income.Add(e.BaseIncome(c, m))
	}

	var value decimal.Decimal
	switch o.Source {
	case domain.SourceExpenses:
		value = expenses.Decimal()
	case domain.SourceEarnings:
		value = income.Decimal()
	case domain.SourceBalance:
		value = income.Sub(expenses).Decimal()
	case domain.SourceSavingsRate:
		value = domain.Ratio(income.Sub(expenses), income).Mul(hundred)
	}

	success := value.GreaterThanOrEqual(o.Amount.Decimal())
	if o.Operator == domain.OperatorMax {
		success = value.LessThanOrEqual(o.Amount.Decimal())
	}
	return ObjectiveStatus{Objective: o, From: from, To: d, Value: value, Success: success}
}

package valuation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/quote"
)

func expense(id int, day, amount string) domain.Expense {
	return domain.Expense{Transaction: domain.Transaction{ID: id, Date: date.MustParse(day), Name: "e", Amount: domain.MustMoney(amount)}}
}

func earning(id int, day, amount string) domain.Earning {
	return domain.Earning{Transaction: domain.Transaction{ID: id, Date: date.MustParse(day), Name: "b", Amount: domain.MustMoney(amount)}}
}

func budgetFixture() *fixture {
	tmpl := expense(4, "2024-06-01", "999")
	tmpl.Template = true
	pending := expense(5, "2024-06-01", "888")
	pending.Temporary = true
	return &fixture{
		expenses: []domain.Expense{
			expense(1, "2023-06-30", "500"), // just outside the window ending 2024-06-30
			expense(2, "2023-07-01", "1000"),
			expense(3, "2024-06-15", "200"),
			tmpl, pending,
		},
		earnings: []domain.Earning{earning(1, "2024-03-01", "600")},
		incomes: []domain.Income{
			{ID: 1, Amount: domain.MustMoney("100"), Since: date.MustParse("2020-01-01")},
			{ID: 2, Amount: domain.MustMoney("300"), Since: date.MustParse("2024-01-01")},
		},
	}
}

func TestRunningExpensesWindow(t *testing.T) {
	e := newEngine(quote.NewProvider(), settings())
	assertMoney(t, "running expenses", e.RunningExpenses(cache.New(budgetFixture()), d("2024-06-30")), "1200.00")
}

func TestBaseIncomeLastEnteredWins(t *testing.T) {
	e := newEngine(quote.NewProvider(), settings())
	c := cache.New(budgetFixture())
	assertMoney(t, "base income 2023", e.BaseIncome(c, d("2023-05-01")), "100.00")
	assertMoney(t, "base income 2024", e.BaseIncome(c, d("2024-05-01")), "300.00")
	assertMoney(t, "before any income", e.BaseIncome(c, d("2019-01-01")), "0.00")
}

func TestRunningIncomeAndSavingsRate(t *testing.T) {
	e := newEngine(quote.NewProvider(), settings())
	c := cache.New(budgetFixture())
	// Jul-Dec 2023 at 100, Jan-Jun 2024 at 300, plus a 600 earning.
	assertMoney(t, "running income", e.RunningIncome(c, d("2024-06-30")), "3000.00")
	// (3000 - 1200) / 3000
	if r := e.RunningSavingsRate(c, d("2024-06-30")); !r.Equal(decimal.RequireFromString("0.6")) {
		t.Errorf("savings rate = %s, want 0.6", r)
	}
	if r := e.RunningSavingsRate(cache.New(&fixture{}), d("2024-06-30")); !r.IsZero() {
		t.Errorf("savings rate without income = %s, want 0", r)
	}
}

func fiFixture() *fixture {
	f := budgetFixture()
	f.assetClasses = []domain.AssetClass{{ID: 1, Name: "Stocks", FI: true}}
	f.assets = []domain.Asset{{ID: 1, Currency: "EUR", Classes: domain.Allocation{1: pct(100)}}}
	f.value(1, 1, "2024-01-01", "30000")
	return f
}

func TestFIRatio(t *testing.T) {
	e := newEngine(quote.NewProvider(), settings())
	c := cache.New(fiFixture())
	// 30000 * 4% = 1200 sustains exactly the running expenses.
	if r := e.FIRatio(c, d("2024-06-30")); !r.Equal(decimal.NewFromInt(1)) {
		t.Errorf("FI ratio = %s, want 1", r)
	}
	if r := e.FixedFIRatio(c, d("2024-06-30"), domain.MustMoney("2400")); !r.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("fixed FI ratio = %s, want 0.5", r)
	}
	if r := e.FIRatio(cache.New(&fixture{}), d("2024-06-30")); !r.IsZero() {
		t.Errorf("FI ratio without expenses = %s, want 0", r)
	}

	s := settings()
	s.FIExpenses = domain.MustMoney("4800")
	fixed := newEngine(quote.NewProvider(), s)
	if r := fixed.FIRatio(c, d("2024-06-30")); !r.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("FI ratio with configured expenses = %s, want 0.25", r)
	}
}

func TestRetirementCountdown(t *testing.T) {
	s := settings()
	s.ExpectedROI = decimal.Zero
	e := newEngine(quote.NewProvider(), s)
	c := cache.New(fiFixture())

	// Goal 1200 / 4% = 30000 is already covered.
	if cd := e.RetirementCountdown(c, d("2024-06-30")); !cd.Available || !cd.Reached {
		t.Errorf("countdown = %+v, want reached", cd)
	}

	s.FIExpenses = domain.MustMoney("1272")
	e = newEngine(quote.NewProvider(), s)
	// Goal 31800, savings (3000 - 1200) / 12 = 150 a month: 12 months.
	cd := e.RetirementCountdown(c, d("2024-06-30"))
	if !cd.Available || cd.Reached || !cd.Reachable {
		t.Fatalf("countdown = %+v", cd)
	}
	if cd.Months != 12 || cd.Years != 1 || cd.RemainingMonths != 0 {
		t.Errorf("countdown = %d months (%dy %dm), want 12", cd.Months, cd.Years, cd.RemainingMonths)
	}
	assertMoney(t, "goal", cd.Goal, "31800.00")
}

func TestRetirementCountdownUnavailable(t *testing.T) {
	e := newEngine(quote.NewProvider(), settings())
	if cd := e.RetirementCountdown(cache.New(&fixture{}), d("2024-06-30")); cd.Available {
		t.Errorf("countdown without expenses = %+v, want unavailable", cd)
	}

	f := &fixture{expenses: []domain.Expense{expense(1, "2024-06-01", "1000")}}
	s := settings()
	s.ExpectedROI = decimal.Zero
	cd := newEngine(quote.NewProvider(), s).RetirementCountdown(cache.New(f), d("2024-06-30"))
	if !cd.Available || cd.Reachable {
		t.Errorf("countdown without savings or returns = %+v, want unreachable", cd)
	}
}

func TestObjective(t *testing.T) {
	e := newEngine(quote.NewProvider(), settings())
	c := cache.New(budgetFixture())

	tests := []struct {
		name    string
		obj     domain.Objective
		want    string
		success bool
	}{
		{"monthly expenses max", domain.Objective{Type: domain.ObjectiveMonthly, Source: domain.SourceExpenses, Operator: domain.OperatorMax, Amount: domain.MustMoney("250")}, "200", true},
		{"yearly earnings min", domain.Objective{Type: domain.ObjectiveYearly, Source: domain.SourceEarnings, Operator: domain.OperatorMin, Amount: domain.MustMoney("3000")}, "2400", false},
		{"monthly balance min", domain.Objective{Type: domain.ObjectiveMonthly, Source: domain.SourceBalance, Operator: domain.OperatorMin, Amount: domain.MustMoney("100")}, "100", true},
		{"monthly savings rate min", domain.Objective{Type: domain.ObjectiveMonthly, Source: domain.SourceSavingsRate, Operator: domain.OperatorMin, Amount: domain.MustMoney("50")}, "33.3333", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := e.Objective(c, tt.obj, d("2024-06-20"))
			if !st.Value.Equal(decimal.RequireFromString(tt.want)) || st.Success != tt.success {
				t.Errorf("status = %s / %v, want %s / %v", st.Value, st.Success, tt.want, tt.success)
			}
		})
	}
}

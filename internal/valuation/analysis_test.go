package valuation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/quote"
	"github.com/mtlprog/budget/internal/view"
)

func classFixture() *fixture {
	f := &fixture{
		assetClasses: []domain.AssetClass{{ID: 1, Name: "Stocks", FI: true}, {ID: 2, Name: "Real estate"}},
		assets: []domain.Asset{
			{ID: 1, Name: "ETF", Currency: "EUR", Portfolio: true, PortfolioAlloc: pct(60), Classes: domain.Allocation{1: pct(100)}},
			{ID: 2, Name: "Flat", Currency: "EUR", Classes: domain.Allocation{2: pct(100)}},
			{ID: 3, Name: "Fund", Currency: "USD", Portfolio: true, PortfolioAlloc: pct(40), Classes: domain.Allocation{1: pct(50), 2: pct(50)}},
		},
		liabilities: []domain.Liability{{ID: 1, Name: "Mortgage", Currency: "EUR", Classes: domain.Allocation{2: pct(100)}}},
	}
	f.value(1, 1, "2024-01-01", "1000")
	f.value(2, 2, "2024-01-01", "3000")
	f.value(3, 3, "2024-01-01", "1000")
	f.liabilityValue(4, 1, "2024-01-01", "2000")
	return f
}

func classProvider() *quote.Provider {
	p := quote.NewProvider()
	p.Rates().Set(quote.Pair("USD", "EUR"), d("2024-01-01"), decimal.RequireFromString("0.5"))
	return p
}

func TestFINetWorthWeightsByFIClasses(t *testing.T) {
	e := newEngine(classProvider(), settings())
	// ETF 1000 fully FI, Fund 500 EUR half FI.
	assertMoney(t, "FI net worth", e.FINetWorth(cache.New(classFixture()), d("2024-02-01")), "1250.00")
}

func TestClassValue(t *testing.T) {
	e := newEngine(classProvider(), settings())
	c := cache.New(classFixture())
	assertMoney(t, "stocks", e.ClassValue(c, 1, d("2024-02-01")), "1250.00")
	// Flat 3000 + half Fund 250 - mortgage 2000.
	assertMoney(t, "real estate", e.ClassValue(c, 2, d("2024-02-01")), "1250.00")
	assertMoney(t, "unknown class", e.ClassValue(c, 9, d("2024-02-01")), "0.00")
}

func TestBreakdowns(t *testing.T) {
	e := newEngine(classProvider(), settings())
	c := cache.New(classFixture())

	cur := e.CurrencyBreakdown(c, d("2024-02-01"))
	if len(cur) != 2 || cur[0].Key != "EUR" || cur[1].Key != "USD" {
		t.Fatalf("currency breakdown = %+v", cur)
	}
	assertMoney(t, "EUR slice", cur[0].Value, "2000.00")
	assertMoney(t, "USD slice", cur[1].Value, "500.00")
	if !cur[0].Percent.Equal(pct(80)) {
		t.Errorf("EUR percent = %s, want 80", cur[0].Percent)
	}

	port := e.PortfolioCurrencyBreakdown(c, d("2024-02-01"))
	assertMoney(t, "portfolio EUR", port[0].Value, "1000.00")

	classes := e.ClassBreakdown(c, d("2024-02-01"))
	if len(classes) != 2 || classes[0].Key != "Stocks" || !classes[1].Percent.Equal(pct(50)) {
		t.Errorf("class breakdown = %+v", classes)
	}

	series := e.ClassBreakdownSeries(c, d("2023-12-31"), d("2024-01-01"))
	if len(series) != 2 || !series[0].Shares[0].Value.IsZero() {
		t.Errorf("class breakdown series = %+v", series)
	}
}

func TestRebalance(t *testing.T) {
	e := newEngine(classProvider(), settings())
	items := e.Rebalance(cache.New(classFixture()), d("2024-02-01"))
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	// Portfolio is 1500: ETF 1000 targets 900, Fund 500 targets 600.
	assertMoney(t, "ETF delta", items[0].Delta, "-100.00")
	assertMoney(t, "Fund delta", items[1].Delta, "100.00")
	if !items[1].TargetPercent.Equal(pct(40)) {
		t.Errorf("Fund target percent = %s", items[1].TargetPercent)
	}
}

func TestValueViews(t *testing.T) {
	e := newEngine(classProvider(), settings())
	f := classFixture()
	f.assets = append(f.assets, domain.Asset{ID: 4, Currency: "EUR"})
	c := cache.New(f)
	day := d("2024-02-01")

	native := view.Sum(ToValue(e, c, view.All(c.UserAssets()), day))
	assertMoney(t, "native sum", native, "5000.00")

	n := 0
	for a, v := range NotZero(ExpandValueConv(e, c, view.All(c.UserAssets()), day)) {
		n++
		if a.ID == 3 {
			assertMoney(t, "fund converted", v, "500.00")
		}
	}
	if n != 3 {
		t.Errorf("NotZero kept %d assets, want 3", n)
	}
}

func TestNetWorthAccrual(t *testing.T) {
	f := &fixture{assets: []domain.Asset{{ID: 1, Currency: "EUR"}}}
	f.value(1, 1, "2024-01-10", "100")
	f.value(2, 1, "2024-02-15", "160")
	f.value(3, 1, "2024-03-20", "150")
	e := newEngine(quote.NewProvider(), settings())

	points := e.NetWorthAccrual(cache.New(f), d("2024-03-31"))
	if len(points) != 2 {
		t.Fatalf("got %d months, want 2", len(points))
	}
	if points[0].Date != d("2024-02-01") {
		t.Errorf("first month = %s", points[0].Date)
	}
	assertMoney(t, "February", points[0].Value, "60.00")
	assertMoney(t, "March", points[1].Value, "-10.00")
}

func TestGrowth(t *testing.T) {
	f := &fixture{assets: []domain.Asset{{ID: 1, Currency: "EUR"}}}
	f.value(1, 1, "2024-01-01", "100")
	f.value(2, 1, "2024-06-01", "150")
	f.value(3, 1, "2024-06-10", "165")
	e := newEngine(quote.NewProvider(), settings())
	c := cache.New(f)

	g := e.Growth(d("2024-06-20"), func(day date.Date) domain.Money { return e.NetWorth(c, day) })
	assertMoney(t, "MTD change", g.MTDChange, "15.00")
	assertMoney(t, "YTD change", g.YTDChange, "65.00")
	if !g.MTDPercent.Equal(pct(10)) || !g.YTDPercent.Equal(pct(65)) {
		t.Errorf("percents = %s, %s", g.MTDPercent, g.YTDPercent)
	}
}

package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/quote"
	"github.com/mtlprog/budget/internal/snapshot"
	"github.com/mtlprog/budget/internal/store"
	"github.com/mtlprog/budget/internal/valuation"
)

type mockWriter struct {
	tables []Table
	err    error
}

func (m *mockWriter) Write(_ context.Context, tables []Table) error {
	m.tables = tables
	return m.err
}

type mockHistoryWriter struct {
	mockWriter
	header, row []any
}

func (m *mockHistoryWriter) AppendHistory(_ context.Context, header, row []any) error {
	m.header, m.row = header, row
	return nil
}

func testSource(t *testing.T) *store.Stores {
	t.Helper()
	ctx := context.Background()
	s := store.New(nil)
	class, err := s.AddAssetClass(ctx, domain.AssetClass{Name: "Stocks", FI: true})
	if err != nil {
		t.Fatal(err)
	}
	a, err := s.AddAsset(ctx, domain.Asset{
		Name: "ETF", Currency: "EUR", Portfolio: true, PortfolioAlloc: decimal.NewFromInt(100),
		Classes: domain.Allocation{class.ID: decimal.NewFromInt(100)},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []struct{ day, amount string }{{"2024-01-01", "100"}, {"2024-01-03", "250.5"}} {
		if _, err := s.AddAssetValue(ctx, domain.AssetValue{AssetID: a.ID, SetDate: date.MustParse(v.day), Amount: domain.MustMoney(v.amount)}); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func testSummary() snapshot.Summary {
	return snapshot.Summary{
		Date:       date.MustParse("2024-01-04"),
		Currency:   "EUR",
		NetWorth:   domain.MustMoney("250.50"),
		FINetWorth: domain.MustMoney("250.50"),
		Currencies: []valuation.Share{{Key: "EUR", Value: domain.MustMoney("250.50"), Percent: decimal.NewFromInt(100)}},
		Classes:    []valuation.Share{{Key: "Stocks", Value: domain.MustMoney("250.50"), Percent: decimal.NewFromInt(100)}},
	}
}

func testEngine() *valuation.Engine {
	return valuation.New(quote.NewProvider(), valuation.Settings{DefaultCurrency: "EUR", WithdrawalRate: decimal.NewFromInt(4)})
}

func TestExportBuildsTables(t *testing.T) {
	e, src := testEngine(), testSource(t)
	w := &mockWriter{}

	if err := NewService(e, src, w).Export(context.Background(), testSummary()); err != nil {
		t.Fatal(err)
	}
	if len(w.tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(w.tables))
	}

	nw := w.tables[0]
	if nw.Sheet != NetWorthSheet {
		t.Errorf("first sheet = %s", nw.Sheet)
	}
	// header + 2024-01-01..2024-01-04
	if len(nw.Rows) != 5 {
		t.Fatalf("net worth rows = %d, want 5", len(nw.Rows))
	}
	if nw.Rows[1][0] != "2024-01-01" || nw.Rows[1][1] != 100.0 {
		t.Errorf("first day = %v", nw.Rows[1])
	}
	if nw.Rows[4][0] != "2024-01-04" || nw.Rows[4][3] != 250.5 {
		t.Errorf("last day = %v", nw.Rows[4])
	}

	bd := w.tables[1]
	if len(bd.Rows) != 3 || bd.Rows[1][0] != "currency" || bd.Rows[2][1] != "Stocks" {
		t.Errorf("breakdown rows = %v", bd.Rows)
	}
}

func TestExportAppendsHistory(t *testing.T) {
	e, src := testEngine(), testSource(t)
	w := &mockHistoryWriter{}

	if err := NewService(e, src, w).Export(context.Background(), testSummary()); err != nil {
		t.Fatal(err)
	}
	if len(w.header) != len(w.row) || w.row[0] != "2024-01-04" || w.row[2] != 250.5 {
		t.Errorf("history header %v row %v", w.header, w.row)
	}
}

func TestExportWriterError(t *testing.T) {
	e, src := testEngine(), testSource(t)
	w := &mockWriter{err: errors.New("quota exceeded")}

	if err := NewService(e, src, w).Export(context.Background(), testSummary()); err == nil {
		t.Fatal("expected writer error")
	}
}

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.xlsx")
	w := NewXLSXWriter(path)

	tables := []Table{
		{Sheet: NetWorthSheet, Rows: [][]any{{"Date", "Net worth"}, {"2024-01-01", 100.5}}},
		{Sheet: BreakdownSheet, Rows: [][]any{{"Kind", "Key"}, {"class", "Stocks"}}},
	}
	if err := w.Write(context.Background(), tables); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != NetWorthSheet || got[1] != BreakdownSheet {
		t.Errorf("sheets = %v", got)
	}
	rows, err := f.GetRows(NetWorthSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "2024-01-01" || rows[1][1] != "100.5" {
		t.Errorf("rows = %v", rows)
	}
}

package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/snapshot"
	"github.com/mtlprog/budget/internal/valuation"
)

// Sheet names written by every TableWriter.
const (
	NetWorthSheet  = "NetWorth"
	BreakdownSheet = "Breakdown"
	HistorySheet   = "History"
)

// Table is the content of one sheet, header row first.
type Table struct {
	Sheet string
	Rows  [][]any
}

// TableWriter writes tables to a spreadsheet destination, replacing previous content.
type TableWriter interface {
	Write(ctx context.Context, tables []Table) error
}

// HistoryWriter is implemented by writers that keep one row per exported day.
type HistoryWriter interface {
	AppendHistory(ctx context.Context, header, row []any) error
}

// Service builds valuation tables and delegates writing to a TableWriter.
type Service struct {
	engine *valuation.Engine
	source cache.Source
	writer TableWriter
}

// NewService creates a new export Service.
func NewService(engine *valuation.Engine, source cache.Source, writer TableWriter) *Service {
	return &Service{engine: engine, source: source, writer: writer}
}

// Export writes the daily net worth series up to the summary date and the
// summary breakdowns. Implements worker.AfterSnapshotHook.
func (s *Service) Export(ctx context.Context, summary snapshot.Summary) error {
	c := cache.New(s.source)
	from := s.engine.AssetStartDate(c)

	tables := []Table{
		netWorthTable(s.engine, c, from, summary.Date),
		breakdownTable(summary),
	}
	if err := s.writer.Write(ctx, tables); err != nil {
		return fmt.Errorf("writing tables: %w", err)
	}

	if hw, ok := s.writer.(HistoryWriter); ok {
		if err := hw.AppendHistory(ctx, historyHeader, historyRow(summary)); err != nil {
			return fmt.Errorf("appending history: %w", err)
		}
	}

	slog.Info("export completed", "from", from, "to", summary.Date)
	return nil
}

// netWorthTable has one row per day.
// Columns: Date | Net worth | FI net worth | Portfolio
func netWorthTable(e *valuation.Engine, c *cache.Cache, from, to date.Date) Table {
	rows := [][]any{{"Date", "Net worth", "FI net worth", "Portfolio"}}
	for d := range date.Days(from, to) {
		rows = append(rows, []any{
			d.String(),
			moneyFloat(e.NetWorth(c, d)),
			moneyFloat(e.FINetWorth(c, d)),
			moneyFloat(e.PortfolioValue(c, d)),
		})
	}
	return Table{Sheet: NetWorthSheet, Rows: rows}
}

// breakdownTable lists the currency shares, then the class shares.
// Columns: Kind | Key | Value | Percent
func breakdownTable(summary snapshot.Summary) Table {
	rows := [][]any{{"Kind", "Key", "Value", "Percent"}}
	shareRow := func(kind string) func(valuation.Share, int) []any {
		return func(sh valuation.Share, _ int) []any {
			return []any{kind, sh.Key, moneyFloat(sh.Value), toFloat(sh.Percent)}
		}
	}
	rows = append(rows, lo.Map(summary.Currencies, shareRow("currency"))...)
	rows = append(rows, lo.Map(summary.Classes, shareRow("class"))...)
	return Table{Sheet: BreakdownSheet, Rows: rows}
}

var historyHeader = []any{"Date", "Currency", "Net worth", "FI net worth", "Portfolio", "FI ratio", "Savings rate"}

func historyRow(summary snapshot.Summary) []any {
	return []any{
		summary.Date.String(),
		summary.Currency,
		moneyFloat(summary.NetWorth),
		moneyFloat(summary.FINetWorth),
		moneyFloat(summary.Portfolio),
		toFloat(summary.FIRatio),
		toFloat(summary.SavingsRate),
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func moneyFloat(m domain.Money) float64 { return toFloat(m.Decimal()) }

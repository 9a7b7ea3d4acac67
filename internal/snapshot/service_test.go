package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/quote"
	"github.com/mtlprog/budget/internal/store"
	"github.com/mtlprog/budget/internal/valuation"
)

type mockRepo struct {
	saveErr   error
	savedData json.RawMessage
	savedDate date.Date
	latest    *Snapshot
	latestErr error
	byDate    *Snapshot
	byDateErr error
	list      []Snapshot
	listErr   error
	listLimit int
}

func (m *mockRepo) Save(_ context.Context, d date.Date, data json.RawMessage) error {
	m.savedData = data
	m.savedDate = d
	return m.saveErr
}

func (m *mockRepo) GetLatest(_ context.Context) (*Snapshot, error) {
	if m.latestErr != nil {
		return nil, m.latestErr
	}
	return m.latest, nil
}

func (m *mockRepo) GetByDate(_ context.Context, _ date.Date) (*Snapshot, error) {
	if m.byDateErr != nil {
		return nil, m.byDateErr
	}
	return m.byDate, nil
}

func (m *mockRepo) List(_ context.Context, limit int) ([]Snapshot, error) {
	m.listLimit = limit
	return m.list, m.listErr
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
		Name: "ETF", Currency: "EUR", Active: true,
		Classes: domain.Allocation{class.ID: decimal.NewFromInt(100)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddAssetValue(ctx, domain.AssetValue{AssetID: a.ID, SetDate: date.MustParse("2024-01-01"), Amount: domain.MustMoney("1500")}); err != nil {
		t.Fatal(err)
	}
	return s
}

func testEngine() *valuation.Engine {
	return valuation.New(quote.NewProvider(), valuation.Settings{DefaultCurrency: "EUR", WithdrawalRate: decimal.NewFromInt(4)})
}

func TestGenerateSuccess(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(testEngine(), testSource(t), repo)

	day := date.MustParse("2024-06-30")
	result, err := svc.Generate(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NetWorth.String() != "1500.00" || result.FINetWorth.String() != "1500.00" {
		t.Errorf("summary = %+v, want net worth 1500", result)
	}
	if repo.savedDate != day {
		t.Errorf("saved date = %s, want %s", repo.savedDate, day)
	}

	stored, err := (Snapshot{SnapshotDate: day, Data: repo.savedData}).Summary()
	if err != nil {
		t.Fatalf("decoding saved data: %v", err)
	}
	if !stored.NetWorth.Equal(result.NetWorth) || len(stored.Classes) != 1 || stored.Classes[0].Key != "Stocks" {
		t.Errorf("stored summary = %+v", stored)
	}
}

func TestGenerateBeforeAnyRecordIsZero(t *testing.T) {
	svc := NewService(testEngine(), testSource(t), &mockRepo{})

	result, err := svc.Generate(context.Background(), date.MustParse("2023-12-31"))
	if err != nil {
		t.Fatal(err)
	}
	if !result.NetWorth.IsZero() || !result.FIRatio.IsZero() {
		t.Errorf("summary = %+v, want zeros", result)
	}
}

func TestGenerateRepoSaveError(t *testing.T) {
	repo := &mockRepo{saveErr: errors.New("save failed")}
	svc := NewService(testEngine(), testSource(t), repo)

	if _, err := svc.Generate(context.Background(), date.MustParse("2024-06-30")); err == nil {
		t.Fatal("expected error from repo save")
	}
}

func TestGetLatestNotFound(t *testing.T) {
	svc := NewService(testEngine(), store.New(nil), &mockRepo{latestErr: ErrNotFound})

	if _, err := svc.GetLatest(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList(t *testing.T) {
	repo := &mockRepo{list: []Snapshot{{ID: 2}, {ID: 1}}}
	svc := NewService(testEngine(), store.New(nil), repo)

	got, err := svc.List(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || repo.listLimit != 5 {
		t.Errorf("List = %d snapshots with limit %d", len(got), repo.listLimit)
	}
}

func TestSummaryDecodeError(t *testing.T) {
	if _, err := (Snapshot{Data: json.RawMessage(`{not json`)}).Summary(); err == nil {
		t.Error("expected decode error")
	}
}

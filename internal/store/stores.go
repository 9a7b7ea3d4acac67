package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/domain"
)

// Stores is the process-wide application state: one Store per record kind.
// Read accessors return snapshots. Mutations validate before they persist.
type Stores struct {
	mu   sync.Mutex // serializes mutations so validation sees a stable state
	repo Repository

	accounts     *Store[domain.Account]
	expenses     *Store[domain.Expense]
	earnings     *Store[domain.Earning]
	incomes      *Store[domain.Income]
	assets       *Store[domain.Asset]
	liabilities  *Store[domain.Liability]
	assetClasses *Store[domain.AssetClass]
	assetValues  *Store[domain.AssetValue]
	assetShares  *Store[domain.AssetShare]
	objectives   *Store[domain.Objective]
}

// New creates empty stores. A nil repo keeps records in memory only.
func New(repo Repository) *Stores {
	return &Stores{
		repo:         repo,
		accounts:     NewStore[domain.Account](),
		expenses:     NewStore[domain.Expense](),
		earnings:     NewStore[domain.Earning](),
		incomes:      NewStore[domain.Income](),
		assets:       NewStore[domain.Asset](),
		liabilities:  NewStore[domain.Liability](),
		assetClasses: NewStore[domain.AssetClass](),
		assetValues:  NewStore[domain.AssetValue](),
		assetShares:  NewStore[domain.AssetShare](),
		objectives:   NewStore[domain.Objective](),
	}
}

func (s *Stores) Accounts() []domain.Account        { return s.accounts.Snapshot() }
func (s *Stores) Expenses() []domain.Expense        { return s.expenses.Snapshot() }
func (s *Stores) Earnings() []domain.Earning        { return s.earnings.Snapshot() }
func (s *Stores) Incomes() []domain.Income          { return s.incomes.Snapshot() }
func (s *Stores) Assets() []domain.Asset            { return s.assets.Snapshot() }
func (s *Stores) Liabilities() []domain.Liability   { return s.liabilities.Snapshot() }
func (s *Stores) AssetClasses() []domain.AssetClass { return s.assetClasses.Snapshot() }
func (s *Stores) AssetValues() []domain.AssetValue  { return s.assetValues.Snapshot() }
func (s *Stores) AssetShares() []domain.AssetShare  { return s.assetShares.Snapshot() }
func (s *Stores) Objectives() []domain.Objective    { return s.objectives.Snapshot() }

// LoadFrom replaces every store with the records persisted in repo.
func (s *Stores) LoadFrom(ctx context.Context, repo Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaders := []func(context.Context, Repository) error{
		loader(KindAccount, s.accounts),
		loader(KindExpense, s.expenses),
		loader(KindEarning, s.earnings),
		loader(KindIncome, s.incomes),
		loader(KindAssetClass, s.assetClasses),
		loader(KindAsset, s.assets),
		loader(KindLiability, s.liabilities),
		loader(KindAssetValue, s.assetValues),
		loader(KindAssetShare, s.assetShares),
		loader(KindObjective, s.objectives),
	}
	for _, load := range loaders {
		if err := load(ctx, repo); err != nil {
			return err
		}
	}
	return nil
}

func loader[T Record[T]](kind Kind, st *Store[T]) func(context.Context, Repository) error {
	return func(ctx context.Context, repo Repository) error {
		n, err := loadKind(ctx, repo, kind, st)
		if err != nil {
			return err
		}
		slog.Debug("loaded records", "kind", kind, "count", n)
		return nil
	}
}

func loadKind[T Record[T]](ctx context.Context, repo Repository, kind Kind, st *Store[T]) (int, error) {
	rows, err := repo.LoadAll(ctx, kind)
	if err != nil {
		return 0, err
	}
	items := make([]T, 0, len(rows))
	for _, raw := range rows {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return 0, fmt.Errorf("decoding %s record: %w", kind, err)
		}
		items = append(items, item)
	}
	st.Load(items)
	return len(items), nil
}

// --- generic mutation helpers ---

func add[T Record[T]](ctx context.Context, s *Stores, kind Kind, st *Store[T], item T) (T, error) {
	added := st.Add(item)
	if err := persist(ctx, s.repo, kind, added); err != nil {
		_ = st.Delete(added.RecordID())
		var zero T
		return zero, err
	}
	return added, nil
}

func edit[T Record[T]](ctx context.Context, s *Stores, kind Kind, st *Store[T], item T) error {
	old, ok := st.Get(item.RecordID())
	if !ok {
		return ErrNotFound
	}
	if err := st.Edit(item); err != nil {
		return err
	}
	if err := persist(ctx, s.repo, kind, item); err != nil {
		_ = st.Edit(old)
		return err
	}
	return nil
}

func remove[T Record[T]](ctx context.Context, s *Stores, kind Kind, st *Store[T], id int) error {
	if _, ok := st.Get(id); !ok {
		return ErrNotFound
	}
	if s.repo != nil {
		if err := s.repo.Delete(ctx, kind, id); err != nil {
			return err
		}
	}
	return st.Delete(id)
}

func persist[T Record[T]](ctx context.Context, repo Repository, kind Kind, item T) error {
	if repo == nil {
		return nil
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", kind, err)
	}
	return repo.Save(ctx, kind, item.RecordID(), data)
}

// --- accounts, expenses, earnings, incomes ---

func (s *Stores) AddAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(a.Name) == "" {
		return domain.Account{}, domain.Errorf("account name must not be empty")
	}
	return add(ctx, s, KindAccount, s.accounts, a)
}

func (s *Stores) DeleteAccount(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inUse := lo.ContainsBy(s.expenses.Snapshot(), func(e domain.Expense) bool { return e.Account == id }) ||
		lo.ContainsBy(s.earnings.Snapshot(), func(e domain.Earning) bool { return e.Account == id })
	if inUse {
		return domain.Errorf("account %d still has expenses or earnings", id)
	}
	return remove(ctx, s, KindAccount, s.accounts, id)
}

func (s *Stores) AddExpense(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransaction("expense", &e.Transaction); err != nil {
		return domain.Expense{}, err
	}
	return add(ctx, s, KindExpense, s.expenses, e)
}

func (s *Stores) EditExpense(ctx context.Context, e domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransaction("expense", &e.Transaction); err != nil {
		return err
	}
	return edit(ctx, s, KindExpense, s.expenses, e)
}

func (s *Stores) DeleteExpense(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(ctx, s, KindExpense, s.expenses, id)
}

func (s *Stores) AddEarning(ctx context.Context, e domain.Earning) (domain.Earning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransaction("earning", &e.Transaction); err != nil {
		return domain.Earning{}, err
	}
	return add(ctx, s, KindEarning, s.earnings, e)
}

func (s *Stores) EditEarning(ctx context.Context, e domain.Earning) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkTransaction("earning", &e.Transaction); err != nil {
		return err
	}
	return edit(ctx, s, KindEarning, s.earnings, e)
}

func (s *Stores) DeleteEarning(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(ctx, s, KindEarning, s.earnings, id)
}

func (s *Stores) checkTransaction(what string, t *domain.Transaction) error {
	if strings.TrimSpace(t.Name) == "" {
		return domain.Errorf("%s name must not be empty", what)
	}
	if t.Date.IsZero() {
		return domain.Errorf("%s %s: date is required", what, t.Name)
	}
	if _, ok := s.accounts.Get(t.Account); !ok {
		return domain.Errorf("%s %s: account %d does not exist", what, t.Name, t.Account)
	}
	if t.GUID == "" {
		t.GUID = domain.NewGUID()
	}
	return nil
}

func (s *Stores) AddIncome(ctx context.Context, i domain.Income) (domain.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i.Amount.IsNegative() {
		return domain.Income{}, domain.Errorf("income amount must not be negative, got %s", i.Amount)
	}
	return add(ctx, s, KindIncome, s.incomes, i)
}

func (s *Stores) DeleteIncome(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(ctx, s, KindIncome, s.incomes, id)
}

// --- asset classes, assets, liabilities ---

func (s *Stores) AddAssetClass(ctx context.Context, c domain.AssetClass) (domain.AssetClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(c.Name) == "" {
		return domain.AssetClass{}, domain.Errorf("asset class name must not be empty")
	}
	return add(ctx, s, KindAssetClass, s.assetClasses, c)
}

func (s *Stores) EditAssetClass(ctx context.Context, c domain.AssetClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(c.Name) == "" {
		return domain.Errorf("asset class name must not be empty")
	}
	return edit(ctx, s, KindAssetClass, s.assetClasses, c)
}

func (s *Stores) DeleteAssetClass(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	used := lo.ContainsBy(s.assets.Snapshot(), func(a domain.Asset) bool { return a.Classes.Of(id).IsPositive() }) ||
		lo.ContainsBy(s.liabilities.Snapshot(), func(l domain.Liability) bool { return l.Classes.Of(id).IsPositive() })
	if used {
		return domain.Errorf("asset class %d is still allocated", id)
	}
	return remove(ctx, s, KindAssetClass, s.assetClasses, id)
}

func (s *Stores) AddAsset(ctx context.Context, a domain.Asset) (domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAsset(a); err != nil {
		return domain.Asset{}, err
	}
	return add(ctx, s, KindAsset, s.assets, a)
}

func (s *Stores) EditAsset(ctx context.Context, a domain.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAsset(a); err != nil {
		return err
	}
	return edit(ctx, s, KindAsset, s.assets, a)
}

func (s *Stores) DeleteAsset(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lo.ContainsBy(s.assetValues.Snapshot(), func(v domain.AssetValue) bool { return !v.Liability && v.AssetID == id }) ||
		lo.ContainsBy(s.assetShares.Snapshot(), func(sh domain.AssetShare) bool { return sh.AssetID == id }) {
		return domain.Errorf("asset %d still has values or shares", id)
	}
	return remove(ctx, s, KindAsset, s.assets, id)
}

func (s *Stores) checkAsset(a domain.Asset) error {
	if err := domain.ValidateAsset(a); err != nil {
		return err
	}
	if err := s.checkClasses(a.Name, a.Classes); err != nil {
		return err
	}
	others := lo.Reject(s.assets.Snapshot(), func(o domain.Asset, _ int) bool { return o.ID == a.ID })
	return domain.ValidatePortfolioTargets(append(others, a))
}

func (s *Stores) checkClasses(name string, classes domain.Allocation) error {
	for id := range classes {
		if _, ok := s.assetClasses.Get(id); !ok {
			return domain.Errorf("%s: asset class %d does not exist", name, id)
		}
	}
	return nil
}

func (s *Stores) AddLiability(ctx context.Context, l domain.Liability) (domain.Liability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := domain.ValidateLiability(l); err != nil {
		return domain.Liability{}, err
	}
	if err := s.checkClasses(l.Name, l.Classes); err != nil {
		return domain.Liability{}, err
	}
	return add(ctx, s, KindLiability, s.liabilities, l)
}

func (s *Stores) EditLiability(ctx context.Context, l domain.Liability) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := domain.ValidateLiability(l); err != nil {
		return err
	}
	if err := s.checkClasses(l.Name, l.Classes); err != nil {
		return err
	}
	return edit(ctx, s, KindLiability, s.liabilities, l)
}

func (s *Stores) DeleteLiability(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lo.ContainsBy(s.assetValues.Snapshot(), func(v domain.AssetValue) bool { return v.Liability && v.AssetID == id }) {
		return domain.Errorf("liability %d still has values", id)
	}
	return remove(ctx, s, KindLiability, s.liabilities, id)
}

// --- asset values and shares ---

func (s *Stores) AddAssetValue(ctx context.Context, v domain.AssetValue) (domain.AssetValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkValue(v); err != nil {
		return domain.AssetValue{}, err
	}
	return add(ctx, s, KindAssetValue, s.assetValues, v)
}

func (s *Stores) EditAssetValue(ctx context.Context, v domain.AssetValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkValue(v); err != nil {
		return err
	}
	return edit(ctx, s, KindAssetValue, s.assetValues, v)
}

func (s *Stores) DeleteAssetValue(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(ctx, s, KindAssetValue, s.assetValues, id)
}

func (s *Stores) checkValue(v domain.AssetValue) error {
	if v.SetDate.IsZero() {
		return domain.Errorf("asset value: set date is required")
	}
	if v.Liability {
		if _, ok := s.liabilities.Get(v.AssetID); !ok {
			return domain.Errorf("liability %d does not exist", v.AssetID)
		}
		return nil
	}
	a, ok := s.assets.Get(v.AssetID)
	if !ok {
		return domain.Errorf("asset %d does not exist", v.AssetID)
	}
	if a.ShareBased {
		return domain.Errorf("asset %s is share-based, record shares instead of values", a.Name)
	}
	return nil
}

func (s *Stores) AddAssetShare(ctx context.Context, sh domain.AssetShare) (domain.AssetShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkShare(sh); err != nil {
		return domain.AssetShare{}, err
	}
	if err := checkShareCount(sh.AssetID, append(s.assetShares.Snapshot(), sh)); err != nil {
		return domain.AssetShare{}, err
	}
	return add(ctx, s, KindAssetShare, s.assetShares, sh)
}

func (s *Stores) EditAssetShare(ctx context.Context, sh domain.AssetShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkShare(sh); err != nil {
		return err
	}
	shares := lo.Map(s.assetShares.Snapshot(), func(o domain.AssetShare, _ int) domain.AssetShare {
		if o.ID == sh.ID {
			return sh
		}
		return o
	})
	if err := checkShareCount(sh.AssetID, shares); err != nil {
		return err
	}
	// Moving a transaction to another asset also changes the old asset's count.
	if old, ok := s.assetShares.Get(sh.ID); ok && old.AssetID != sh.AssetID {
		if err := checkShareCount(old.AssetID, shares); err != nil {
			return err
		}
	}
	return edit(ctx, s, KindAssetShare, s.assetShares, sh)
}

func (s *Stores) DeleteAssetShare(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.assetShares.Get(id)
	if !ok {
		return ErrNotFound
	}
	rest := lo.Reject(s.assetShares.Snapshot(), func(o domain.AssetShare, _ int) bool { return o.ID == id })
	if err := checkShareCount(sh.AssetID, rest); err != nil {
		return err
	}
	return remove(ctx, s, KindAssetShare, s.assetShares, id)
}

func (s *Stores) checkShare(sh domain.AssetShare) error {
	if sh.Date.IsZero() {
		return domain.Errorf("asset share: date is required")
	}
	if sh.Shares.IsZero() {
		return domain.Errorf("asset share: shares must not be zero")
	}
	if sh.Price.IsNegative() {
		return domain.Errorf("asset share: price must not be negative, got %s", sh.Price)
	}
	a, ok := s.assets.Get(sh.AssetID)
	if !ok {
		return domain.Errorf("asset %d does not exist", sh.AssetID)
	}
	if !a.ShareBased {
		return domain.Errorf("asset %s is not share-based", a.Name)
	}
	return nil
}

// checkShareCount verifies that the running share count of assetID never drops below zero.
func checkShareCount(assetID int, shares []domain.AssetShare) error {
	mine := lo.Filter(shares, func(sh domain.AssetShare, _ int) bool { return sh.AssetID == assetID })
	slices.SortStableFunc(mine, func(a, b domain.AssetShare) int { return a.Date.Compare(b.Date) })

	count := decimal.Zero
	for i, sh := range mine {
		count = count.Add(sh.Shares)
		// Same-day transactions net out before the check.
		if i+1 < len(mine) && mine[i+1].Date == sh.Date {
			continue
		}
		if count.IsNegative() {
			return domain.Errorf("asset %d: share count would be negative (%s) on %s", assetID, count, sh.Date)
		}
	}
	return nil
}

// --- objectives ---

func (s *Stores) AddObjective(ctx context.Context, o domain.Objective) (domain.Objective, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := checkObjective(o); err != nil {
		return domain.Objective{}, err
	}
	return add(ctx, s, KindObjective, s.objectives, o)
}

func (s *Stores) EditObjective(ctx context.Context, o domain.Objective) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := checkObjective(o); err != nil {
		return err
	}
	return edit(ctx, s, KindObjective, s.objectives, o)
}

func (s *Stores) DeleteObjective(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(ctx, s, KindObjective, s.objectives, id)
}

func checkObjective(o domain.Objective) error {
	if strings.TrimSpace(o.Name) == "" {
		return domain.Errorf("objective name must not be empty")
	}
	return o.Validate()
}

// Currencies returns the distinct currencies of all assets and liabilities, sorted.
func (s *Stores) Currencies() []string {
	codes := append(
		lo.Map(s.assets.Snapshot(), func(a domain.Asset, _ int) string { return a.Currency }),
		lo.Map(s.liabilities.Snapshot(), func(l domain.Liability, _ int) string { return l.Currency })...,
	)
	codes = lo.Uniq(codes)
	slices.Sort(codes)
	return codes
}

// Tickers returns the distinct tickers of share-based assets, sorted.
func (s *Stores) Tickers() []string {
	tickers := lo.FilterMap(s.assets.Snapshot(), func(a domain.Asset, _ int) (string, bool) {
		return a.Ticker, a.ShareBased && a.Ticker != ""
	})
	tickers = lo.Uniq(tickers)
	slices.Sort(tickers)
	return tickers
}

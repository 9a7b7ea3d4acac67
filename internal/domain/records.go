package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/date"
)

// Account is a monthly budget envelope that expenses and earnings are filed under.
type Account struct {
	ID     int       `json:"id"`
	Name   string    `json:"name"`
	Amount Money     `json:"amount"`
	Since  date.Date `json:"since"`
	Until  date.Date `json:"until"`
}

func (a Account) RecordID() int             { return a.ID }
func (a Account) WithID(id int) Account     { a.ID = id; return a }
func (a Account) ActiveOn(d date.Date) bool { return activeOn(a.Since, a.Until, d) }

// Transaction holds the fields shared by expenses and earnings.
type Transaction struct {
	ID           int       `json:"id"`
	GUID         string    `json:"guid"`
	Date         date.Date `json:"date"`
	Account      int       `json:"account"`
	Name         string    `json:"name"`
	OriginalName string    `json:"originalName,omitempty"`
	Amount       Money     `json:"amount"`
	// Template marks a recurring template rather than a one-off record.
	Template bool `json:"template,omitempty"`
	// Temporary marks an imported record that has not been confirmed yet.
	Temporary bool `json:"temporary,omitempty"`
}

func (t Transaction) RecordID() int              { return t.ID }
func (t Transaction) RecordDate() date.Date      { return t.Date }
func (t Transaction) AccountID() int             { return t.Account }
func (t Transaction) RecordAmount() Money        { return t.Amount }
func (t Transaction) RecordName() string         { return t.Name }
func (t Transaction) RecordOriginalName() string { return t.OriginalName }
func (t Transaction) IsTemplate() bool           { return t.Template }
func (t Transaction) IsTemporary() bool          { return t.Temporary }

// Expense is money spent from an account.
type Expense struct {
	Transaction
}

func (e Expense) WithID(id int) Expense { e.ID = id; return e }

// Earning is a one-off income (bonus, gift, sale), on top of the base income.
type Earning struct {
	Transaction
}

func (e Earning) WithID(id int) Earning { e.ID = id; return e }

// Income is the recurring monthly base income over a period.
type Income struct {
	ID     int       `json:"id"`
	Amount Money     `json:"amount"`
	Since  date.Date `json:"since"`
	Until  date.Date `json:"until"`
}

func (i Income) RecordID() int             { return i.ID }
func (i Income) WithID(id int) Income      { i.ID = id; return i }
func (i Income) ActiveOn(d date.Date) bool { return activeOn(i.Since, i.Until, d) }

// AssetClass is an allocation category such as "Stocks" or "Bonds".
type AssetClass struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// FI marks classes that count towards financial independence.
	FI bool `json:"fi"`
}

func (c AssetClass) RecordID() int            { return c.ID }
func (c AssetClass) WithID(id int) AssetClass { c.ID = id; return c }

// Allocation maps an asset class id to a percentage.
type Allocation map[int]decimal.Decimal

// Of returns the percentage allocated to classID, zero when absent.
func (a Allocation) Of(classID int) decimal.Decimal {
	if p, ok := a[classID]; ok {
		return p
	}
	return decimal.Zero
}

// Total returns the sum of all percentages.
func (a Allocation) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a {
		total = total.Add(p)
	}
	return total
}

// Asset is a user holding whose value is tracked over time.
type Asset struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Currency   string `json:"currency"`
	ShareBased bool   `json:"shareBased"`
	Ticker     string `json:"ticker,omitempty"`
	Portfolio  bool   `json:"portfolio"`
	// PortfolioAlloc is the target share of the portfolio, in percent.
	PortfolioAlloc decimal.Decimal `json:"portfolioAlloc"`
	Active         bool            `json:"active"`
	Classes        Allocation      `json:"classes"`
}

func (a Asset) RecordID() int          { return a.ID }
func (a Asset) WithID(id int) Asset    { a.ID = id; return a }
func (a Asset) CurrencyCode() string   { return a.Currency }
func (a Asset) Allocation() Allocation { return a.Classes }
func (a Asset) IsPortfolio() bool      { return a.Portfolio }
func (a Asset) IsShareBased() bool     { return a.ShareBased }

// Liability is a debt, subtracted from net worth.
type Liability struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Currency string     `json:"currency"`
	Classes  Allocation `json:"classes"`
}

func (l Liability) RecordID() int           { return l.ID }
func (l Liability) WithID(id int) Liability { l.ID = id; return l }
func (l Liability) CurrencyCode() string    { return l.Currency }
func (l Liability) Allocation() Allocation  { return l.Classes }

// AssetValue is a manual observation: the asset (or liability) was worth Amount on SetDate.
type AssetValue struct {
	ID        int       `json:"id"`
	AssetID   int       `json:"assetId"`
	SetDate   date.Date `json:"setDate"`
	Amount    Money     `json:"amount"`
	Liability bool      `json:"liability,omitempty"`
}

func (v AssetValue) RecordID() int            { return v.ID }
func (v AssetValue) WithID(id int) AssetValue { v.ID = id; return v }
func (v AssetValue) RecordDate() date.Date    { return v.SetDate }
func (v AssetValue) RecordAssetID() int       { return v.AssetID }
func (v AssetValue) RecordAmount() Money      { return v.Amount }

// AssetShare is a buy (positive Shares) or sell (negative Shares) transaction.
type AssetShare struct {
	ID      int             `json:"id"`
	AssetID int             `json:"assetId"`
	Date    date.Date       `json:"date"`
	Shares  decimal.Decimal `json:"shares"`
	// Price is the unit price at full quote precision.
	Price   decimal.Decimal `json:"price"`
}

func (s AssetShare) RecordID() int            { return s.ID }
func (s AssetShare) WithID(id int) AssetShare { s.ID = id; return s }
func (s AssetShare) RecordDate() date.Date    { return s.Date }
func (s AssetShare) RecordAssetID() int       { return s.AssetID }

// RecordAmount is the cash amount of the transaction.
func (s AssetShare) RecordAmount() Money { return NewMoney(s.Price.Mul(s.Shares)) }

// NewGUID returns a fresh identifier for imported records.
func NewGUID() string { return uuid.NewString() }

func activeOn(since, until, d date.Date) bool {
	if !since.IsZero() && d.Before(since) {
		return false
	}
	if !until.IsZero() && d.After(until) {
		return false
	}
	return true
}

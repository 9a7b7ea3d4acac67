package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of fractional digits kept by Money (cents).
const MoneyPrecision = 2

// RatioPrecision is the number of fractional digits kept by dimensionless ratios.
const RatioPrecision = 6

var hundred = decimal.NewFromInt(100)

// Money is a fixed-point amount rounded to the cent, half away from zero,
// after every operation.
type Money struct {
	v decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney wraps a decimal, rounding it to the cent.
func NewMoney(d decimal.Decimal) Money { return Money{v: d.Round(MoneyPrecision)} }

// MoneyFromInt returns an amount of whole units.
func MoneyFromInt(units int64) Money { return Money{v: decimal.NewFromInt(units)} }

// MoneyFromCents returns an amount expressed in subunits.
func MoneyFromCents(cents int64) Money { return Money{v: decimal.New(cents, -MoneyPrecision)} }

// ParseMoney parses the canonical string form ("-12.30"), tolerating surrounding spaces.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Zero, Errorf("invalid amount %q", s)
	}
	return NewMoney(d), nil
}

// SafeParseMoney parses s, returning zero for invalid or empty input.
func SafeParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		return Zero
	}
	return m
}

// MustMoney is like ParseMoney but panics on error. Intended for tests and constants.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err.Error())
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.v }

func (m Money) Add(n Money) Money { return Money{v: m.v.Add(n.v)} }
func (m Money) Sub(n Money) Money { return Money{v: m.v.Sub(n.v)} }
func (m Money) Neg() Money        { return Money{v: m.v.Neg()} }

// Mul multiplies by a dimensionless factor (share count, exchange rate).
func (m Money) Mul(f decimal.Decimal) Money { return NewMoney(m.v.Mul(f)) }

// MulInt multiplies by an integer factor.
func (m Money) MulInt(n int64) Money { return Money{v: m.v.Mul(decimal.NewFromInt(n))} }

// MulPercent returns m * p / 100.
func (m Money) MulPercent(p decimal.Decimal) Money { return NewMoney(m.v.Mul(p).Div(hundred)) }

// Div divides by a dimensionless factor. Division by zero yields zero.
func (m Money) Div(f decimal.Decimal) Money {
	if f.IsZero() {
		return Zero
	}
	return NewMoney(m.v.Div(f))
}

// Ratio returns a / b rounded to RatioPrecision, or zero when b is zero.
func Ratio(a, b Money) decimal.Decimal {
	if b.v.IsZero() {
		return decimal.Zero
	}
	return a.v.DivRound(b.v, RatioPrecision)
}

func (m Money) Cmp(n Money) int                 { return m.v.Cmp(n.v) }
func (m Money) Equal(n Money) bool              { return m.v.Equal(n.v) }
func (m Money) LessThan(n Money) bool           { return m.v.LessThan(n.v) }
func (m Money) GreaterThan(n Money) bool        { return m.v.GreaterThan(n.v) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.v.GreaterThanOrEqual(n.v) }
func (m Money) IsZero() bool                    { return m.v.IsZero() }
func (m Money) IsPositive() bool                { return m.v.IsPositive() }
func (m Money) IsNegative() bool                { return m.v.IsNegative() }

// Abs returns the absolute amount.
func (m Money) Abs() Money { return Money{v: m.v.Abs()} }

// String returns the canonical form with exactly two fractional digits.
func (m Money) String() string { return m.v.StringFixed(MoneyPrecision) }

// Float64 is meant for charting only.
func (m Money) Float64() float64 {
	f, _ := m.v.Float64()
	return f
}

// Format renders the amount with the currency's symbol and grouping.
// Unknown currencies fall back to "<amount> <code>".
func (m Money) Format(currency string) string {
	cur := gomoney.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%s %s", m.String(), currency)
	}
	units := m.v.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return gomoney.New(units, cur.Code).Display()
}

func (m Money) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid money %s: %w", string(data), err)
	}
	*m = NewMoney(d)
	return nil
}

// Sum adds all amounts.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// ValidCurrency reports whether code is a known ISO 4217 currency.
func ValidCurrency(code string) bool {
	return gomoney.GetCurrency(code) != nil
}

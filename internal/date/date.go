// Package date provides a calendar day type used to walk valuation series.
package date

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"iter"
	"time"
)

// Layout is the canonical ISO-8601 representation of a Date.
const Layout = "2006-01-02"

const readLayout = "2006-1-2" // lenient read layout, accepts 2024-1-5

// Date is a proleptic Gregorian calendar day.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date; out-of-range days and months roll over like time.Date.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// FromTime returns the calendar day of t in its own location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Today returns the current local day.
func Today() Date { return FromTime(time.Now()) }

// Parse parses YYYY-MM-DD, also accepting single-digit months and days.
func Parse(s string) (Date, error) {
	t, err := time.Parse(readLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want format %q: %w", s, Layout, err)
	}
	return FromTime(t), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) String() string { return d.Time().Format(Layout) }

// Add returns d shifted by n days.
func (d Date) Add(n int) Date { return New(d.y, d.m, d.d+n) }

// AddMonths returns d shifted by n months, clamped to the last day of the target month.
func (d Date) AddMonths(n int) Date {
	first := New(d.y, d.m+time.Month(n), 1)
	last := first.EndOfMonth()
	if d.d > last.d {
		return last
	}
	return New(first.y, first.m, d.d)
}

func (d Date) StartOfMonth() Date { return New(d.y, d.m, 1) }
func (d Date) EndOfMonth() Date   { return New(d.y, d.m+1, 0) }
func (d Date) StartOfYear() Date  { return New(d.y, time.January, 1) }
func (d Date) EndOfYear() Date    { return New(d.y, time.December, 31) }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after x.
func (d Date) Compare(x Date) int {
	switch {
	case d.y != x.y:
		return cmpInt(d.y, x.y)
	case d.m != x.m:
		return cmpInt(int(d.m), int(x.m))
	default:
		return cmpInt(d.d, x.d)
	}
}

func (d Date) Before(x Date) bool { return d.Compare(x) < 0 }
func (d Date) After(x Date) bool  { return d.Compare(x) > 0 }

// DaysUntil returns the number of days from d to x (negative when x is before d).
func (d Date) DaysUntil(x Date) int {
	return int(x.Time().Sub(d.Time()).Hours() / 24)
}

// Days iterates every day in [from, to]. It yields nothing when to is before from.
func Days(from, to Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := from; !d.After(to); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Months iterates the first day of every month from from's month to to's month.
func Months(from, to Date) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		end := to.StartOfMonth()
		for d := from.StartOfMonth(); !d.After(end); d = d.AddMonths(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Min returns the earlier of a and b.
func Min(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of a and b.
func Max(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = New(v.Year(), v.Month(), v.Day())
	case string:
		p, err := Parse(v)
		if err != nil {
			return err
		}
		*d = p
	case []byte:
		p, err := Parse(string(v))
		if err != nil {
			return err
		}
		*d = p
	default:
		return fmt.Errorf("cannot scan %T into date", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time(), nil
}

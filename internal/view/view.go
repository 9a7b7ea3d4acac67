// Package view provides lazy, restartable filters and folds over record slices.
//
// Views compose by nesting:
//
//	total := view.Sum(view.ToAmount(view.ByAccount(view.ByMonth(view.All(expenses), 2024, time.March), rentID)))
//
// Nothing is materialized; each element flows through the whole chain on demand
// and a view can be ranged over any number of times.
package view

import (
	"iter"
	"slices"
	"time"

	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
)

// Dated records carry a calendar day.
type Dated interface{ RecordDate() date.Date }

// Accounted records are filed under an account.
type Accounted interface{ AccountID() int }

// Amounted records carry an amount.
type Amounted interface{ RecordAmount() domain.Money }

// AssetLinked records reference an asset or liability.
type AssetLinked interface{ RecordAssetID() int }

// Currencied records are denominated in a currency.
type Currencied interface{ CurrencyCode() string }

// OriginalNamed records keep the name they were imported with.
type OriginalNamed interface{ RecordOriginalName() string }

// Flagged records carry the template and temporary status flags.
type Flagged interface {
	IsTemplate() bool
	IsTemporary() bool
}

// All views a slice. Later changes to the slice elements are visible to the view.
func All[T any](items []T) iter.Seq[T] { return slices.Values(items) }

// Filter keeps the elements for which keep returns true.
func Filter[T any](seq iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}

// Map projects every element through fn.
func Map[T, R any](seq iter.Seq[T], fn func(T) R) iter.Seq[R] {
	return func(yield func(R) bool) {
		for v := range seq {
			if !yield(fn(v)) {
				return
			}
		}
	}
}

func ByMonth[T Dated](seq iter.Seq[T], year int, month time.Month) iter.Seq[T] {
	return Filter(seq, func(v T) bool {
		d := v.RecordDate()
		return d.Year() == year && d.Month() == month
	})
}

func ByYear[T Dated](seq iter.Seq[T], year int) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.RecordDate().Year() == year })
}

func ByDate[T Dated](seq iter.Seq[T], d date.Date) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.RecordDate() == d })
}

// Between keeps records dated within [from, to].
func Between[T Dated](seq iter.Seq[T], from, to date.Date) iter.Seq[T] {
	return Filter(seq, func(v T) bool {
		d := v.RecordDate()
		return !d.Before(from) && !d.After(to)
	})
}

// Until keeps records dated on or before d.
func Until[T Dated](seq iter.Seq[T], d date.Date) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return !v.RecordDate().After(d) })
}

func ByAccount[T Accounted](seq iter.Seq[T], id int) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.AccountID() == id })
}

func ByAsset[T AssetLinked](seq iter.Seq[T], id int) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.RecordAssetID() == id })
}

func ByCurrency[T Currencied](seq iter.Seq[T], currency string) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.CurrencyCode() == currency })
}

func ByAmount[T Amounted](seq iter.Seq[T], m domain.Money) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.RecordAmount().Equal(m) })
}

func ByOriginalName[T OriginalNamed](seq iter.Seq[T], name string) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.RecordOriginalName() == name })
}

// NotTemplate drops recurring templates.
func NotTemplate[T Flagged](seq iter.Seq[T]) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return !v.IsTemplate() })
}

// Persistent keeps confirmed records.
func Persistent[T Flagged](seq iter.Seq[T]) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return !v.IsTemporary() })
}

// Temporary keeps records pending import confirmation.
func Temporary[T Flagged](seq iter.Seq[T]) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.IsTemporary() })
}

func IsPortfolio[T interface{ IsPortfolio() bool }](seq iter.Seq[T]) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.IsPortfolio() })
}

func ShareBasedOnly[T interface{ IsShareBased() bool }](seq iter.Seq[T]) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return v.IsShareBased() })
}

func NotShareBased[T interface{ IsShareBased() bool }](seq iter.Seq[T]) iter.Seq[T] {
	return Filter(seq, func(v T) bool { return !v.IsShareBased() })
}

// ToAmount projects records to their amount.
func ToAmount[T Amounted](seq iter.Seq[T]) iter.Seq[domain.Money] {
	return Map(seq, func(v T) domain.Money { return v.RecordAmount() })
}

// Sum folds amounts into their total. An empty sequence sums to zero.
func Sum(seq iter.Seq[domain.Money]) domain.Money {
	total := domain.Zero
	for m := range seq {
		total = total.Add(m)
	}
	return total
}

// Any reports whether some element satisfies pred, stopping at the first match.
func Any[T any](seq iter.Seq[T], pred func(T) bool) bool {
	for v := range seq {
		if pred(v) {
			return true
		}
	}
	return false
}

// First returns the first element of seq.
func First[T any](seq iter.Seq[T]) (T, bool) {
	for v := range seq {
		return v, true
	}
	var zero T
	return zero, false
}

func Count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

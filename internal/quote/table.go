// Package quote provides date-indexed exchange rates and share prices.
package quote

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/budget/internal/date"
)

// Point is the quoted value of a symbol on one day.
type Point struct {
	Date  date.Date
	Value decimal.Decimal
}

// Table holds one date-sorted series per symbol. It is written by the refresh
// worker and read by request handlers.
type Table struct {
	mu     sync.RWMutex
	series map[string][]Point
}

func NewTable() *Table {
	return &Table{series: make(map[string][]Point)}
}

// Set records the value of symbol on d, replacing an existing quote for that day.
func (t *Table) Set(symbol string, d date.Date, v decimal.Decimal) {
	t.mu.Lock()
	defer t.mu.Unlock()

	points := t.series[symbol]
	i, found := search(points, d)
	if found {
		points[i].Value = v
		return
	}
	t.series[symbol] = slices.Insert(points, i, Point{Date: d, Value: v})
}

// AsOf returns the quote of symbol on d, or the most recent one before d.
func (t *Table) AsOf(symbol string, d date.Date) (decimal.Decimal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	points := t.series[symbol]
	i, found := search(points, d)
	if found {
		return points[i].Value, true
	}
	if i == 0 {
		return decimal.Zero, false
	}
	return points[i-1].Value, true
}

// Latest returns the most recent quote of symbol.
func (t *Table) Latest(symbol string) (Point, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	points := t.series[symbol]
	if len(points) == 0 {
		return Point{}, false
	}
	return points[len(points)-1], true
}

// Len returns the number of quotes of symbol.
func (t *Table) Len(symbol string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.series[symbol])
}

func search(points []Point, d date.Date) (int, bool) {
	return slices.BinarySearchFunc(points, d, func(p Point, d date.Date) int { return p.Date.Compare(d) })
}

// Package store holds the in-memory record stores and their PostgreSQL persistence.
package store

import (
	"cmp"
	"errors"
	"slices"
	"sync"
)

// ErrNotFound indicates that no record has the requested id.
var ErrNotFound = errors.New("record not found")

// Record is a domain record with a store-assigned id.
type Record[T any] interface {
	RecordID() int
	WithID(id int) T
}

// Store is an ordered collection of records keyed by a monotonically increasing id.
// Records are kept in id order, which is also insertion order.
type Store[T Record[T]] struct {
	mu     sync.RWMutex
	items  []T
	nextID int
}

// NewStore creates an empty store whose first id is 1.
func NewStore[T Record[T]]() *Store[T] {
	return &Store[T]{nextID: 1}
}

// Add stores item under the next id and returns it with that id set.
func (s *Store[T]) Add(item T) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	item = item.WithID(s.nextID)
	s.nextID++
	s.items = append(s.items, item)
	return item
}

// Edit replaces the record with the same id as item.
func (s *Store[T]) Edit(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index(item.RecordID())
	if !ok {
		return ErrNotFound
	}
	s.items[i] = item
	return nil
}

// Delete removes the record with the given id.
func (s *Store[T]) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index(id)
	if !ok {
		return ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// Get returns the record with the given id.
func (s *Store[T]) Get(id int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index(id)
	if !ok {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// Snapshot returns a copy of all records in id order.
func (s *Store[T]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Load replaces the content of the store with previously persisted records.
// The next id continues after the largest loaded one.
func (s *Store[T]) Load(items []T) {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b T) int { return cmp.Compare(a.RecordID(), b.RecordID()) })

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = sorted
	s.nextID = 1
	if n := len(sorted); n > 0 {
		s.nextID = sorted[n-1].RecordID() + 1
	}
}

func (s *Store[T]) index(id int) (int, bool) {
	return slices.BinarySearchFunc(s.items, id, func(item T, id int) int {
		return cmp.Compare(item.RecordID(), id)
	})
}

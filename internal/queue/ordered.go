package queue

import "slices"

// OrderedSet is a small sorted set supporting removal at both ends. Items
// comparing equal under cmp are treated as duplicates.
type OrderedSet[T any] struct {
	cmp   func(a, b T) int
	items []T
}

// NewOrderedSet returns an empty set ordered by cmp.
func NewOrderedSet[T any](capacity int, cmp func(a, b T) int) *OrderedSet[T] {
	return &OrderedSet[T]{cmp: cmp, items: make([]T, 0, capacity)}
}

// Len returns the number of items.
func (s *OrderedSet[T]) Len() int { return len(s.items) }

// Add inserts item in order. It reports false if an equal item is present.
func (s *OrderedSet[T]) Add(item T) bool {
	i, found := slices.BinarySearchFunc(s.items, item, s.cmp)
	if found {
		return false
	}
	s.items = slices.Insert(s.items, i, item)
	return true
}

// First returns the smallest item.
func (s *OrderedSet[T]) First() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[0], true
}

// Last returns the largest item.
func (s *OrderedSet[T]) Last() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// PollFirst removes and returns the smallest item.
func (s *OrderedSet[T]) PollFirst() (T, bool) {
	item, ok := s.First()
	if ok {
		var zero T
		s.items[0] = zero
		s.items = s.items[1:]
	}
	return item, ok
}

// PollLast removes and returns the largest item.
func (s *OrderedSet[T]) PollLast() (T, bool) {
	item, ok := s.Last()
	if ok {
		var zero T
		s.items[len(s.items)-1] = zero
		s.items = s.items[:len(s.items)-1]
	}
	return item, ok
}

// Package plist implements the fixed-capacity list each quadtree node uses to
// hold its points.
package plist

// BoundedList is a sequential container that never grows past the capacity
// it was created with. Append is amortised O(1), Get is O(1) and Remove is
// O(n). Storage is allocated on demand so that empty nodes stay small.
type BoundedList[T comparable] struct {
	items []T
	limit int
}

// New creates an empty list holding at most capacity items.
func New[T comparable](capacity int) *BoundedList[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &BoundedList[T]{limit: capacity}
}

// Append adds item at the end. It returns false if the list is full.
func (l *BoundedList[T]) Append(item T) bool {
	if len(l.items) >= l.limit {
		return false
	}
	l.items = append(l.items, item)
	return true
}

// Get returns the item at index i.
func (l *BoundedList[T]) Get(i int) (T, bool) {
	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

func (l *BoundedList[T]) Len() int   { return len(l.items) }
func (l *BoundedList[T]) Cap() int   { return l.limit }
func (l *BoundedList[T]) Full() bool { return len(l.items) >= l.limit }

// Remove deletes the first item equal to item, keeping the order of the
// rest. It returns false if no such item exists.
func (l *BoundedList[T]) Remove(item T) bool {
	for i, v := range l.items {
		if v == item {
			return l.RemoveAt(i)
		}
	}
	return false
}

// RemoveAt deletes the item at index i.
func (l *BoundedList[T]) RemoveAt(i int) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}
	copy(l.items[i:], l.items[i+1:])
	var zero T
	l.items[len(l.items)-1] = zero
	l.items = l.items[:len(l.items)-1]
	return true
}

// Each calls fn for every item in order until fn returns false.
func (l *BoundedList[T]) Each(fn func(i int, item T) bool) {
	for i, v := range l.items {
		if !fn(i, v) {
			return
		}
	}
}

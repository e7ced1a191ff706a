package gocc

import "iter"

// Range is a half-open cursor pair [begin, end) over a container's logical
// ordering. The end cursor is never dereferenced; an empty range has
// begin == end. A Range is a contiguous ordered sub-sequence, never a
// null/absent signal.
type Range[T any] struct {
	first *T
	last  *T
	next  func(*T) *T
}

// NewRange builds a range from its cursor pair and advance function. It is
// intended for backend implementations.
func NewRange[T any](first, last *T, next func(*T) *T) Range[T] {
	return Range[T]{first: first, last: last, next: next}
}

// Begin returns the first cursor of the range; it may equal End.
func (r Range[T]) Begin() *T { return r.first }

// End returns the exclusive end cursor of the range. Do not dereference it.
func (r Range[T]) End() *T { return r.last }

// Empty reports whether the range holds no elements.
func (r Range[T]) Empty() bool { return r.first == r.last }

// All yields the range's elements in order.
func (r Range[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for cur := r.first; cur != r.last; cur = r.next(cur) {
			if !yield(cur) {
				return
			}
		}
	}
}

// ReverseRange is a Range traversing the same logical ordering backward. It
// is not a range reinterpreted with swapped bounds: it yields the identical
// element set, last to first.
type ReverseRange[T any] struct {
	first *T
	last  *T
	next  func(*T) *T
}

// NewReverseRange builds a reverse range from its cursor pair and reverse
// advance function. It is intended for backend implementations.
func NewReverseRange[T any](first, last *T, next func(*T) *T) ReverseRange[T] {
	return ReverseRange[T]{first: first, last: last, next: next}
}

// Begin returns the first cursor of the reverse traversal.
func (r ReverseRange[T]) Begin() *T { return r.first }

// End returns the exclusive end cursor of the reverse traversal.
func (r ReverseRange[T]) End() *T { return r.last }

// Empty reports whether the reverse range holds no elements.
func (r ReverseRange[T]) Empty() bool { return r.first == r.last }

// All yields the range's elements in reverse order.
func (r ReverseRange[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for cur := r.first; cur != r.last; cur = r.next(cur) {
			if !yield(cur) {
				return
			}
		}
	}
}

// All yields every element of c in forward order.
func All[T any](c Iterable[T]) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		if c == nil {
			return
		}
		for cur := c.Begin(); cur != nil; cur = c.Next(cur) {
			if !yield(cur) {
				return
			}
		}
	}
}

// Backward yields every element of c in reverse order.
func Backward[T any](c Iterable[T]) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		if c == nil {
			return
		}
		for cur := c.ReverseBegin(); cur != nil; cur = c.ReverseNext(cur) {
			if !yield(cur) {
				return
			}
		}
	}
}

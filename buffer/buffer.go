// Package buffer provides a flat contiguous container with a fixed or
// dynamic storage discipline.
//
// A dynamic buffer owns an allocator and grows transparently. A fixed buffer
// wraps a caller-owned slice, holds no resize permission, and answers
// growth-requiring operations with gocc.ErrCapacity. The discipline is set at
// construction and cannot change later.
//
// References returned by queries are valid only until the next mutating call:
// growth relocates elements.
package buffer

import (
	"unsafe"

	"github.com/hupe1980/gocc"
)

// Compile-time checks to ensure Buffer satisfies the advertised capabilities.
var _ gocc.Sequence[int] = (*Buffer[int])(nil)
var _ gocc.Iterable[int] = (*Buffer[int])(nil)
var _ gocc.Managed[int] = (*Buffer[int])(nil)
var _ gocc.State = (*Buffer[int])(nil)
var _ gocc.Copyable[*Buffer[int], int] = (*Buffer[int])(nil)
var _ gocc.RangeExtractor[int] = (*Buffer[int])(nil)

const minGrowth = 8

// Options contains configuration options for a buffer.
type Options[T any] struct {
	// Capacity is the initial element capacity of a dynamic buffer.
	Capacity int

	// Allocator backs a dynamic buffer. Defaults to gocc.HeapAllocator.
	// Ignored when Slice is set.
	Allocator gocc.Allocator[T]

	// Slice makes the buffer fixed over this caller-owned storage. The
	// buffer starts empty and may hold at most cap(Slice) elements.
	Slice []T

	// Destructor is invoked once per element removed by Erase or cleared;
	// clear operations may override it per call.
	Destructor gocc.Destructor[T]
}

// Buffer is a flat contiguous container.
type Buffer[T any] struct {
	items []T // len(items) is the capacity
	count int
	alloc gocc.Allocator[T]
	fixed bool
	dtor  gocc.Destructor[T]
}

// New creates a buffer. Without options it is dynamic over the Go heap.
func New[T any](optFns ...func(o *Options[T])) (*Buffer[T], error) {
	var opts Options[T]
	for _, fn := range optFns {
		fn(&opts)
	}

	b := &Buffer[T]{dtor: opts.Destructor}
	if opts.Slice != nil {
		b.items = opts.Slice[:cap(opts.Slice)]
		b.fixed = true
		return b, nil
	}

	b.alloc = opts.Allocator
	if b.alloc == nil {
		b.alloc = gocc.HeapAllocator[T]()
	}
	if opts.Capacity > 0 {
		items, err := b.alloc(nil, opts.Capacity)
		if err != nil {
			return nil, gocc.NewErrAlloc(opts.Capacity, err)
		}
		b.items = items
	}
	return b, nil
}

// grow ensures capacity for at least need elements, relocating storage.
func (b *Buffer[T]) grow(need int, alloc gocc.Allocator[T]) error {
	if need <= len(b.items) {
		return nil
	}
	if alloc == nil {
		alloc = b.alloc
	}
	if alloc == nil {
		return gocc.ErrCapacity
	}
	target := max(need, max(minGrowth, 2*len(b.items)))
	items, err := alloc(b.items, target)
	if err != nil {
		return gocc.NewErrAlloc(target, err)
	}
	b.items = items
	return nil
}

// PushBack appends value and returns a reference to the inserted slot.
func (b *Buffer[T]) PushBack(value T) (*T, error) {
	if b == nil {
		return nil, gocc.ErrNilContainer
	}
	if err := b.grow(b.count+1, nil); err != nil {
		return nil, err
	}
	b.items[b.count] = value
	b.count++
	return &b.items[b.count-1], nil
}

// PushFront inserts value at index zero, shifting the existing elements.
func (b *Buffer[T]) PushFront(value T) (*T, error) {
	if b == nil {
		return nil, gocc.ErrNilContainer
	}
	if err := b.grow(b.count+1, nil); err != nil {
		return nil, err
	}
	copy(b.items[1:b.count+1], b.items[:b.count])
	b.items[0] = value
	b.count++
	return &b.items[0], nil
}

// PopBack removes and returns the last element.
func (b *Buffer[T]) PopBack() (value T, ok bool) {
	if b == nil || b.count == 0 {
		return value, false
	}
	b.count--
	value = b.items[b.count]
	var zero T
	b.items[b.count] = zero
	return value, true
}

// PopFront removes and returns the first element, shifting the rest down.
func (b *Buffer[T]) PopFront() (value T, ok bool) {
	if b == nil || b.count == 0 {
		return value, false
	}
	value = b.items[0]
	copy(b.items[:b.count-1], b.items[1:b.count])
	b.count--
	var zero T
	b.items[b.count] = zero
	return value, true
}

// Front returns a reference to the first element, nil on empty.
func (b *Buffer[T]) Front() *T {
	if b == nil || b.count == 0 {
		return nil
	}
	return &b.items[0]
}

// Back returns a reference to the last element, nil on empty.
func (b *Buffer[T]) Back() *T {
	if b == nil || b.count == 0 {
		return nil
	}
	return &b.items[b.count-1]
}

// At returns a reference to the element at index i, nil when out of bounds.
func (b *Buffer[T]) At(i int) *T {
	if b == nil || i < 0 || i >= b.count {
		return nil
	}
	return &b.items[i]
}

// indexOf recovers the element index behind a cursor reference, -1 when the
// cursor does not point into the live prefix.
func (b *Buffer[T]) indexOf(cur *T) int {
	if b == nil || b.count == 0 || cur == nil {
		return -1
	}
	size := unsafe.Sizeof(b.items[0])
	if size == 0 {
		return -1
	}
	base := uintptr(unsafe.Pointer(&b.items[0])) //nolint:gosec // cursor arithmetic over the backing array
	addr := uintptr(unsafe.Pointer(cur))         //nolint:gosec // cursor arithmetic over the backing array
	if addr < base || (addr-base)%size != 0 {
		return -1
	}
	i := int((addr - base) / size)
	if i >= b.count {
		return -1
	}
	return i
}

// Begin returns the first element of the traversal, nil on empty.
func (b *Buffer[T]) Begin() *T { return b.Front() }

// Next advances a forward cursor.
func (b *Buffer[T]) Next(cur *T) *T {
	i := b.indexOf(cur)
	if i < 0 || i+1 >= b.count {
		return nil
	}
	return &b.items[i+1]
}

// ReverseBegin returns the last element of the traversal, nil on empty.
func (b *Buffer[T]) ReverseBegin() *T { return b.Back() }

// ReverseNext advances a reverse cursor.
func (b *Buffer[T]) ReverseNext(cur *T) *T {
	i := b.indexOf(cur)
	if i <= 0 {
		return nil
	}
	return &b.items[i-1]
}

// ExtractRange removes the half-open run [first, last) without invoking the
// destructor, transferring ownership of the removed values to the caller.
// A nil last means through the end of the buffer.
func (b *Buffer[T]) ExtractRange(first, last *T) ([]T, error) {
	if b == nil {
		return nil, gocc.ErrNilContainer
	}
	lo := b.indexOf(first)
	if lo < 0 {
		return nil, gocc.ErrBadCursor
	}
	hi := b.count
	if last != nil {
		hi = b.indexOf(last)
		if hi < 0 {
			return nil, gocc.ErrBadCursor
		}
	}
	if hi < lo {
		return nil, gocc.ErrBadCursor
	}

	out := make([]T, hi-lo)
	copy(out, b.items[lo:hi])
	copy(b.items[lo:], b.items[hi:b.count])
	var zero T
	for i := b.count - (hi - lo); i < b.count; i++ {
		b.items[i] = zero
	}
	b.count -= hi - lo
	return out, nil
}

// Erase removes the element behind a known-resident cursor directly and runs
// the configured destructor on it. It returns the cursor following the
// removed element.
func (b *Buffer[T]) Erase(cur *T) (*T, error) {
	if b == nil {
		return nil, gocc.ErrNilContainer
	}
	i := b.indexOf(cur)
	if i < 0 {
		return nil, gocc.ErrBadCursor
	}
	if b.dtor != nil {
		b.dtor(&b.items[i])
	}
	copy(b.items[i:], b.items[i+1:b.count])
	b.count--
	var zero T
	b.items[b.count] = zero
	if i >= b.count {
		return nil, nil
	}
	return &b.items[i], nil
}

// Reserve pre-grows the buffer so that n subsequent insertions do not
// reallocate. On a fixed buffer without an explicit allocator it is a no-op
// when capacity suffices and gocc.ErrCapacity otherwise.
func (b *Buffer[T]) Reserve(n int, alloc gocc.Allocator[T]) error {
	if b == nil {
		return gocc.ErrNilContainer
	}
	if b.fixed && alloc == nil {
		if b.count+n <= len(b.items) {
			return nil
		}
		return gocc.ErrCapacity
	}
	return b.grow(b.count+n, alloc)
}

func (b *Buffer[T]) destructAll(d gocc.Destructor[T]) {
	if d == nil {
		d = b.dtor
	}
	var zero T
	for i := 0; i < b.count; i++ {
		if d != nil {
			d(&b.items[i])
		}
		b.items[i] = zero
	}
	b.count = 0
}

// Clear runs the destructor on every element and resets the count to zero,
// keeping the backing storage.
func (b *Buffer[T]) Clear(d gocc.Destructor[T]) {
	if b == nil {
		return
	}
	b.destructAll(d)
}

// ClearAndFree clears the buffer and releases the backing storage through
// the buffer's own allocator.
func (b *Buffer[T]) ClearAndFree(d gocc.Destructor[T]) {
	if b == nil {
		return
	}
	b.destructAll(d)
	if b.alloc != nil && b.items != nil {
		b.items, _ = b.alloc(b.items, 0)
	}
	b.items = nil
}

// ClearAndFreeReserve clears a buffer whose storage was reserved through an
// external allocator and releases that storage; the caller must supply the
// allocator explicitly.
func (b *Buffer[T]) ClearAndFreeReserve(d gocc.Destructor[T], alloc gocc.Allocator[T]) error {
	if b == nil {
		return gocc.ErrNilContainer
	}
	if alloc == nil {
		return gocc.ErrNoAlloc
	}
	b.destructAll(d)
	b.items, _ = alloc(b.items, 0)
	b.items = nil
	return nil
}

// CopyFrom deep-duplicates src's contents into the buffer, preserving
// iteration order. The allocator may be omitted when the existing capacity
// suffices; otherwise its absence is a capacity error.
func (b *Buffer[T]) CopyFrom(src *Buffer[T], alloc gocc.Allocator[T]) error {
	if b == nil || src == nil {
		return gocc.ErrNilContainer
	}
	if src.count > len(b.items) {
		if alloc == nil {
			return gocc.ErrCapacity
		}
		items, err := alloc(b.items, src.count)
		if err != nil {
			return gocc.NewErrAlloc(src.count, err)
		}
		b.items = items
	}
	copy(b.items, src.items[:src.count])
	var zero T
	for i := src.count; i < b.count; i++ {
		b.items[i] = zero
	}
	b.count = src.count
	return nil
}

// Count returns the number of elements.
func (b *Buffer[T]) Count() int {
	if b == nil {
		return 0
	}
	return b.count
}

// Capacity returns the element capacity of the backing storage.
func (b *Buffer[T]) Capacity() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// IsEmpty reports whether the buffer holds no elements.
func (b *Buffer[T]) IsEmpty() bool { return b.Count() == 0 }

// Validate reports whether the buffer's structural invariants hold.
func (b *Buffer[T]) Validate() bool {
	if b == nil {
		return false
	}
	if b.count < 0 || b.count > len(b.items) {
		return false
	}
	if b.fixed && b.alloc != nil {
		return false
	}
	return true
}

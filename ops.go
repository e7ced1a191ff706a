package gocc

// This file is the operation vocabulary: one generic function per logical
// operation name, resolved at compile time from the container's concrete
// type. Containers also expose the same operations as methods; the functions
// here exist so that backend-agnostic code can be written against capability
// interfaces with a single import.

// Swap inserts value and yields the prior state. On an occupied key the value
// is replaced, the entry stays Occupied and carries the prior value through
// Old. On a vacant key the insertion is attempted: success yields Occupied,
// failure yields Vacant with the insert-error flag set.
func Swap[K, V any](c Keyed[K, V], key K, value V) Entry[K, V] {
	if c == nil {
		return Entry[K, V]{key: key, err: ErrNilContainer}
	}
	if ref := c.Find(key); ref != nil {
		old := *ref
		*ref = value
		return Entry[K, V]{host: c, key: key, ref: ref, old: old, hasOld: true}
	}
	ref, err := c.Emplace(key, value)
	if err != nil {
		return Entry[K, V]{host: c, key: key, err: err}
	}
	return Entry[K, V]{host: c, key: key, ref: ref}
}

// SwapHandle is Swap for relocatable-storage containers.
func SwapHandle[K, V any](c Handled[K, V], key K, value V) HandleEntry[K, V] {
	if c == nil {
		return HandleEntry[K, V]{key: key, err: ErrNilContainer}
	}
	if h, ok := c.Lookup(key); ok {
		ref := c.At(h)
		old := *ref
		*ref = value
		return HandleEntry[K, V]{host: c, key: key, handle: h, present: true, old: old, hasOld: true}
	}
	h, err := c.EmplaceHandle(key, value)
	if err != nil {
		return HandleEntry[K, V]{host: c, key: key, err: err}
	}
	return HandleEntry[K, V]{host: c, key: key, handle: h, present: true}
}

// TryInsert inserts value only if key is vacant. On an occupied key it is a
// no-op yielding the existing element; repeated calls never change the stored
// value.
func TryInsert[K, V any](c Keyed[K, V], key K, value V) Entry[K, V] {
	if c == nil {
		return Entry[K, V]{key: key, err: ErrNilContainer}
	}
	if ref := c.Find(key); ref != nil {
		return Entry[K, V]{host: c, key: key, ref: ref}
	}
	ref, err := c.Emplace(key, value)
	if err != nil {
		return Entry[K, V]{host: c, key: key, err: err}
	}
	return Entry[K, V]{host: c, key: key, ref: ref}
}

// TryInsertHandle is TryInsert for relocatable-storage containers.
func TryInsertHandle[K, V any](c Handled[K, V], key K, value V) HandleEntry[K, V] {
	if c == nil {
		return HandleEntry[K, V]{key: key, err: ErrNilContainer}
	}
	if h, ok := c.Lookup(key); ok {
		return HandleEntry[K, V]{host: c, key: key, handle: h, present: true}
	}
	h, err := c.EmplaceHandle(key, value)
	if err != nil {
		return HandleEntry[K, V]{host: c, key: key, err: err}
	}
	return HandleEntry[K, V]{host: c, key: key, handle: h, present: true}
}

// InsertOrAssign inserts or overwrites so the entry always ends Occupied,
// unless the underlying insertion fails, in which case the result is Vacant
// with the insert-error flag set. A displaced prior value is not destructed.
func InsertOrAssign[K, V any](c Keyed[K, V], key K, value V) Entry[K, V] {
	return Swap(c, key, value)
}

// InsertOrAssignHandle is InsertOrAssign for relocatable-storage containers.
func InsertOrAssignHandle[K, V any](c Handled[K, V], key K, value V) HandleEntry[K, V] {
	return SwapHandle(c, key, value)
}

// RemoveKeyValue detaches the element at key, yielding a Vacant entry that
// carries the detached value through Old; the destructor is not invoked.
// A vacant key yields a plain Vacant entry.
func RemoveKeyValue[K, V any](c Keyed[K, V], key K) Entry[K, V] {
	if c == nil {
		return Entry[K, V]{key: key, err: ErrNilContainer}
	}
	old, ok := c.Delete(key)
	return Entry[K, V]{host: c, key: key, old: old, hasOld: ok}
}

// GetKeyValue returns a reference to the value stored at key, or nil if
// absent. The reference is valid only until the next mutating call.
func GetKeyValue[K, V any](c Keyed[K, V], key K) *V {
	if c == nil {
		return nil
	}
	return c.Find(key)
}

// Contains reports membership of key.
func Contains[K, V any](c Keyed[K, V], key K) bool {
	return c != nil && c.Find(key) != nil
}

// PushFront inserts value at the front of a sequence and returns a reference
// to the inserted slot.
func PushFront[T any](c Sequence[T], value T) (*T, error) {
	if c == nil {
		return nil, ErrNilContainer
	}
	return c.PushFront(value)
}

// PushBack inserts value at the back of a sequence and returns a reference to
// the inserted slot.
func PushBack[T any](c Sequence[T], value T) (*T, error) {
	if c == nil {
		return nil, ErrNilContainer
	}
	return c.PushBack(value)
}

// PopFront removes and returns the front element; ok is false on an empty
// container.
func PopFront[T any](c Sequence[T]) (value T, ok bool) {
	if c == nil {
		return value, false
	}
	return c.PopFront()
}

// PopBack removes and returns the back element; ok is false on an empty
// container.
func PopBack[T any](c Sequence[T]) (value T, ok bool) {
	if c == nil {
		return value, false
	}
	return c.PopBack()
}

// Front peeks at the front element without removing it, nil on empty.
func Front[T any](c Sequence[T]) *T {
	if c == nil {
		return nil
	}
	return c.Front()
}

// Back peeks at the back element without removing it, nil on empty.
func Back[T any](c Sequence[T]) *T {
	if c == nil {
		return nil
	}
	return c.Back()
}

// Splice moves elem from src to before pos in dst without reallocation,
// preserving element identity for node-based backends. A nil pos means the
// end of dst.
func Splice[T any](dst Splicer[T], pos *T, src Splicer[T], elem *T) error {
	if dst == nil {
		return ErrNilContainer
	}
	return dst.Splice(pos, src, elem)
}

// SpliceRange moves the half-open run [first, last) from src to before pos
// in dst.
func SpliceRange[T any](dst Splicer[T], pos *T, src Splicer[T], first, last *T) error {
	if dst == nil {
		return ErrNilContainer
	}
	return dst.SpliceRange(pos, src, first, last)
}

// Push inserts value with the given ordering key into a priority container
// and returns the handle of the inserted slot.
func Push[K, V any](c Priority[K, V], key K, value V) (Handle, error) {
	if c == nil {
		return 0, ErrNilContainer
	}
	return c.Push(key, value)
}

// Pop removes and returns the canonical (top) element of a priority
// container; ok is false on an empty container.
func Pop[K, V any](c Priority[K, V]) (key K, value V, ok bool) {
	if c == nil {
		return key, value, false
	}
	return c.Pop()
}

// Update adjusts the ordering key of a resident element and restores the
// structural invariant.
func Update[K, V any](c Priority[K, V], h Handle, key K) error {
	if c == nil {
		return ErrNilContainer
	}
	return c.Update(h, key)
}

// Increase is the one-directional Update usable only when the caller
// guarantees the direction of the change.
func Increase[K, V any](c Priority[K, V], h Handle, key K) error {
	if c == nil {
		return ErrNilContainer
	}
	return c.Increase(h, key)
}

// Decrease is the one-directional Update usable only when the caller
// guarantees the direction of the change.
func Decrease[K, V any](c Priority[K, V], h Handle, key K) error {
	if c == nil {
		return ErrNilContainer
	}
	return c.Decrease(h, key)
}

// Erase removes a known-resident element directly, bypassing lookup, and
// runs the container's destructor on it.
func Erase[K, V any](c Priority[K, V], h Handle) error {
	if c == nil {
		return ErrNilContainer
	}
	return c.Erase(h)
}

// Extract removes a known-resident element without invoking the destructor,
// transferring ownership of the value to the caller.
func Extract[K, V any](c Priority[K, V], h Handle) (key K, value V, err error) {
	if c == nil {
		return key, value, ErrNilContainer
	}
	return c.Extract(h)
}

// ExtractRange removes the half-open run [first, last) without invoking the
// destructor, transferring ownership of the removed values to the caller.
func ExtractRange[T any](c RangeExtractor[T], first, last *T) ([]T, error) {
	if c == nil {
		return nil, ErrNilContainer
	}
	return c.ExtractRange(first, last)
}

// Begin returns the first element of the traversal, nil on empty.
func Begin[T any](c Iterable[T]) *T {
	if c == nil {
		return nil
	}
	return c.Begin()
}

// End returns the forward end sentinel. It is never dereferenced.
func End[T any](c Iterable[T]) *T { return nil }

// Next advances a forward cursor given the previously yielded reference.
func Next[T any](c Iterable[T], cur *T) *T {
	if c == nil {
		return nil
	}
	return c.Next(cur)
}

// ReverseBegin returns the first element of the reverse traversal, nil on
// empty.
func ReverseBegin[T any](c Iterable[T]) *T {
	if c == nil {
		return nil
	}
	return c.ReverseBegin()
}

// ReverseEnd returns the reverse end sentinel. It is never dereferenced.
func ReverseEnd[T any](c Iterable[T]) *T { return nil }

// ReverseNext advances a reverse cursor given the previously yielded
// reference.
func ReverseNext[T any](c Iterable[T], cur *T) *T {
	if c == nil {
		return nil
	}
	return c.ReverseNext(cur)
}

// EqualRange yields the contiguous sub-range of elements with key in
// [lo, hi], empty when none match.
func EqualRange[K, T any](c Bounded[K, T], lo, hi K) Range[T] {
	if c == nil {
		return Range[T]{}
	}
	return c.EqualRange(lo, hi)
}

// EqualRangeReverse yields the identical element set traversed backward.
func EqualRangeReverse[K, T any](c Bounded[K, T], lo, hi K) ReverseRange[T] {
	if c == nil {
		return ReverseRange[T]{}
	}
	return c.EqualRangeReverse(lo, hi)
}

// Copyable is implemented by containers that can deep-duplicate a source
// container of their own type into themselves, preserving iteration order
// and yielding two independently mutable containers.
type Copyable[C, T any] interface {
	CopyFrom(src C, alloc Allocator[T]) error
}

// Copy deep-duplicates src's logical contents into dst, reallocating dst
// through alloc if needed. The allocator may be omitted (NoAlloc) when dst's
// existing capacity suffices; otherwise its absence is a capacity error.
func Copy[C, T any](dst Copyable[C, T], src C, alloc Allocator[T]) error {
	if dst == nil {
		return ErrNilContainer
	}
	return dst.CopyFrom(src, alloc)
}

// Reserve pre-grows c so that n subsequent insertions are guaranteed not to
// reallocate.
func Reserve[T any](c Managed[T], n int, alloc Allocator[T]) error {
	if c == nil {
		return ErrNilContainer
	}
	return c.Reserve(n, alloc)
}

// Clear runs the destructor on every element and resets the count to zero,
// keeping the backing storage.
func Clear[T any](c Managed[T], d Destructor[T]) {
	if c != nil {
		c.Clear(d)
	}
}

// ClearAndFree clears c and releases the backing storage through the
// container's own allocator.
func ClearAndFree[T any](c Managed[T], d Destructor[T]) {
	if c != nil {
		c.ClearAndFree(d)
	}
}

// ClearAndFreeReserve clears c and releases its externally reserved storage
// through the explicitly supplied allocator.
func ClearAndFreeReserve[T any](c Managed[T], d Destructor[T], alloc Allocator[T]) error {
	if c == nil {
		return ErrNilContainer
	}
	return c.ClearAndFreeReserve(d, alloc)
}

// Count returns the number of elements in c; a nil container counts zero.
func Count(c State) int {
	if c == nil {
		return 0
	}
	return c.Count()
}

// Capacity returns the element capacity of c's backing storage.
func Capacity(c State) int {
	if c == nil {
		return 0
	}
	return c.Capacity()
}

// IsEmpty reports whether c holds no elements; a nil container is empty.
func IsEmpty(c State) bool {
	return c == nil || c.IsEmpty()
}

// Validate reports whether c's structural invariants hold; a nil container
// does not validate.
func Validate(c State) bool {
	return c != nil && c.Validate()
}

package gocc

// Pair is the element of keyed containers whose iteration yields both the key
// and the value.
type Pair[K, V any] struct {
	Key   K
	Value V
}

// Keyed is the backend interface behind the Entry state machine. It is
// implemented by keyed containers whose elements keep stable addresses for
// the lifetime of the element (node-based backends).
type Keyed[K, V any] interface {
	// Find returns a reference to the value stored at key, or nil if absent.
	Find(key K) *V

	// Emplace inserts value at a key known to be absent and returns a
	// reference to the new slot. Emplace at a present key is a contract
	// violation.
	Emplace(key K, value V) (*V, error)

	// Delete removes key and returns the value it held.
	Delete(key K) (V, bool)
}

// Handled is the backend interface behind the HandleEntry state machine. It
// is implemented by keyed containers whose storage may relocate elements on
// growth, so elements are addressed through stable opaque handles instead of
// raw references.
type Handled[K, V any] interface {
	// Lookup returns the handle of the element stored at key.
	Lookup(key K) (Handle, bool)

	// EmplaceHandle inserts value at a key known to be absent and returns
	// the handle of the new slot.
	EmplaceHandle(key K, value V) (Handle, error)

	// DeleteHandle removes the element the handle refers to and returns the
	// value it held. A stale handle removes nothing.
	DeleteHandle(h Handle) (V, bool)

	// At resolves a handle to a live reference, or nil if the handle is
	// stale. The reference is valid only until the next mutating call.
	At(h Handle) *V
}

// Iterable enumerates a container's logical ordering: sorted order for
// ordered containers, an implementation-defined but stable order for
// unordered ones. The nil pointer is the end sentinel in both directions.
// Cursors not obtained from the same container's traversal have unspecified
// behavior.
type Iterable[T any] interface {
	Begin() *T
	Next(cur *T) *T
	ReverseBegin() *T
	ReverseNext(cur *T) *T
}

// Bounded yields contiguous sub-ranges of an ordered container. A bounded
// query always yields a range, empty (begin == end) when nothing matches.
type Bounded[K, T any] interface {
	// EqualRange yields the elements with key in [lo, hi] in ascending order.
	EqualRange(lo, hi K) Range[T]

	// EqualRangeReverse yields the identical element set traversed backward.
	EqualRangeReverse(lo, hi K) ReverseRange[T]
}

// Sequence is implemented by positionally ordered containers.
type Sequence[T any] interface {
	PushFront(value T) (*T, error)
	PushBack(value T) (*T, error)
	PopFront() (T, bool)
	PopBack() (T, bool)
	Front() *T
	Back() *T
}

// Splicer relocates elements between positions in the same or a compatible
// container without reallocation, preserving element identity for node-based
// backends.
type Splicer[T any] interface {
	// Splice moves elem from src to before pos in the receiver. A nil pos
	// means the container end.
	Splice(pos *T, src Splicer[T], elem *T) error

	// SpliceRange moves the half-open run [first, last) from src to before
	// pos in the receiver.
	SpliceRange(pos *T, src Splicer[T], first, last *T) error
}

// Priority is implemented by heap-ordered containers. Elements are addressed
// through handles because heap repair reorders storage.
type Priority[K, V any] interface {
	// Push inserts value with the given ordering key and returns its handle.
	Push(key K, value V) (Handle, error)

	// Pop removes and returns the canonical (top) element.
	Pop() (K, V, bool)

	// Front peeks at the top element without removing it.
	Front() (K, *V, bool)

	// FrontHandle returns the handle of the top element.
	FrontHandle() (Handle, bool)

	// Update adjusts the ordering key of a resident element and restores the
	// structural invariant.
	Update(h Handle, key K) error

	// Increase is the one-directional variant of Update usable only when the
	// caller guarantees the key does not sink toward the top.
	Increase(h Handle, key K) error

	// Decrease is the one-directional variant of Update usable only when the
	// caller guarantees the key does not sink toward the bottom.
	Decrease(h Handle, key K) error

	// Erase removes a resident element directly, bypassing lookup, and runs
	// the container's destructor on it.
	Erase(h Handle) error

	// Extract removes a resident element without invoking the destructor,
	// transferring ownership of the value to the caller.
	Extract(h Handle) (K, V, error)
}

// RangeExtractor removes a contiguous run of elements without invoking the
// destructor, transferring ownership of the removed values to the caller.
type RangeExtractor[T any] interface {
	ExtractRange(first, last *T) ([]T, error)
}

// Managed exposes a container's storage discipline. T is the backend's
// element storage type.
//
// Fixed containers (no resize permission) answer growth-requiring operations
// with ErrCapacity. Node-based backends allocate nodes from the Go heap; for
// them the allocator argument is accepted for contract uniformity and its
// tri-mode is not exercised.
type Managed[T any] interface {
	// Reserve pre-grows the container so that n subsequent insertions are
	// guaranteed not to reallocate. On fixed containers it is a no-op when
	// capacity already suffices and ErrCapacity otherwise.
	Reserve(n int, alloc Allocator[T]) error

	// Clear runs the destructor on every element and resets the count to
	// zero, keeping the backing storage. A nil destructor falls back to the
	// container's configured destructor.
	Clear(d Destructor[T])

	// ClearAndFree additionally releases the backing storage through the
	// container's own allocator.
	ClearAndFree(d Destructor[T])

	// ClearAndFreeReserve releases storage of a container built from a
	// single externally reserved buffer that does not itself hold allocator
	// permission; the caller supplies the allocator at teardown.
	ClearAndFreeReserve(d Destructor[T], alloc Allocator[T]) error
}

// State exposes container introspection. Implementations are nil-receiver
// safe: a nil container counts zero, reports empty, and fails Validate.
type State interface {
	Count() int
	Capacity() int
	IsEmpty() bool

	// Validate reports whether the container's structural invariants hold.
	Validate() bool
}

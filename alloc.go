package gocc

// Allocator is the single storage callback behind dynamic containers. It is
// tri-mode over a backing slice:
//
//   - allocate:   alloc(nil, n) with n > 0 returns a new slice of length n
//   - reallocate: alloc(buf, n) with n > 0 returns a slice of length n whose
//     prefix preserves buf's contents (the result may alias buf)
//   - free:       alloc(buf, 0) releases buf and returns nil
//
// An Allocator may fail but must never panic; failure leaves the container in
// its prior valid state and is surfaced through the insert-error flag or an
// operation's error result.
type Allocator[T any] func(buf []T, n int) ([]T, error)

// HeapAllocator returns an Allocator backed by the Go heap. Reallocation
// reuses the existing array when its capacity suffices.
func HeapAllocator[T any]() Allocator[T] {
	return func(buf []T, n int) ([]T, error) {
		switch {
		case n == 0:
			return nil, nil
		case buf != nil && n <= cap(buf):
			return buf[:n], nil
		default:
			grown := make([]T, n)
			copy(grown, buf)
			return grown, nil
		}
	}
}

// NoAlloc is a typed nil Allocator for call sites that must omit the
// allocator, e.g. Copy into a destination whose capacity already suffices.
func NoAlloc[T any]() Allocator[T] { return nil }

// Destructor is invoked exactly once per element removed or cleared, before
// its storage is reclaimed. Invocation order across elements is unspecified.
type Destructor[T any] func(*T)

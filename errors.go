package gocc

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacity is returned when a fixed container cannot grow to satisfy
	// an insertion or reservation and no allocator is available.
	ErrCapacity = errors.New("capacity exhausted")

	// ErrNilContainer is returned when an operation receives a nil container.
	ErrNilContainer = errors.New("nil container")

	// ErrStaleHandle is returned when a handle refers to a slot that has been
	// removed or reused since the handle was issued.
	ErrStaleHandle = errors.New("stale handle")

	// ErrBadSplice is returned when a splice source is not compatible with
	// the destination container.
	ErrBadSplice = errors.New("splice source not compatible")

	// ErrBadCursor is returned when a cursor does not belong to the
	// container it is used with, where the container can detect it.
	ErrBadCursor = errors.New("cursor not owned by container")

	// ErrNoAlloc is returned when an operation that must release or grow
	// externally reserved storage is not given the required allocator.
	ErrNoAlloc = errors.New("allocator required")
)

// ErrAlloc indicates that an allocator failed to provide the requested
// storage. The container is left in its prior valid state.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrAlloc struct {
	Requested int
	cause     error
}

func (e *ErrAlloc) Error() string {
	return fmt.Sprintf("allocation of %d elements failed", e.Requested)
}

func (e *ErrAlloc) Unwrap() error { return e.cause }

// NewErrAlloc wraps an allocator failure for n requested elements.
// Backends use it to surface allocation failures through entries and results.
func NewErrAlloc(n int, cause error) *ErrAlloc {
	return &ErrAlloc{Requested: n, cause: cause}
}

package gocc

// Handle is a stable opaque identity for an element in a container whose
// storage may relocate elements on growth. A handle stays valid until its
// element is removed, regardless of relocation; it must be re-resolved to a
// reference at each point of use.
//
// The low 32 bits index a slot, the high 32 bits carry the slot's generation
// so that reuse of a slot invalidates older handles.
type Handle uint64

// NewHandle packs a slot index and generation into a Handle. It is intended
// for backend implementations.
func NewHandle(slot, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(slot))
}

// Slot returns the slot index the handle refers to.
func (h Handle) Slot() uint32 { return uint32(h) }

// Generation returns the slot generation the handle was issued for.
func (h Handle) Generation() uint32 { return uint32(h >> 32) }

// HandleEntry is the Entry state machine for relocatable-storage containers.
// It carries a Handle instead of a raw reference and resolves it at each use,
// so chained operations observe relocations safely.
type HandleEntry[K, V any] struct {
	host    Handled[K, V]
	key     K
	handle  Handle
	present bool
	old     V
	hasOld  bool
	err     error
}

// HandleOf obtains the handle entry for key: Occupied if key is present,
// Vacant otherwise.
func HandleOf[K, V any](c Handled[K, V], key K) HandleEntry[K, V] {
	if c == nil {
		return HandleEntry[K, V]{key: key, err: ErrNilContainer}
	}
	h, ok := c.Lookup(key)
	return HandleEntry[K, V]{host: c, key: key, handle: h, present: ok}
}

// Key returns the key this entry was queried with.
func (e HandleEntry[K, V]) Key() K { return e.key }

// Handle returns the stable identity of the occupied element. It is only
// meaningful when Occupied reports true.
func (e HandleEntry[K, V]) Handle() Handle { return e.handle }

// Occupied reports whether the entry refers to a live element.
func (e HandleEntry[K, V]) Occupied() bool { return e.present }

// InsertError reports whether an insertion attempt on this entry failed.
func (e HandleEntry[K, V]) InsertError() bool { return e.err != nil }

// Err returns the error behind the insert-error flag, or nil.
func (e HandleEntry[K, V]) Err() error { return e.err }

// Unwrap resolves the handle to a live reference, or nil if Vacant. The
// reference is valid only until the next mutating call on the container.
func (e HandleEntry[K, V]) Unwrap() *V {
	if !e.present || e.host == nil {
		return nil
	}
	return e.host.At(e.handle)
}

// Old returns the value displaced or detached by the operation that produced
// this entry.
func (e HandleEntry[K, V]) Old() (V, bool) { return e.old, e.hasOld }

// AndModify applies fn to the contained value only if Occupied; it is a
// no-op on Vacant entries.
func (e HandleEntry[K, V]) AndModify(fn func(*V)) HandleEntry[K, V] {
	if fn != nil {
		if ref := e.Unwrap(); ref != nil {
			fn(ref)
		}
	}
	return e
}

// AndModifyWith is AndModify with caller context threaded through to fn.
func (e HandleEntry[K, V]) AndModifyWith(fn func(*V, any), ctx any) HandleEntry[K, V] {
	if fn != nil {
		if ref := e.Unwrap(); ref != nil {
			fn(ref, ctx)
		}
	}
	return e
}

// OrInsert converts a Vacant entry to Occupied with value and returns the
// handle of the element. The zero Handle and false are returned when the
// insertion fails.
func (e HandleEntry[K, V]) OrInsert(value V) (Handle, bool) {
	if e.present {
		return e.handle, true
	}
	if e.host == nil {
		return 0, false
	}
	h, err := e.host.EmplaceHandle(e.key, value)
	if err != nil {
		return 0, false
	}
	return h, true
}

// InsertHandle commits value to the entry's slot, overwriting an occupied
// element in place, and returns the handle of the now-occupied element. A
// displaced prior value is not destructed; use SwapHandle to recover it.
func (e HandleEntry[K, V]) InsertHandle(value V) (Handle, bool) {
	if e.present {
		if ref := e.Unwrap(); ref != nil {
			*ref = value
			return e.handle, true
		}
		return 0, false
	}
	return e.OrInsert(value)
}

// RemoveHandle detaches the element if Occupied, yielding a Vacant entry that
// carries the detached value through Old. The destructor is not invoked.
func (e HandleEntry[K, V]) RemoveHandle() HandleEntry[K, V] {
	if !e.present || e.host == nil {
		return e
	}
	old, ok := e.host.DeleteHandle(e.handle)
	return HandleEntry[K, V]{host: e.host, key: e.key, old: old, hasOld: ok}
}

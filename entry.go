package gocc

// Entry is the tagged result of a keyed container query: Occupied with a live
// reference, or Vacant with an insertion slot. Exactly one tag holds at any
// time. The insert-error flag is only meaningful on Vacant entries and marks
// a failed insertion attempt, distinct from ordinary absence.
//
// Entries are ephemeral: produced by one query, chained through zero or more
// modify calls, and consumed by a terminal operation before the next mutating
// call on the same container.
type Entry[K, V any] struct {
	host   Keyed[K, V]
	key    K
	ref    *V
	old    V
	hasOld bool
	err    error
}

// EntryOf obtains the entry for key: Occupied if key is present, Vacant
// otherwise.
func EntryOf[K, V any](c Keyed[K, V], key K) Entry[K, V] {
	if c == nil {
		return Entry[K, V]{key: key, err: ErrNilContainer}
	}
	return Entry[K, V]{host: c, key: key, ref: c.Find(key)}
}

// Key returns the key this entry was queried with.
func (e Entry[K, V]) Key() K { return e.key }

// Occupied reports whether the entry references a live element.
func (e Entry[K, V]) Occupied() bool { return e.ref != nil }

// InsertError reports whether an insertion attempt on this entry failed.
// It is false for plain absence.
func (e Entry[K, V]) InsertError() bool { return e.err != nil }

// Err returns the error behind the insert-error flag, or nil.
func (e Entry[K, V]) Err() error { return e.err }

// Unwrap returns the live reference if Occupied, nil if Vacant (whether or
// not an insert error is set). The reference is valid only until the next
// mutating call on the container.
func (e Entry[K, V]) Unwrap() *V { return e.ref }

// Old returns the value displaced or detached by the operation that produced
// this entry (Swap on an occupied key, RemoveKeyValue, RemoveEntry).
func (e Entry[K, V]) Old() (V, bool) { return e.old, e.hasOld }

// AndModify applies fn to the contained value only if Occupied; it is a no-op
// on Vacant entries. The modification must not alter fields the container
// uses for ordering or hashing; repositioning goes through Priority.Update.
func (e Entry[K, V]) AndModify(fn func(*V)) Entry[K, V] {
	if e.ref != nil && fn != nil {
		fn(e.ref)
	}
	return e
}

// AndModifyWith is AndModify with caller context threaded through to fn.
func (e Entry[K, V]) AndModifyWith(fn func(*V, any), ctx any) Entry[K, V] {
	if e.ref != nil && fn != nil {
		fn(e.ref, ctx)
	}
	return e
}

// OrInsert converts a Vacant entry to Occupied with value and returns the
// live reference; an Occupied entry is returned unchanged. It returns nil
// when the insertion fails.
func (e Entry[K, V]) OrInsert(value V) *V {
	if e.ref != nil {
		return e.ref
	}
	if e.host == nil {
		return nil
	}
	ref, err := e.host.Emplace(e.key, value)
	if err != nil {
		return nil
	}
	return ref
}

// OrInsertWith is OrInsert with the value built lazily, only when the entry
// is Vacant.
func (e Entry[K, V]) OrInsertWith(ctor func() V) *V {
	if e.ref != nil {
		return e.ref
	}
	if ctor == nil {
		return nil
	}
	return e.OrInsert(ctor())
}

// InsertEntry commits value to the entry's slot, overwriting an occupied
// element in place, and returns the live reference to the now-occupied
// element. A displaced prior value is not destructed; use Swap to recover it.
// It returns nil when the insertion fails.
func (e Entry[K, V]) InsertEntry(value V) *V {
	if e.ref != nil {
		*e.ref = value
		return e.ref
	}
	return e.OrInsert(value)
}

// RemoveEntry detaches the element if Occupied, yielding a Vacant entry that
// carries the detached value through Old. The container no longer holds the
// element and its destructor is not invoked. Vacant entries are returned
// unchanged.
func (e Entry[K, V]) RemoveEntry() Entry[K, V] {
	if e.ref == nil || e.host == nil {
		return e
	}
	old, ok := e.host.Delete(e.key)
	return Entry[K, V]{host: e.host, key: e.key, old: old, hasOld: ok}
}

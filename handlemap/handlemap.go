// Package handlemap provides a flat keyed container whose storage relocates
// elements on growth.
//
// Elements live in one contiguous slot array, so growth moves them in memory.
// Raw references obtained from queries are therefore valid only until the
// next mutating call; durable identity is a gocc.Handle, which packs the slot
// index with a generation counter so that slot reuse invalidates older
// handles. Occupancy is tracked with a roaring bitmap, which also defines the
// container's stable iteration order (ascending slot index).
//
// Bookkeeping arrays (generations, key index) are garbage collected; the
// element buffer honors the allocator contract.
package handlemap

import (
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/gocc"
)

// Compile-time checks to ensure Map satisfies the advertised capabilities.
var _ gocc.Handled[int, string] = (*Map[int, string])(nil)
var _ gocc.Iterable[gocc.Pair[int, string]] = (*Map[int, string])(nil)
var _ gocc.Managed[gocc.Pair[int, string]] = (*Map[int, string])(nil)
var _ gocc.State = (*Map[int, string])(nil)
var _ gocc.Copyable[*Map[int, string], gocc.Pair[int, string]] = (*Map[int, string])(nil)

const minGrowth = 8

// Options contains configuration options for a handle map.
type Options[K comparable, V any] struct {
	// Capacity is the initial slot capacity of a dynamic map.
	Capacity int

	// Allocator backs a dynamic map. Defaults to gocc.HeapAllocator.
	// Ignored when Slice is set.
	Allocator gocc.Allocator[gocc.Pair[K, V]]

	// Slice makes the map fixed over this caller-owned slot storage. The map
	// starts empty and may hold at most cap(Slice) elements.
	Slice []gocc.Pair[K, V]

	// Destructor is invoked once per element cleared; clear operations may
	// override it per call.
	Destructor gocc.Destructor[gocc.Pair[K, V]]
}

// Map is a flat keyed container addressed through stable handles.
type Map[K comparable, V any] struct {
	pairs    []gocc.Pair[K, V] // len(pairs) is the capacity; relocates on growth
	gens     []uint32
	occupied *roaring.Bitmap
	index    map[K]uint32
	free     []uint32
	high     uint32 // slots below high have been used at least once
	alloc    gocc.Allocator[gocc.Pair[K, V]]
	fixed    bool
	dtor     gocc.Destructor[gocc.Pair[K, V]]
}

// New creates a handle map. Without options it is dynamic over the Go heap.
func New[K comparable, V any](optFns ...func(o *Options[K, V])) (*Map[K, V], error) {
	var opts Options[K, V]
	for _, fn := range optFns {
		fn(&opts)
	}

	m := &Map[K, V]{
		occupied: roaring.New(),
		index:    make(map[K]uint32),
		dtor:     opts.Destructor,
	}
	if opts.Slice != nil {
		m.pairs = opts.Slice[:cap(opts.Slice)]
		m.gens = make([]uint32, len(m.pairs))
		m.fixed = true
		return m, nil
	}

	m.alloc = opts.Allocator
	if m.alloc == nil {
		m.alloc = gocc.HeapAllocator[gocc.Pair[K, V]]()
	}
	if opts.Capacity > 0 {
		pairs, err := m.alloc(nil, opts.Capacity)
		if err != nil {
			return nil, gocc.NewErrAlloc(opts.Capacity, err)
		}
		m.pairs = pairs
		m.gens = make([]uint32, len(m.pairs))
	}
	return m, nil
}

// grow ensures slot capacity for at least need slots, relocating storage.
func (m *Map[K, V]) grow(need int, alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if need <= len(m.pairs) {
		return nil
	}
	if alloc == nil {
		alloc = m.alloc
	}
	if alloc == nil {
		return gocc.ErrCapacity
	}
	target := max(need, max(minGrowth, 2*len(m.pairs)))
	pairs, err := alloc(m.pairs, target)
	if err != nil {
		return gocc.NewErrAlloc(target, err)
	}
	m.pairs = pairs
	gens := make([]uint32, len(m.pairs))
	copy(gens, m.gens)
	m.gens = gens
	return nil
}

func (m *Map[K, V]) live(h gocc.Handle) bool {
	slot := h.Slot()
	return m.occupied.Contains(slot) && m.gens[slot] == h.Generation()
}

// Lookup returns the handle of the element stored at key.
func (m *Map[K, V]) Lookup(key K) (gocc.Handle, bool) {
	if m == nil {
		return 0, false
	}
	slot, ok := m.index[key]
	if !ok {
		return 0, false
	}
	return gocc.NewHandle(slot, m.gens[slot]), true
}

// EmplaceHandle inserts value at a key known to be absent and returns the
// handle of the new slot. Growth may relocate existing elements; their
// handles stay valid.
func (m *Map[K, V]) EmplaceHandle(key K, value V) (gocc.Handle, error) {
	if m == nil {
		return 0, gocc.ErrNilContainer
	}
	var slot uint32
	if n := len(m.free); n > 0 {
		slot = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		if err := m.grow(int(m.high)+1, nil); err != nil {
			return 0, err
		}
		slot = m.high
		m.high++
	}
	m.pairs[slot] = gocc.Pair[K, V]{Key: key, Value: value}
	m.occupied.Add(slot)
	m.index[key] = slot
	return gocc.NewHandle(slot, m.gens[slot]), nil
}

// DeleteHandle removes the element the handle refers to and returns the
// value it held. The destructor is not invoked; ownership transfers to the
// caller. A stale handle removes nothing.
func (m *Map[K, V]) DeleteHandle(h gocc.Handle) (value V, ok bool) {
	if m == nil || !m.live(h) {
		return value, false
	}
	slot := h.Slot()
	pair := m.pairs[slot]
	delete(m.index, pair.Key)
	m.occupied.Remove(slot)
	m.gens[slot]++
	var zero gocc.Pair[K, V]
	m.pairs[slot] = zero
	m.free = append(m.free, slot)
	return pair.Value, true
}

// At resolves a handle to a live reference, or nil if the handle is stale.
// The reference is valid only until the next mutating call.
func (m *Map[K, V]) At(h gocc.Handle) *V {
	if m == nil || !m.live(h) {
		return nil
	}
	return &m.pairs[h.Slot()].Value
}

// KeyAt returns the key of the element the handle refers to.
func (m *Map[K, V]) KeyAt(h gocc.Handle) (key K, ok bool) {
	if m == nil || !m.live(h) {
		return key, false
	}
	return m.pairs[h.Slot()].Key, true
}

// Handle obtains the handle entry for key: Occupied if present, Vacant
// otherwise.
func (m *Map[K, V]) Handle(key K) gocc.HandleEntry[K, V] {
	return gocc.HandleOf[K, V](m, key)
}

// Contains reports membership of key.
func (m *Map[K, V]) Contains(key K) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[key]
	return ok
}

// GetKeyValue returns a reference to the value stored at key, or nil if
// absent. The reference is valid only until the next mutating call.
func (m *Map[K, V]) GetKeyValue(key K) *V {
	if m == nil {
		return nil
	}
	slot, ok := m.index[key]
	if !ok {
		return nil
	}
	return &m.pairs[slot].Value
}

// slotOf recovers the slot behind a cursor reference, -1 when the cursor
// does not point into the slot array.
func (m *Map[K, V]) slotOf(cur *gocc.Pair[K, V]) int {
	if m == nil || len(m.pairs) == 0 || cur == nil {
		return -1
	}
	size := unsafe.Sizeof(m.pairs[0])
	if size == 0 {
		return -1
	}
	base := uintptr(unsafe.Pointer(&m.pairs[0])) //nolint:gosec // cursor arithmetic over the slot array
	addr := uintptr(unsafe.Pointer(cur))         //nolint:gosec // cursor arithmetic over the slot array
	if addr < base || (addr-base)%size != 0 {
		return -1
	}
	slot := int((addr - base) / size)
	if slot >= len(m.pairs) {
		return -1
	}
	return slot
}

// Begin returns the element in the lowest occupied slot, nil on empty.
// Slot order is the map's stable, implementation-defined iteration order.
func (m *Map[K, V]) Begin() *gocc.Pair[K, V] {
	if m == nil || m.occupied.IsEmpty() {
		return nil
	}
	return &m.pairs[m.occupied.Minimum()]
}

// Next advances a forward cursor to the next occupied slot.
func (m *Map[K, V]) Next(cur *gocc.Pair[K, V]) *gocc.Pair[K, V] {
	slot := m.slotOf(cur)
	if slot < 0 {
		return nil
	}
	// Rank counts occupied slots <= slot, so it is the 0-based position of
	// the next occupied slot.
	rank := m.occupied.Rank(uint32(slot))
	if rank >= uint64(m.occupied.GetCardinality()) {
		return nil
	}
	next, err := m.occupied.Select(uint32(rank))
	if err != nil {
		return nil
	}
	return &m.pairs[next]
}

// ReverseBegin returns the element in the highest occupied slot, nil on
// empty.
func (m *Map[K, V]) ReverseBegin() *gocc.Pair[K, V] {
	if m == nil || m.occupied.IsEmpty() {
		return nil
	}
	return &m.pairs[m.occupied.Maximum()]
}

// ReverseNext advances a reverse cursor to the previous occupied slot.
func (m *Map[K, V]) ReverseNext(cur *gocc.Pair[K, V]) *gocc.Pair[K, V] {
	slot := m.slotOf(cur)
	if slot < 0 {
		return nil
	}
	rank := m.occupied.Rank(uint32(slot))
	if rank < 2 {
		return nil
	}
	prev, err := m.occupied.Select(uint32(rank - 2))
	if err != nil {
		return nil
	}
	return &m.pairs[prev]
}

// Reserve pre-grows the map so that n subsequent insertions are guaranteed
// not to relocate the slot array. On a fixed map without an explicit
// allocator it is a no-op when capacity suffices and gocc.ErrCapacity otherwise.
func (m *Map[K, V]) Reserve(n int, alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if m == nil {
		return gocc.ErrNilContainer
	}
	avail := len(m.free) + len(m.pairs) - int(m.high)
	if avail >= n {
		return nil
	}
	if m.fixed && alloc == nil {
		return gocc.ErrCapacity
	}
	return m.grow(len(m.pairs)+n-avail, alloc)
}

// clearSlots empties the map, invalidating all outstanding handles.
func (m *Map[K, V]) clearSlots(d gocc.Destructor[gocc.Pair[K, V]]) {
	if d == nil {
		d = m.dtor
	}
	var zero gocc.Pair[K, V]
	it := m.occupied.Iterator()
	for it.HasNext() {
		slot := it.Next()
		if d != nil {
			d(&m.pairs[slot])
		}
		m.pairs[slot] = zero
	}
	// Bump generations of every slot ever used so recycled slots do not
	// resurrect old handles.
	for slot := uint32(0); slot < m.high; slot++ {
		m.gens[slot]++
	}
	m.occupied.Clear()
	clear(m.index)
	m.free = m.free[:0]
	m.high = 0
}

// Clear runs the destructor on every element and resets the count to zero,
// keeping the backing storage.
func (m *Map[K, V]) Clear(d gocc.Destructor[gocc.Pair[K, V]]) {
	if m == nil {
		return
	}
	m.clearSlots(d)
}

// ClearAndFree clears the map and releases the slot storage through the
// map's own allocator.
func (m *Map[K, V]) ClearAndFree(d gocc.Destructor[gocc.Pair[K, V]]) {
	if m == nil {
		return
	}
	m.clearSlots(d)
	if m.alloc != nil && m.pairs != nil {
		m.pairs, _ = m.alloc(m.pairs, 0)
	}
	m.pairs = nil
	m.gens = nil
	m.free = nil
}

// ClearAndFreeReserve clears a map whose storage was reserved through an
// external allocator and releases that storage; the caller must supply the
// allocator explicitly.
func (m *Map[K, V]) ClearAndFreeReserve(d gocc.Destructor[gocc.Pair[K, V]], alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if m == nil {
		return gocc.ErrNilContainer
	}
	if alloc == nil {
		return gocc.ErrNoAlloc
	}
	m.clearSlots(d)
	m.pairs, _ = alloc(m.pairs, 0)
	m.pairs = nil
	m.gens = nil
	m.free = nil
	return nil
}

// CopyFrom deep-duplicates src's contents into the map, preserving iteration
// order; slots are reassigned compactly, so src handles do not apply to the
// copy. Prior contents are discarded without destruction. The allocator may
// be omitted when the existing capacity suffices.
func (m *Map[K, V]) CopyFrom(src *Map[K, V], alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if m == nil || src == nil {
		return gocc.ErrNilContainer
	}
	need := src.Count()
	if need > len(m.pairs) {
		if alloc == nil && m.alloc == nil {
			return gocc.ErrCapacity
		}
		if err := m.grow(need, alloc); err != nil {
			return err
		}
	}
	m.clearSlots(func(*gocc.Pair[K, V]) {})
	it := src.occupied.Iterator()
	for it.HasNext() {
		pair := src.pairs[it.Next()]
		if _, err := m.EmplaceHandle(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of elements.
func (m *Map[K, V]) Count() int {
	if m == nil {
		return 0
	}
	return int(m.occupied.GetCardinality())
}

// Capacity returns the slot capacity of the backing storage.
func (m *Map[K, V]) Capacity() int {
	if m == nil {
		return 0
	}
	return len(m.pairs)
}

// IsEmpty reports whether the map holds no elements.
func (m *Map[K, V]) IsEmpty() bool { return m.Count() == 0 }

// Validate reports whether the slot bookkeeping invariants hold: the key
// index, occupancy bitmap, freelist and watermark must agree.
func (m *Map[K, V]) Validate() bool {
	if m == nil || m.occupied == nil {
		return false
	}
	card := int(m.occupied.GetCardinality())
	if card != len(m.index) {
		return false
	}
	if int(m.high) > len(m.pairs) {
		return false
	}
	if card+len(m.free) != int(m.high) {
		return false
	}
	for _, slot := range m.free {
		if m.occupied.Contains(slot) {
			return false
		}
	}
	for key, slot := range m.index {
		if !m.occupied.Contains(slot) || m.pairs[slot].Key != key {
			return false
		}
	}
	return true
}

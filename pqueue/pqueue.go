// Package pqueue provides a binary-heap priority queue addressed through
// stable handles.
//
// Elements live in a flat slot array; a separate heap array of slot ids
// carries the ordering, and a position array keeps the two in sync. Pushes
// and priority updates rearrange only the id arrays, so a handle stays valid
// for the lifetime of its element no matter how the heap shifts. The queue
// is a min-heap by default; Max flips it.
package pqueue

import (
	"cmp"
	"unsafe"

	"github.com/hupe1980/gocc"
)

// Compile-time checks to ensure Queue satisfies the advertised capabilities.
var _ gocc.Priority[int, string] = (*Queue[int, string])(nil)
var _ gocc.Iterable[gocc.Pair[int, string]] = (*Queue[int, string])(nil)
var _ gocc.Managed[gocc.Pair[int, string]] = (*Queue[int, string])(nil)
var _ gocc.State = (*Queue[int, string])(nil)
var _ gocc.Copyable[*Queue[int, string], gocc.Pair[int, string]] = (*Queue[int, string])(nil)

const minGrowth = 8

// Options contains configuration options for a priority queue.
type Options[K cmp.Ordered, V any] struct {
	// Max orders the queue so the largest key is at the front. The default
	// is a min-heap.
	Max bool

	// Capacity is the initial slot capacity of a dynamic queue.
	Capacity int

	// Allocator backs a dynamic queue. Defaults to gocc.HeapAllocator.
	// Ignored when Slice is set.
	Allocator gocc.Allocator[gocc.Pair[K, V]]

	// Slice makes the queue fixed over this caller-owned slot storage. The
	// queue starts empty and may hold at most cap(Slice) elements.
	Slice []gocc.Pair[K, V]

	// Destructor is invoked once per element erased or cleared; clear
	// operations may override it per call.
	Destructor gocc.Destructor[gocc.Pair[K, V]]
}

// Queue is a handle-stable binary heap keyed by priority.
type Queue[K cmp.Ordered, V any] struct {
	slots []gocc.Pair[K, V] // indexed by slot id; relocates on growth
	gens  []uint32
	heap  []uint32 // slot ids in heap order
	pos   []uint32 // slot id -> index into heap; maintained by sift moves
	free  []uint32
	max   bool
	alloc gocc.Allocator[gocc.Pair[K, V]]
	fixed bool
	dtor  gocc.Destructor[gocc.Pair[K, V]]
}

// New creates a priority queue. Without options it is a dynamic min-heap
// over the Go heap.
func New[K cmp.Ordered, V any](optFns ...func(o *Options[K, V])) (*Queue[K, V], error) {
	var opts Options[K, V]
	for _, fn := range optFns {
		fn(&opts)
	}

	q := &Queue[K, V]{
		max:  opts.Max,
		dtor: opts.Destructor,
	}
	if opts.Slice != nil {
		q.slots = opts.Slice[:cap(opts.Slice)]
		q.gens = make([]uint32, len(q.slots))
		q.pos = make([]uint32, len(q.slots))
		q.fixed = true
		return q, nil
	}

	q.alloc = opts.Allocator
	if q.alloc == nil {
		q.alloc = gocc.HeapAllocator[gocc.Pair[K, V]]()
	}
	if opts.Capacity > 0 {
		slots, err := q.alloc(nil, opts.Capacity)
		if err != nil {
			return nil, gocc.NewErrAlloc(opts.Capacity, err)
		}
		q.slots = slots
		q.gens = make([]uint32, len(q.slots))
		q.pos = make([]uint32, len(q.slots))
	}
	return q, nil
}

// before reports whether key a belongs closer to the front than key b.
func (q *Queue[K, V]) before(a, b K) bool {
	if q.max {
		return a > b
	}
	return a < b
}

// grow ensures slot capacity for at least need slots, relocating storage.
func (q *Queue[K, V]) grow(need int, alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if need <= len(q.slots) {
		return nil
	}
	if alloc == nil {
		alloc = q.alloc
	}
	if alloc == nil {
		return gocc.ErrCapacity
	}
	target := max(need, max(minGrowth, 2*len(q.slots)))
	slots, err := alloc(q.slots, target)
	if err != nil {
		return gocc.NewErrAlloc(target, err)
	}
	q.slots = slots
	gens := make([]uint32, len(q.slots))
	copy(gens, q.gens)
	q.gens = gens
	pos := make([]uint32, len(q.slots))
	copy(pos, q.pos)
	q.pos = pos
	return nil
}

func (q *Queue[K, V]) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.pos[q.heap[i]], q.pos[q.heap[j]] = uint32(i), uint32(j)
}

func (q *Queue[K, V]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.before(q.slots[q.heap[i]].Key, q.slots[q.heap[parent]].Key) {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *Queue[K, V]) siftDown(i int) {
	n := len(q.heap)
	for {
		best := i
		if l := 2*i + 1; l < n && q.before(q.slots[q.heap[l]].Key, q.slots[q.heap[best]].Key) {
			best = l
		}
		if r := 2*i + 2; r < n && q.before(q.slots[q.heap[r]].Key, q.slots[q.heap[best]].Key) {
			best = r
		}
		if best == i {
			return
		}
		q.swap(i, best)
		i = best
	}
}

func (q *Queue[K, V]) live(h gocc.Handle) bool {
	slot := h.Slot()
	if int(slot) >= len(q.slots) || q.gens[slot] != h.Generation() {
		return false
	}
	p := q.pos[slot]
	return int(p) < len(q.heap) && q.heap[p] == slot
}

// Push inserts value with the given priority key and returns a handle that
// stays valid until the element leaves the queue.
func (q *Queue[K, V]) Push(key K, value V) (gocc.Handle, error) {
	if q == nil {
		return 0, gocc.ErrNilContainer
	}
	var slot uint32
	if n := len(q.free); n > 0 {
		slot = q.free[n-1]
		q.free = q.free[:n-1]
	} else {
		if err := q.grow(len(q.heap)+1, nil); err != nil {
			return 0, err
		}
		slot = uint32(len(q.heap))
	}
	q.slots[slot] = gocc.Pair[K, V]{Key: key, Value: value}
	q.pos[slot] = uint32(len(q.heap))
	q.heap = append(q.heap, slot)
	q.siftUp(len(q.heap) - 1)
	return gocc.NewHandle(slot, q.gens[slot]), nil
}

// removeAt unlinks the element at heap index i and returns its slot id.
func (q *Queue[K, V]) removeAt(i int) uint32 {
	slot := q.heap[i]
	last := len(q.heap) - 1
	q.swap(i, last)
	q.heap = q.heap[:last]
	if i < last {
		q.siftDown(i)
		q.siftUp(i)
	}
	q.gens[slot]++
	q.free = append(q.free, slot)
	return slot
}

// Pop removes the front element and returns its key and value. The
// destructor is not invoked; ownership transfers to the caller.
func (q *Queue[K, V]) Pop() (key K, value V, ok bool) {
	if q == nil || len(q.heap) == 0 {
		return key, value, false
	}
	slot := q.removeAt(0)
	pair := q.slots[slot]
	var zero gocc.Pair[K, V]
	q.slots[slot] = zero
	return pair.Key, pair.Value, true
}

// Front returns the key and a reference to the value of the front element
// without removing it. The reference is valid only until the next mutating
// call.
func (q *Queue[K, V]) Front() (key K, value *V, ok bool) {
	if q == nil || len(q.heap) == 0 {
		return key, nil, false
	}
	pair := &q.slots[q.heap[0]]
	return pair.Key, &pair.Value, true
}

// FrontHandle returns the handle of the front element.
func (q *Queue[K, V]) FrontHandle() (gocc.Handle, bool) {
	if q == nil || len(q.heap) == 0 {
		return 0, false
	}
	slot := q.heap[0]
	return gocc.NewHandle(slot, q.gens[slot]), true
}

// Update changes the priority of the element the handle refers to and
// restores heap order. The handle stays valid.
func (q *Queue[K, V]) Update(h gocc.Handle, key K) error {
	if q == nil {
		return gocc.ErrNilContainer
	}
	if !q.live(h) {
		return gocc.ErrStaleHandle
	}
	slot := h.Slot()
	q.slots[slot].Key = key
	i := int(q.pos[slot])
	q.siftUp(i)
	q.siftDown(int(q.pos[slot]))
	return nil
}

// Increase raises the priority key of the element the handle refers to.
// It is a directional hint over Update.
func (q *Queue[K, V]) Increase(h gocc.Handle, key K) error { return q.Update(h, key) }

// Decrease lowers the priority key of the element the handle refers to.
// It is a directional hint over Update.
func (q *Queue[K, V]) Decrease(h gocc.Handle, key K) error { return q.Update(h, key) }

// Erase removes the element the handle refers to from any position in the
// queue and runs the configured destructor on it.
func (q *Queue[K, V]) Erase(h gocc.Handle) error {
	if q == nil {
		return gocc.ErrNilContainer
	}
	if !q.live(h) {
		return gocc.ErrStaleHandle
	}
	slot := q.removeAt(int(q.pos[h.Slot()]))
	if q.dtor != nil {
		q.dtor(&q.slots[slot])
	}
	var zero gocc.Pair[K, V]
	q.slots[slot] = zero
	return nil
}

// Extract removes the element the handle refers to and returns its key and
// value without running the destructor; ownership transfers to the caller.
func (q *Queue[K, V]) Extract(h gocc.Handle) (key K, value V, err error) {
	if q == nil {
		return key, value, gocc.ErrNilContainer
	}
	if !q.live(h) {
		return key, value, gocc.ErrStaleHandle
	}
	slot := q.removeAt(int(q.pos[h.Slot()]))
	pair := q.slots[slot]
	var zero gocc.Pair[K, V]
	q.slots[slot] = zero
	return pair.Key, pair.Value, nil
}

// At resolves a handle to a live reference, or nil if the handle is stale.
// The reference is valid only until the next mutating call.
func (q *Queue[K, V]) At(h gocc.Handle) *V {
	if q == nil || !q.live(h) {
		return nil
	}
	return &q.slots[h.Slot()].Value
}

// slotOf recovers the slot behind a cursor reference, -1 when the cursor
// does not point into the slot array.
func (q *Queue[K, V]) slotOf(cur *gocc.Pair[K, V]) int {
	if q == nil || len(q.slots) == 0 || cur == nil {
		return -1
	}
	size := unsafe.Sizeof(q.slots[0])
	if size == 0 {
		return -1
	}
	base := uintptr(unsafe.Pointer(&q.slots[0])) //nolint:gosec // cursor arithmetic over the slot array
	addr := uintptr(unsafe.Pointer(cur))         //nolint:gosec // cursor arithmetic over the slot array
	if addr < base || (addr-base)%size != 0 {
		return -1
	}
	slot := int((addr - base) / size)
	if slot >= len(q.slots) {
		return -1
	}
	return slot
}

// Begin returns the front element. Iteration follows the heap array, so only
// the first element is ordered; the rest is implementation-defined.
func (q *Queue[K, V]) Begin() *gocc.Pair[K, V] {
	if q == nil || len(q.heap) == 0 {
		return nil
	}
	return &q.slots[q.heap[0]]
}

// Next advances a forward cursor through the heap array.
func (q *Queue[K, V]) Next(cur *gocc.Pair[K, V]) *gocc.Pair[K, V] {
	slot := q.slotOf(cur)
	if slot < 0 {
		return nil
	}
	i := int(q.pos[slot]) + 1
	if i >= len(q.heap) {
		return nil
	}
	return &q.slots[q.heap[i]]
}

// ReverseBegin returns the last element in heap array order.
func (q *Queue[K, V]) ReverseBegin() *gocc.Pair[K, V] {
	if q == nil || len(q.heap) == 0 {
		return nil
	}
	return &q.slots[q.heap[len(q.heap)-1]]
}

// ReverseNext advances a reverse cursor through the heap array.
func (q *Queue[K, V]) ReverseNext(cur *gocc.Pair[K, V]) *gocc.Pair[K, V] {
	slot := q.slotOf(cur)
	if slot < 0 {
		return nil
	}
	i := int(q.pos[slot]) - 1
	if i < 0 {
		return nil
	}
	return &q.slots[q.heap[i]]
}

// Reserve pre-grows the queue so that n subsequent pushes are guaranteed not
// to relocate the slot array. On a fixed queue without an explicit allocator
// it is a no-op when capacity suffices and gocc.ErrCapacity otherwise.
func (q *Queue[K, V]) Reserve(n int, alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if q == nil {
		return gocc.ErrNilContainer
	}
	avail := len(q.slots) - len(q.heap)
	if avail >= n {
		return nil
	}
	if q.fixed && alloc == nil {
		return gocc.ErrCapacity
	}
	return q.grow(len(q.slots)+n-avail, alloc)
}

// clearSlots empties the queue, invalidating all outstanding handles.
func (q *Queue[K, V]) clearSlots(d gocc.Destructor[gocc.Pair[K, V]]) {
	if d == nil {
		d = q.dtor
	}
	var zero gocc.Pair[K, V]
	for _, slot := range q.heap {
		if d != nil {
			d(&q.slots[slot])
		}
		q.slots[slot] = zero
		q.gens[slot]++
	}
	for _, slot := range q.free {
		q.gens[slot]++
	}
	q.heap = q.heap[:0]
	q.free = q.free[:0]
}

// Clear runs the destructor on every element and resets the count to zero,
// keeping the backing storage.
func (q *Queue[K, V]) Clear(d gocc.Destructor[gocc.Pair[K, V]]) {
	if q == nil {
		return
	}
	q.clearSlots(d)
}

// ClearAndFree clears the queue and releases the slot storage through the
// queue's own allocator.
func (q *Queue[K, V]) ClearAndFree(d gocc.Destructor[gocc.Pair[K, V]]) {
	if q == nil {
		return
	}
	q.clearSlots(d)
	if q.alloc != nil && q.slots != nil {
		q.slots, _ = q.alloc(q.slots, 0)
	}
	q.slots = nil
	q.gens = nil
	q.pos = nil
	q.heap = nil
	q.free = nil
}

// ClearAndFreeReserve clears a queue whose storage was reserved through an
// external allocator and releases that storage; the caller must supply the
// allocator explicitly.
func (q *Queue[K, V]) ClearAndFreeReserve(d gocc.Destructor[gocc.Pair[K, V]], alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if q == nil {
		return gocc.ErrNilContainer
	}
	if alloc == nil {
		return gocc.ErrNoAlloc
	}
	q.clearSlots(d)
	q.slots, _ = alloc(q.slots, 0)
	q.slots = nil
	q.gens = nil
	q.pos = nil
	q.heap = nil
	q.free = nil
	return nil
}

// CopyFrom deep-duplicates src's contents into the queue; slots are
// reassigned, so src handles do not apply to the copy. Prior contents are
// discarded without destruction. The allocator may be omitted when the
// existing capacity suffices.
func (q *Queue[K, V]) CopyFrom(src *Queue[K, V], alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if q == nil || src == nil {
		return gocc.ErrNilContainer
	}
	need := len(src.heap)
	if need > len(q.slots) {
		if alloc == nil && q.alloc == nil {
			return gocc.ErrCapacity
		}
		if err := q.grow(need, alloc); err != nil {
			return err
		}
	}
	q.clearSlots(func(*gocc.Pair[K, V]) {})
	q.max = src.max
	for _, slot := range src.heap {
		pair := src.slots[slot]
		if _, err := q.Push(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of elements.
func (q *Queue[K, V]) Count() int {
	if q == nil {
		return 0
	}
	return len(q.heap)
}

// Capacity returns the slot capacity of the backing storage.
func (q *Queue[K, V]) Capacity() int {
	if q == nil {
		return 0
	}
	return len(q.slots)
}

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[K, V]) IsEmpty() bool { return q.Count() == 0 }

// Validate reports whether the heap property holds at every node and the
// position array mirrors the heap array.
func (q *Queue[K, V]) Validate() bool {
	if q == nil {
		return false
	}
	if len(q.heap)+len(q.free) > len(q.slots) {
		return false
	}
	for i, slot := range q.heap {
		if int(slot) >= len(q.slots) || int(q.pos[slot]) != i {
			return false
		}
		if i > 0 {
			parent := (i - 1) / 2
			if q.before(q.slots[slot].Key, q.slots[q.heap[parent]].Key) {
				return false
			}
		}
	}
	return true
}

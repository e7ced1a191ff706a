// Package ordmap provides an ordered map with stable element addresses.
//
// The map is a skiplist: elements live in individually allocated nodes, so
// references obtained from queries stay valid until their element is removed
// and the map supports the Entry interface directly. Iteration follows
// ascending key order; bounded queries yield contiguous sub-ranges of that
// order.
//
// Nodes are garbage collected. Reserve pre-allocates nodes so that the
// following insertions allocate nothing; the allocator argument of the memory
// interface is accepted for contract uniformity and is otherwise unused.
package ordmap

import (
	"cmp"
	"math/bits"
	"math/rand/v2"
	"unsafe"

	"github.com/hupe1980/gocc"
)

// Compile-time checks to ensure Map satisfies the advertised capabilities.
var _ gocc.Keyed[int, string] = (*Map[int, string])(nil)
var _ gocc.Iterable[gocc.Pair[int, string]] = (*Map[int, string])(nil)
var _ gocc.Bounded[int, gocc.Pair[int, string]] = (*Map[int, string])(nil)
var _ gocc.RangeExtractor[gocc.Pair[int, string]] = (*Map[int, string])(nil)
var _ gocc.Managed[gocc.Pair[int, string]] = (*Map[int, string])(nil)
var _ gocc.State = (*Map[int, string])(nil)
var _ gocc.Copyable[*Map[int, string], gocc.Pair[int, string]] = (*Map[int, string])(nil)

const maxLevel = 24

type node[K cmp.Ordered, V any] struct {
	// pair must stay the first field: cursors are *pair and are converted
	// back to their node.
	pair gocc.Pair[K, V]
	prev *node[K, V]
	next []*node[K, V]
}

// Options contains configuration options for an ordered map.
type Options[K cmp.Ordered, V any] struct {
	// Destructor is invoked once per element cleared; clear operations may
	// override it per call.
	Destructor gocc.Destructor[gocc.Pair[K, V]]
}

// Map is a skiplist-backed ordered map.
type Map[K cmp.Ordered, V any] struct {
	head  *node[K, V] // sentinel, never holds an element
	tail  *node[K, V]
	level int
	count int
	free  []*node[K, V]
	dtor  gocc.Destructor[gocc.Pair[K, V]]
}

// New creates an empty ordered map.
func New[K cmp.Ordered, V any](optFns ...func(o *Options[K, V])) *Map[K, V] {
	var opts Options[K, V]
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Map[K, V]{
		head:  &node[K, V]{next: make([]*node[K, V], maxLevel)},
		level: 1,
		dtor:  opts.Destructor,
	}
}

func nodeOf[K cmp.Ordered, V any](cur *gocc.Pair[K, V]) *node[K, V] {
	return (*node[K, V])(unsafe.Pointer(cur)) //nolint:gosec // pair is the first node field
}

func randomLevel() int {
	return 1 + bits.TrailingZeros64(rand.Uint64()|1<<(maxLevel-1))
}

// findPredecessors fills preds with the rightmost node strictly before key on
// every level and returns the candidate node at or after key on level zero.
func (m *Map[K, V]) findPredecessors(key K, preds *[maxLevel]*node[K, V]) *node[K, V] {
	x := m.head
	for i := m.level - 1; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].pair.Key < key {
			x = x.next[i]
		}
		preds[i] = x
	}
	return x.next[0]
}

// Find returns a reference to the value stored at key, or nil if absent.
func (m *Map[K, V]) Find(key K) *V {
	if m == nil {
		return nil
	}
	x := m.head
	for i := m.level - 1; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].pair.Key < key {
			x = x.next[i]
		}
	}
	if cand := x.next[0]; cand != nil && cand.pair.Key == key {
		return &cand.pair.Value
	}
	return nil
}

// newNode takes a node from the freelist when possible.
func (m *Map[K, V]) newNode(lvl int) *node[K, V] {
	if n := len(m.free); n > 0 {
		nd := m.free[n-1]
		m.free = m.free[:n-1]
		if cap(nd.next) < lvl {
			nd.next = make([]*node[K, V], lvl)
		}
		nd.next = nd.next[:lvl]
		for i := range nd.next {
			nd.next[i] = nil
		}
		nd.prev = nil
		return nd
	}
	return &node[K, V]{next: make([]*node[K, V], lvl)}
}

func (m *Map[K, V]) releaseNode(nd *node[K, V]) {
	var zero gocc.Pair[K, V]
	nd.pair = zero
	nd.prev = nil
	for i := range nd.next {
		nd.next[i] = nil
	}
	m.free = append(m.free, nd)
}

// Emplace inserts value at key and returns a reference to the slot. A present
// key is assigned in place.
func (m *Map[K, V]) Emplace(key K, value V) (*V, error) {
	if m == nil {
		return nil, gocc.ErrNilContainer
	}
	var preds [maxLevel]*node[K, V]
	if cand := m.findPredecessors(key, &preds); cand != nil && cand.pair.Key == key {
		cand.pair.Value = value
		return &cand.pair.Value, nil
	}

	lvl := randomLevel()
	for i := m.level; i < lvl; i++ {
		preds[i] = m.head
	}
	if lvl > m.level {
		m.level = lvl
	}

	nd := m.newNode(lvl)
	nd.pair = gocc.Pair[K, V]{Key: key, Value: value}
	for i := 0; i < lvl; i++ {
		nd.next[i] = preds[i].next[i]
		preds[i].next[i] = nd
	}
	if preds[0] != m.head {
		nd.prev = preds[0]
	}
	if succ := nd.next[0]; succ != nil {
		succ.prev = nd
	} else {
		m.tail = nd
	}
	m.count++
	return &nd.pair.Value, nil
}

// Delete removes key and returns the value it held. The destructor is not
// invoked; ownership transfers to the caller.
func (m *Map[K, V]) Delete(key K) (value V, ok bool) {
	if m == nil {
		return value, false
	}
	var preds [maxLevel]*node[K, V]
	cand := m.findPredecessors(key, &preds)
	if cand == nil || cand.pair.Key != key {
		return value, false
	}

	for i := 0; i < m.level; i++ {
		if preds[i].next[i] != cand {
			break
		}
		preds[i].next[i] = cand.next[i]
	}
	if succ := cand.next[0]; succ != nil {
		succ.prev = cand.prev
	} else {
		m.tail = cand.prev
	}
	for m.level > 1 && m.head.next[m.level-1] == nil {
		m.level--
	}

	value = cand.pair.Value
	m.releaseNode(cand)
	m.count--
	return value, true
}

// Entry obtains the entry for key: Occupied if present, Vacant otherwise.
func (m *Map[K, V]) Entry(key K) gocc.Entry[K, V] {
	return gocc.EntryOf[K, V](m, key)
}

// Contains reports membership of key.
func (m *Map[K, V]) Contains(key K) bool { return m.Find(key) != nil }

// Begin returns the element with the smallest key, nil on empty.
func (m *Map[K, V]) Begin() *gocc.Pair[K, V] {
	if m == nil || m.head.next[0] == nil {
		return nil
	}
	return &m.head.next[0].pair
}

// Next advances a forward cursor in ascending key order.
func (m *Map[K, V]) Next(cur *gocc.Pair[K, V]) *gocc.Pair[K, V] {
	if m == nil || cur == nil {
		return nil
	}
	succ := nodeOf(cur).next[0]
	if succ == nil {
		return nil
	}
	return &succ.pair
}

// ReverseBegin returns the element with the largest key, nil on empty.
func (m *Map[K, V]) ReverseBegin() *gocc.Pair[K, V] {
	if m == nil || m.tail == nil {
		return nil
	}
	return &m.tail.pair
}

// ReverseNext advances a reverse cursor in descending key order.
func (m *Map[K, V]) ReverseNext(cur *gocc.Pair[K, V]) *gocc.Pair[K, V] {
	if m == nil || cur == nil {
		return nil
	}
	pred := nodeOf(cur).prev
	if pred == nil {
		return nil
	}
	return &pred.pair
}

// lowerBound returns the first node with key >= bound.
func (m *Map[K, V]) lowerBound(bound K) *node[K, V] {
	x := m.head
	for i := m.level - 1; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].pair.Key < bound {
			x = x.next[i]
		}
	}
	return x.next[0]
}

// upperBound returns the first node with key > bound.
func (m *Map[K, V]) upperBound(bound K) *node[K, V] {
	x := m.head
	for i := m.level - 1; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].pair.Key <= bound {
			x = x.next[i]
		}
	}
	return x.next[0]
}

func pairOf[K cmp.Ordered, V any](nd *node[K, V]) *gocc.Pair[K, V] {
	if nd == nil {
		return nil
	}
	return &nd.pair
}

// EqualRange yields the elements with key in [lo, hi] in ascending order,
// empty (begin == end) when none match. A crossed interval (hi < lo) matches
// nothing.
func (m *Map[K, V]) EqualRange(lo, hi K) gocc.Range[gocc.Pair[K, V]] {
	if m == nil || hi < lo {
		return gocc.Range[gocc.Pair[K, V]]{}
	}
	first := m.lowerBound(lo)
	last := m.upperBound(hi)
	return gocc.NewRange(pairOf(first), pairOf(last), m.Next)
}

// EqualRangeReverse yields the identical element set traversed backward.
func (m *Map[K, V]) EqualRangeReverse(lo, hi K) gocc.ReverseRange[gocc.Pair[K, V]] {
	if m == nil || hi < lo {
		return gocc.ReverseRange[gocc.Pair[K, V]]{}
	}
	// The reverse run starts at the last element <= hi and stops before the
	// last element < lo.
	first := m.predecessor(m.upperBound(hi))
	last := m.predecessor(m.lowerBound(lo))
	return gocc.NewReverseRange(pairOf(first), pairOf(last), m.ReverseNext)
}

// predecessor returns the node before nd on level zero, where a nil nd means
// one past the end.
func (m *Map[K, V]) predecessor(nd *node[K, V]) *node[K, V] {
	if nd == nil {
		return m.tail
	}
	return nd.prev
}

// ExtractRange removes the half-open run [first, last) without invoking the
// destructor, transferring ownership of the removed pairs to the caller.
func (m *Map[K, V]) ExtractRange(first, last *gocc.Pair[K, V]) ([]gocc.Pair[K, V], error) {
	if m == nil {
		return nil, gocc.ErrNilContainer
	}
	if first == nil {
		return nil, nil
	}
	var keys []K
	for cur := first; cur != last; cur = m.Next(cur) {
		keys = append(keys, cur.Key)
	}
	out := make([]gocc.Pair[K, V], 0, len(keys))
	for _, key := range keys {
		value, ok := m.Delete(key)
		if !ok {
			return out, gocc.ErrBadCursor
		}
		out = append(out, gocc.Pair[K, V]{Key: key, Value: value})
	}
	return out, nil
}

// Reserve pre-allocates n nodes so that n subsequent insertions allocate
// nothing and never invalidate references. Node storage is garbage collected;
// alloc is unused.
func (m *Map[K, V]) Reserve(n int, alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if m == nil {
		return gocc.ErrNilContainer
	}
	_ = alloc
	for i := 0; i < n; i++ {
		m.free = append(m.free, &node[K, V]{next: make([]*node[K, V], maxLevel)})
	}
	return nil
}

func (m *Map[K, V]) clearNodes(d gocc.Destructor[gocc.Pair[K, V]], keepNodes bool) {
	if d == nil {
		d = m.dtor
	}
	for nd := m.head.next[0]; nd != nil; {
		succ := nd.next[0]
		if d != nil {
			d(&nd.pair)
		}
		if keepNodes {
			m.releaseNode(nd)
		}
		nd = succ
	}
	for i := range m.head.next {
		m.head.next[i] = nil
	}
	m.tail = nil
	m.level = 1
	m.count = 0
}

// Clear runs the destructor on every element and resets the count to zero,
// keeping the emptied nodes for reuse.
func (m *Map[K, V]) Clear(d gocc.Destructor[gocc.Pair[K, V]]) {
	if m == nil {
		return
	}
	m.clearNodes(d, true)
}

// ClearAndFree clears the map and drops all node storage, including the
// reserve freelist.
func (m *Map[K, V]) ClearAndFree(d gocc.Destructor[gocc.Pair[K, V]]) {
	if m == nil {
		return
	}
	m.clearNodes(d, false)
	m.free = nil
}

// ClearAndFreeReserve clears the map and drops all node storage. Nodes are
// garbage collected, so the explicit allocator is accepted and unused.
func (m *Map[K, V]) ClearAndFreeReserve(d gocc.Destructor[gocc.Pair[K, V]], alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if m == nil {
		return gocc.ErrNilContainer
	}
	_ = alloc
	m.clearNodes(d, false)
	m.free = nil
	return nil
}

// CopyFrom deep-duplicates src's contents into the map, preserving iteration
// order. Prior contents are discarded without destruction. The allocator is
// accepted for contract uniformity and unused.
func (m *Map[K, V]) CopyFrom(src *Map[K, V], alloc gocc.Allocator[gocc.Pair[K, V]]) error {
	if m == nil || src == nil {
		return gocc.ErrNilContainer
	}
	_ = alloc
	m.clearNodes(func(*gocc.Pair[K, V]) {}, true)
	for nd := src.head.next[0]; nd != nil; nd = nd.next[0] {
		if _, err := m.Emplace(nd.pair.Key, nd.pair.Value); err != nil {
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
	return m.count
}

// Capacity returns the number of elements the map can hold without
// allocating a node: the current count plus the reserve freelist.
func (m *Map[K, V]) Capacity() int {
	if m == nil {
		return 0
	}
	return m.count + len(m.free)
}

// IsEmpty reports whether the map holds no elements.
func (m *Map[K, V]) IsEmpty() bool { return m.Count() == 0 }

// Validate reports whether the skiplist invariants hold: strictly ascending
// keys, consistent back links, and an accurate count.
func (m *Map[K, V]) Validate() bool {
	if m == nil || m.head == nil {
		return false
	}
	seen := 0
	var prev *node[K, V]
	for nd := m.head.next[0]; nd != nil; nd = nd.next[0] {
		if prev != nil && prev.pair.Key >= nd.pair.Key {
			return false
		}
		if nd.prev != prev {
			return false
		}
		prev = nd
		seen++
	}
	if prev != m.tail {
		return false
	}
	return seen == m.count
}

// Package list provides a doubly linked sequence with stable element
// addresses.
//
// Elements live in individually allocated nodes, so references stay valid
// until their element is removed and splice operations relocate elements
// between compatible lists without copying, preserving element identity.
//
// Nodes are garbage collected. Reserve pre-allocates nodes so that the
// following insertions allocate nothing; the allocator argument of the memory
// interface is accepted for contract uniformity and is otherwise unused.
package list

import (
	"unsafe"

	"github.com/hupe1980/gocc"
)

// Compile-time checks to ensure List satisfies the advertised capabilities.
var _ gocc.Sequence[int] = (*List[int])(nil)
var _ gocc.Splicer[int] = (*List[int])(nil)
var _ gocc.Iterable[int] = (*List[int])(nil)
var _ gocc.RangeExtractor[int] = (*List[int])(nil)
var _ gocc.Managed[int] = (*List[int])(nil)
var _ gocc.State = (*List[int])(nil)
var _ gocc.Copyable[*List[int], int] = (*List[int])(nil)

type node[T any] struct {
	// elem must stay the first field: cursors are *elem and are converted
	// back to their node.
	elem T
	prev *node[T]
	next *node[T]
}

// Options contains configuration options for a list.
type Options[T any] struct {
	// Destructor is invoked once per element removed by Erase or cleared;
	// clear operations may override it per call.
	Destructor gocc.Destructor[T]
}

// List is a doubly linked sequence.
type List[T any] struct {
	head  *node[T]
	tail  *node[T]
	count int
	free  []*node[T]
	dtor  gocc.Destructor[T]
}

// New creates an empty list.
func New[T any](optFns ...func(o *Options[T])) *List[T] {
	var opts Options[T]
	for _, fn := range optFns {
		fn(&opts)
	}
	return &List[T]{dtor: opts.Destructor}
}

func nodeOf[T any](cur *T) *node[T] {
	return (*node[T])(unsafe.Pointer(cur)) //nolint:gosec // elem is the first node field
}

func (l *List[T]) newNode(value T) *node[T] {
	if n := len(l.free); n > 0 {
		nd := l.free[n-1]
		l.free = l.free[:n-1]
		nd.elem = value
		return nd
	}
	return &node[T]{elem: value}
}

func (l *List[T]) releaseNode(nd *node[T]) {
	var zero T
	nd.elem = zero
	nd.prev = nil
	nd.next = nil
	l.free = append(l.free, nd)
}

// insertBefore links nd before pos; a nil pos means the list end.
func (l *List[T]) insertBefore(pos, nd *node[T]) {
	if pos == nil {
		nd.prev = l.tail
		nd.next = nil
		if l.tail != nil {
			l.tail.next = nd
		} else {
			l.head = nd
		}
		l.tail = nd
	} else {
		nd.prev = pos.prev
		nd.next = pos
		if pos.prev != nil {
			pos.prev.next = nd
		} else {
			l.head = nd
		}
		pos.prev = nd
	}
	l.count++
}

func (l *List[T]) unlink(nd *node[T]) {
	if nd.prev != nil {
		nd.prev.next = nd.next
	} else {
		l.head = nd.next
	}
	if nd.next != nil {
		nd.next.prev = nd.prev
	} else {
		l.tail = nd.prev
	}
	nd.prev = nil
	nd.next = nil
	l.count--
}

// PushFront inserts value at the front and returns a reference to the slot.
func (l *List[T]) PushFront(value T) (*T, error) {
	if l == nil {
		return nil, gocc.ErrNilContainer
	}
	nd := l.newNode(value)
	l.insertBefore(l.head, nd)
	return &nd.elem, nil
}

// PushBack inserts value at the back and returns a reference to the slot.
func (l *List[T]) PushBack(value T) (*T, error) {
	if l == nil {
		return nil, gocc.ErrNilContainer
	}
	nd := l.newNode(value)
	l.insertBefore(nil, nd)
	return &nd.elem, nil
}

// PopFront removes and returns the front element.
func (l *List[T]) PopFront() (value T, ok bool) {
	if l == nil || l.head == nil {
		return value, false
	}
	nd := l.head
	l.unlink(nd)
	value = nd.elem
	l.releaseNode(nd)
	return value, true
}

// PopBack removes and returns the back element.
func (l *List[T]) PopBack() (value T, ok bool) {
	if l == nil || l.tail == nil {
		return value, false
	}
	nd := l.tail
	l.unlink(nd)
	value = nd.elem
	l.releaseNode(nd)
	return value, true
}

// Front returns a reference to the front element, nil on empty.
func (l *List[T]) Front() *T {
	if l == nil || l.head == nil {
		return nil
	}
	return &l.head.elem
}

// Back returns a reference to the back element, nil on empty.
func (l *List[T]) Back() *T {
	if l == nil || l.tail == nil {
		return nil
	}
	return &l.tail.elem
}

// Splice moves elem from src to before pos in the receiver without copying,
// preserving the element's identity. A nil pos means the list end; a nil src
// means the receiver itself.
func (l *List[T]) Splice(pos *T, src gocc.Splicer[T], elem *T) error {
	if l == nil {
		return gocc.ErrNilContainer
	}
	if elem == nil {
		return gocc.ErrBadCursor
	}
	if elem == pos {
		return nil
	}
	other := l
	if src != nil {
		cast, ok := src.(*List[T])
		if !ok {
			return gocc.ErrBadSplice
		}
		other = cast
	}

	nd := nodeOf(elem)
	var posNode *node[T]
	if pos != nil {
		posNode = nodeOf(pos)
	}
	other.unlink(nd)
	l.insertBefore(posNode, nd)
	return nil
}

// SpliceRange moves the half-open run [first, last) from src to before pos
// in the receiver, preserving order and element identity. Behavior is
// unspecified when pos lies inside the moved run.
func (l *List[T]) SpliceRange(pos *T, src gocc.Splicer[T], first, last *T) error {
	if l == nil {
		return gocc.ErrNilContainer
	}
	if first == nil {
		return nil
	}
	other := l
	if src != nil {
		cast, ok := src.(*List[T])
		if !ok {
			return gocc.ErrBadSplice
		}
		other = cast
	}

	var lastNode *node[T]
	if last != nil {
		lastNode = nodeOf(last)
	}
	var run []*node[T]
	for nd := nodeOf(first); nd != lastNode; nd = nd.next {
		if nd == nil {
			return gocc.ErrBadCursor
		}
		run = append(run, nd)
	}
	var posNode *node[T]
	if pos != nil {
		posNode = nodeOf(pos)
	}
	for _, nd := range run {
		other.unlink(nd)
		l.insertBefore(posNode, nd)
	}
	return nil
}

// Erase removes the element behind a known-resident cursor directly,
// bypassing lookup, and runs the configured destructor on it. It returns the
// cursor following the removed element.
func (l *List[T]) Erase(cur *T) (*T, error) {
	if l == nil {
		return nil, gocc.ErrNilContainer
	}
	if cur == nil {
		return nil, gocc.ErrBadCursor
	}
	nd := nodeOf(cur)
	succ := nd.next
	if l.dtor != nil {
		l.dtor(&nd.elem)
	}
	l.unlink(nd)
	l.releaseNode(nd)
	if succ == nil {
		return nil, nil
	}
	return &succ.elem, nil
}

// Extract removes the element behind a known-resident cursor without
// invoking the destructor, transferring ownership of the value to the caller.
func (l *List[T]) Extract(cur *T) (value T, err error) {
	if l == nil {
		return value, gocc.ErrNilContainer
	}
	if cur == nil {
		return value, gocc.ErrBadCursor
	}
	nd := nodeOf(cur)
	value = nd.elem
	l.unlink(nd)
	l.releaseNode(nd)
	return value, nil
}

// ExtractRange removes the half-open run [first, last) without invoking the
// destructor, transferring ownership of the removed values to the caller.
func (l *List[T]) ExtractRange(first, last *T) ([]T, error) {
	if l == nil {
		return nil, gocc.ErrNilContainer
	}
	if first == nil {
		return nil, nil
	}
	var lastNode *node[T]
	if last != nil {
		lastNode = nodeOf(last)
	}
	var out []T
	for nd := nodeOf(first); nd != lastNode; {
		if nd == nil {
			return out, gocc.ErrBadCursor
		}
		succ := nd.next
		out = append(out, nd.elem)
		l.unlink(nd)
		l.releaseNode(nd)
		nd = succ
	}
	return out, nil
}

// Begin returns the front element of the traversal, nil on empty.
func (l *List[T]) Begin() *T { return l.Front() }

// Next advances a forward cursor.
func (l *List[T]) Next(cur *T) *T {
	if l == nil || cur == nil {
		return nil
	}
	succ := nodeOf(cur).next
	if succ == nil {
		return nil
	}
	return &succ.elem
}

// ReverseBegin returns the back element of the traversal, nil on empty.
func (l *List[T]) ReverseBegin() *T { return l.Back() }

// ReverseNext advances a reverse cursor.
func (l *List[T]) ReverseNext(cur *T) *T {
	if l == nil || cur == nil {
		return nil
	}
	pred := nodeOf(cur).prev
	if pred == nil {
		return nil
	}
	return &pred.elem
}

// Reserve pre-allocates n nodes so that n subsequent insertions allocate
// nothing. Node storage is garbage collected; alloc is unused.
func (l *List[T]) Reserve(n int, alloc gocc.Allocator[T]) error {
	if l == nil {
		return gocc.ErrNilContainer
	}
	_ = alloc
	for i := 0; i < n; i++ {
		l.free = append(l.free, &node[T]{})
	}
	return nil
}

func (l *List[T]) clearNodes(d gocc.Destructor[T], keepNodes bool) {
	if d == nil {
		d = l.dtor
	}
	for nd := l.head; nd != nil; {
		succ := nd.next
		if d != nil {
			d(&nd.elem)
		}
		if keepNodes {
			l.releaseNode(nd)
		}
		nd = succ
	}
	l.head = nil
	l.tail = nil
	l.count = 0
}

// Clear runs the destructor on every element and resets the count to zero,
// keeping the emptied nodes for reuse.
func (l *List[T]) Clear(d gocc.Destructor[T]) {
	if l == nil {
		return
	}
	l.clearNodes(d, true)
}

// ClearAndFree clears the list and drops all node storage, including the
// reserve freelist.
func (l *List[T]) ClearAndFree(d gocc.Destructor[T]) {
	if l == nil {
		return
	}
	l.clearNodes(d, false)
	l.free = nil
}

// ClearAndFreeReserve clears the list and drops all node storage. Nodes are
// garbage collected, so the explicit allocator is accepted and unused.
func (l *List[T]) ClearAndFreeReserve(d gocc.Destructor[T], alloc gocc.Allocator[T]) error {
	if l == nil {
		return gocc.ErrNilContainer
	}
	_ = alloc
	l.clearNodes(d, false)
	l.free = nil
	return nil
}

// CopyFrom deep-duplicates src's contents into the list, preserving
// iteration order. Prior contents are discarded without destruction. The
// allocator is accepted for contract uniformity and unused.
func (l *List[T]) CopyFrom(src *List[T], alloc gocc.Allocator[T]) error {
	if l == nil || src == nil {
		return gocc.ErrNilContainer
	}
	_ = alloc
	l.clearNodes(func(*T) {}, true)
	for nd := src.head; nd != nil; nd = nd.next {
		if _, err := l.PushBack(nd.elem); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of elements.
func (l *List[T]) Count() int {
	if l == nil {
		return 0
	}
	return l.count
}

// Capacity returns the number of elements the list can hold without
// allocating a node: the current count plus the reserve freelist.
func (l *List[T]) Capacity() int {
	if l == nil {
		return 0
	}
	return l.count + len(l.free)
}

// IsEmpty reports whether the list holds no elements.
func (l *List[T]) IsEmpty() bool { return l.Count() == 0 }

// Validate reports whether the link invariants hold: consistent prev/next
// chains, correct endpoints, and an accurate count.
func (l *List[T]) Validate() bool {
	if l == nil {
		return false
	}
	if l.head == nil || l.tail == nil {
		return l.head == nil && l.tail == nil && l.count == 0
	}
	if l.head.prev != nil || l.tail.next != nil {
		return false
	}
	seen := 0
	for nd := l.head; nd != nil; nd = nd.next {
		if nd.next != nil && nd.next.prev != nd {
			return false
		}
		seen++
	}
	return seen == l.count
}

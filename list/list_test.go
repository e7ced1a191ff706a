package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(t *testing.T, l *List[int], values ...int) {
	t.Helper()
	for _, v := range values {
		_, err := l.PushBack(v)
		require.NoError(t, err)
	}
}

func collect(l *List[int]) []int {
	var out []int
	for cur := l.Begin(); cur != nil; cur = l.Next(cur) {
		out = append(out, *cur)
	}
	return out
}

func TestListPushPop(t *testing.T) {
	l := New[int]()
	fill(t, l, 2, 3)
	_, err := l.PushFront(1)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, collect(l))
	assert.Equal(t, 1, *l.Front())
	assert.Equal(t, 3, *l.Back())

	v, ok := l.PopFront()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = l.PopBack()
	require.True(t, ok)
	assert.Equal(t, 3, v)

	assert.Equal(t, 1, l.Count())
	assert.True(t, l.Validate())
}

func TestListStableReferences(t *testing.T) {
	l := New[int]()
	ref, err := l.PushBack(42)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		_, err := l.PushFront(i)
		require.NoError(t, err)
	}
	assert.Equal(t, 42, *ref)
	assert.Same(t, l.Back(), ref)
}

func TestListSplicePreservesIdentity(t *testing.T) {
	l := New[int]()
	fill(t, l, 1, 2, 3)

	back := l.Back()
	front := l.Front()

	// Move the back element before the front, within the same list.
	require.NoError(t, l.Splice(front, nil, back))
	assert.Equal(t, []int{3, 1, 2}, collect(l))
	assert.Same(t, back, l.Front(), "the moved element keeps its address")
	assert.True(t, l.Validate())
}

func TestListSpliceBetweenLists(t *testing.T) {
	src := New[int]()
	fill(t, src, 10, 20)
	dst := New[int]()
	fill(t, dst, 1, 2)

	elem := src.Front()
	require.NoError(t, dst.Splice(dst.Back(), src, elem))

	assert.Equal(t, []int{20}, collect(src))
	assert.Equal(t, []int{1, 10, 2}, collect(dst))
	assert.Same(t, elem, dst.Next(dst.Begin()), "spliced element keeps its address")
	assert.True(t, src.Validate())
	assert.True(t, dst.Validate())

	// A nil pos splices to the end.
	require.NoError(t, dst.Splice(nil, src, src.Front()))
	assert.True(t, src.IsEmpty())
	assert.Equal(t, []int{1, 10, 2, 20}, collect(dst))
}

func TestListSpliceSelfNoop(t *testing.T) {
	l := New[int]()
	fill(t, l, 1, 2)

	cur := l.Front()
	require.NoError(t, l.Splice(cur, nil, cur))
	assert.Equal(t, []int{1, 2}, collect(l))
}

func TestListSpliceRange(t *testing.T) {
	src := New[int]()
	fill(t, src, 1, 2, 3, 4, 5)
	dst := New[int]()
	fill(t, dst, 9)

	first := src.Next(src.Begin()) // 2
	last := src.Back()             // 5, exclusive
	require.NoError(t, dst.SpliceRange(dst.Begin(), src, first, last))

	assert.Equal(t, []int{1, 5}, collect(src))
	assert.Equal(t, []int{2, 3, 4, 9}, collect(dst))
	assert.True(t, src.Validate())
	assert.True(t, dst.Validate())
}

func TestListEraseAndExtract(t *testing.T) {
	destructed := 0
	l := New(func(o *Options[int]) {
		o.Destructor = func(*int) { destructed++ }
	})
	fill(t, l, 1, 2, 3)

	next, err := l.Erase(l.Next(l.Begin()))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 3, *next)
	assert.Equal(t, 1, destructed)

	// Extract transfers ownership without destruction.
	v, err := l.Extract(l.Front())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, destructed)

	assert.Equal(t, []int{3}, collect(l))
}

func TestListExtractRange(t *testing.T) {
	l := New[int]()
	fill(t, l, 1, 2, 3, 4)

	out, err := l.ExtractRange(l.Next(l.Begin()), l.Back())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, out)
	assert.Equal(t, []int{1, 4}, collect(l))

	// nil last extracts through the end.
	out, err = l.ExtractRange(l.Begin(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, out)
	assert.True(t, l.IsEmpty())
}

func TestListReserveAndClear(t *testing.T) {
	l := New[int]()
	require.NoError(t, l.Reserve(5, nil))
	assert.Equal(t, 5, l.Capacity())

	fill(t, l, 1, 2, 3)

	destructed := 0
	l.Clear(func(*int) { destructed++ })
	assert.Equal(t, 3, destructed)
	assert.True(t, l.IsEmpty())
	assert.Equal(t, 5, l.Capacity(), "Clear keeps nodes for reuse")

	l.ClearAndFree(nil)
	assert.Equal(t, 0, l.Capacity())
}

func TestListCopyFrom(t *testing.T) {
	src := New[int]()
	fill(t, src, 1, 2, 3)

	dst := New[int]()
	require.NoError(t, dst.CopyFrom(src, nil))
	assert.Equal(t, []int{1, 2, 3}, collect(dst))

	dst.PopFront()
	assert.Equal(t, []int{1, 2, 3}, collect(src), "copies are independent")
}

func TestListReverseIteration(t *testing.T) {
	l := New[int]()
	fill(t, l, 1, 2, 3)

	var rev []int
	for cur := l.ReverseBegin(); cur != nil; cur = l.ReverseNext(cur) {
		rev = append(rev, *cur)
	}
	assert.Equal(t, []int{3, 2, 1}, rev)
}

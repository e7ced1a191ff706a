package ordmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gocc"
)

func TestMapFindEmplaceDelete(t *testing.T) {
	m := New[int, string]()

	ref, err := m.Emplace(1, "one")
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, "one", *ref)

	// Emplace at a present key assigns in place.
	ref2, err := m.Emplace(1, "uno")
	require.NoError(t, err)
	assert.Equal(t, "uno", *m.Find(1))
	assert.Same(t, ref, ref2, "node addresses are stable")

	v, ok := m.Delete(1)
	require.True(t, ok)
	assert.Equal(t, "uno", v)
	assert.Nil(t, m.Find(1))

	_, ok = m.Delete(1)
	assert.False(t, ok)
}

func TestMapOrderedIteration(t *testing.T) {
	m := New[int, string]()
	for _, k := range []int{9, 1, 6, 3, 5} {
		_, err := m.Emplace(k, "v")
		require.NoError(t, err)
	}

	var fwd []int
	for cur := m.Begin(); cur != nil; cur = m.Next(cur) {
		fwd = append(fwd, cur.Key)
	}
	assert.Equal(t, []int{1, 3, 5, 6, 9}, fwd)

	var rev []int
	for cur := m.ReverseBegin(); cur != nil; cur = m.ReverseNext(cur) {
		rev = append(rev, cur.Key)
	}
	assert.Equal(t, []int{9, 6, 5, 3, 1}, rev)
}

func TestMapEqualRange(t *testing.T) {
	m := New[int, string]()
	for _, k := range []int{1, 3, 5, 6, 9} {
		_, err := m.Emplace(k, "v")
		require.NoError(t, err)
	}

	t.Run("Forward", func(t *testing.T) {
		r := m.EqualRange(3, 7)
		var keys []int
		for cur := range r.All() {
			keys = append(keys, cur.Key)
		}
		assert.Equal(t, []int{3, 5, 6}, keys)
	})

	t.Run("Reverse", func(t *testing.T) {
		r := m.EqualRangeReverse(3, 7)
		var keys []int
		for cur := range r.All() {
			keys = append(keys, cur.Key)
		}
		assert.Equal(t, []int{6, 5, 3}, keys)
	})

	t.Run("CrossedBoundsAreEmpty", func(t *testing.T) {
		r := m.EqualRange(7, 3)
		assert.True(t, r.Empty())
		assert.Equal(t, r.Begin(), r.End())
		for cur := range r.All() {
			t.Fatalf("crossed interval yielded %v", cur)
		}

		rr := m.EqualRangeReverse(7, 3)
		assert.True(t, rr.Empty())
		for cur := range rr.All() {
			t.Fatalf("crossed interval yielded %v", cur)
		}
	})

	t.Run("NoMatchIsEmptyRange", func(t *testing.T) {
		r := m.EqualRange(10, 20)
		assert.True(t, r.Empty())
		assert.Equal(t, r.Begin(), r.End())

		rr := m.EqualRangeReverse(10, 20)
		assert.True(t, rr.Empty())
	})

	t.Run("BoundsAreInclusive", func(t *testing.T) {
		r := m.EqualRange(1, 9)
		var keys []int
		for cur := range r.All() {
			keys = append(keys, cur.Key)
		}
		assert.Equal(t, []int{1, 3, 5, 6, 9}, keys)
	})
}

func TestMapEntryChaining(t *testing.T) {
	m := New[string, int]()

	ref := m.Entry("hits").AndModify(func(v *int) { *v++ }).OrInsert(1)
	require.NotNil(t, ref)
	assert.Equal(t, 1, *ref)

	ref = m.Entry("hits").AndModify(func(v *int) { *v++ }).OrInsert(1)
	require.NotNil(t, ref)
	assert.Equal(t, 2, *ref)
}

func TestMapStableReferences(t *testing.T) {
	m := New[int, int]()
	ref, err := m.Emplace(50, 0)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		_, err := m.Emplace(i, i)
		require.NoError(t, err)
	}

	// Node addresses survive arbitrary inserts around them.
	assert.Same(t, ref, m.Find(50))
}

func TestMapExtractRange(t *testing.T) {
	m := New[int, string]()
	for _, k := range []int{1, 3, 5, 6, 9} {
		_, err := m.Emplace(k, "v")
		require.NoError(t, err)
	}

	r := m.EqualRange(3, 6)
	out, err := m.ExtractRange(r.Begin(), r.End())
	require.NoError(t, err)

	var keys []int
	for _, p := range out {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []int{3, 5, 6}, keys)
	assert.Equal(t, 2, m.Count())
	assert.True(t, m.Validate())
}

func TestMapReserveAndClear(t *testing.T) {
	m := New[int, int]()
	require.NoError(t, m.Reserve(10, nil))
	assert.Equal(t, 10, m.Capacity())

	for i := 0; i < 10; i++ {
		_, err := m.Emplace(i, i)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, m.Capacity(), "reserved inserts consume the freelist")

	destructed := 0
	m.Clear(func(*gocc.Pair[int, int]) { destructed++ })
	assert.Equal(t, 10, destructed)
	assert.True(t, m.IsEmpty())
	assert.Equal(t, 10, m.Capacity(), "Clear keeps nodes for reuse")

	m.ClearAndFree(nil)
	assert.Equal(t, 0, m.Capacity())
}

func TestMapConfiguredDestructor(t *testing.T) {
	destructed := 0
	m := New(func(o *Options[int, int]) {
		o.Destructor = func(*gocc.Pair[int, int]) { destructed++ }
	})
	_, err := m.Emplace(1, 1)
	require.NoError(t, err)

	// Delete transfers ownership and must not destruct.
	_, ok := m.Delete(1)
	require.True(t, ok)
	assert.Equal(t, 0, destructed)

	_, err = m.Emplace(2, 2)
	require.NoError(t, err)
	m.Clear(nil)
	assert.Equal(t, 1, destructed)
}

func TestMapCopyFrom(t *testing.T) {
	src := New[int, string]()
	for _, k := range []int{2, 1, 3} {
		_, err := src.Emplace(k, "v")
		require.NoError(t, err)
	}

	dst := New[int, string]()
	require.NoError(t, dst.CopyFrom(src, nil))
	assert.Equal(t, 3, dst.Count())

	// The copies are independent.
	_, ok := dst.Delete(1)
	require.True(t, ok)
	assert.True(t, src.Contains(1))

	var keys []int
	for cur := dst.Begin(); cur != nil; cur = dst.Next(cur) {
		keys = append(keys, cur.Key)
	}
	assert.Equal(t, []int{2, 3}, keys)
}

func TestMapValidate(t *testing.T) {
	m := New[int, int]()
	assert.True(t, m.Validate())

	for i := 0; i < 50; i++ {
		_, err := m.Emplace(i*7%50, i)
		require.NoError(t, err)
	}
	assert.True(t, m.Validate())

	for i := 0; i < 50; i += 2 {
		m.Delete(i * 7 % 50)
	}
	assert.True(t, m.Validate())

	var nilMap *Map[int, int]
	assert.False(t, nilMap.Validate())
}

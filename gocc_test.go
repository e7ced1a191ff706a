package gocc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gocc"
	"github.com/hupe1980/gocc/handlemap"
	"github.com/hupe1980/gocc/ordmap"
)

func TestEntryStateMachine(t *testing.T) {
	m := ordmap.New[string, int]()

	t.Run("VacantOrInsert", func(t *testing.T) {
		e := gocc.EntryOf[string, int](m, "hits")
		require.False(t, e.Occupied())
		require.False(t, e.InsertError())
		require.Nil(t, e.Unwrap())

		ref := e.OrInsert(1)
		require.NotNil(t, ref)
		assert.Equal(t, 1, *ref)
	})

	t.Run("OccupiedAndModify", func(t *testing.T) {
		ref := gocc.EntryOf[string, int](m, "hits").
			AndModify(func(v *int) { *v++ }).
			OrInsert(0)
		require.NotNil(t, ref)
		assert.Equal(t, 2, *ref)
	})

	t.Run("AndModifyOnVacantIsNoop", func(t *testing.T) {
		called := false
		e := gocc.EntryOf[string, int](m, "absent").
			AndModify(func(v *int) { called = true })
		assert.False(t, called)
		assert.False(t, e.Occupied())
	})

	t.Run("OrInsertWithLazy", func(t *testing.T) {
		built := 0
		ctor := func() int { built++; return 42 }

		ref := gocc.EntryOf[string, int](m, "lazy").OrInsertWith(ctor)
		require.NotNil(t, ref)
		assert.Equal(t, 42, *ref)
		assert.Equal(t, 1, built)

		// Occupied entry must not invoke the constructor.
		gocc.EntryOf[string, int](m, "lazy").OrInsertWith(ctor)
		assert.Equal(t, 1, built)
	})

	t.Run("InsertEntryOverwrites", func(t *testing.T) {
		ref := gocc.EntryOf[string, int](m, "hits").InsertEntry(99)
		require.NotNil(t, ref)
		assert.Equal(t, 99, *ref)
	})

	t.Run("RemoveEntryCarriesOld", func(t *testing.T) {
		e := gocc.EntryOf[string, int](m, "hits").RemoveEntry()
		require.False(t, e.Occupied())
		old, ok := e.Old()
		require.True(t, ok)
		assert.Equal(t, 99, old)
		assert.False(t, m.Contains("hits"))

		// Removing a vacant entry changes nothing.
		e2 := e.RemoveEntry()
		assert.False(t, e2.Occupied())
	})

	t.Run("NilContainer", func(t *testing.T) {
		e := gocc.EntryOf[string, int](nil, "x")
		assert.False(t, e.Occupied())
		assert.True(t, e.InsertError())
		assert.ErrorIs(t, e.Err(), gocc.ErrNilContainer)
		assert.Nil(t, e.OrInsert(1))
	})
}

func TestSwapSemantics(t *testing.T) {
	m := ordmap.New[string, int]()

	e := gocc.Swap[string, int](m, "k", 1)
	require.True(t, e.Occupied())
	_, hadOld := e.Old()
	assert.False(t, hadOld, "first swap displaces nothing")

	e = gocc.Swap[string, int](m, "k", 2)
	require.True(t, e.Occupied())
	old, ok := e.Old()
	require.True(t, ok)
	assert.Equal(t, 1, old)
	assert.Equal(t, 2, *e.Unwrap())
}

func TestTryInsertNeverOverwrites(t *testing.T) {
	m := ordmap.New[string, int]()

	e := gocc.TryInsert[string, int](m, "k", 1)
	require.True(t, e.Occupied())

	e = gocc.TryInsert[string, int](m, "k", 2)
	require.True(t, e.Occupied())
	assert.Equal(t, 1, *e.Unwrap())
}

func TestInsertOrAssignAlwaysEndsOccupied(t *testing.T) {
	m := ordmap.New[string, int]()

	e := gocc.InsertOrAssign[string, int](m, "k", 1)
	require.True(t, e.Occupied())

	e = gocc.InsertOrAssign[string, int](m, "k", 2)
	require.True(t, e.Occupied())
	assert.Equal(t, 2, *gocc.GetKeyValue[string, int](m, "k"))
}

func TestRemoveKeyValue(t *testing.T) {
	m := ordmap.New[string, int]()
	m.Entry("k").OrInsert(7)

	e := gocc.RemoveKeyValue[string, int](m, "k")
	old, ok := e.Old()
	require.True(t, ok)
	assert.Equal(t, 7, old)

	e = gocc.RemoveKeyValue[string, int](m, "k")
	_, ok = e.Old()
	assert.False(t, ok)
}

func TestHandleEntryStateMachine(t *testing.T) {
	m, err := handlemap.New[string, int]()
	require.NoError(t, err)

	e := gocc.HandleOf[string, int](m, "hits")
	require.False(t, e.Occupied())

	h, ok := e.OrInsert(1)
	require.True(t, ok)
	require.NotNil(t, m.At(h))
	assert.Equal(t, 1, *m.At(h))

	e = gocc.HandleOf[string, int](m, "hits").
		AndModify(func(v *int) { *v++ })
	require.True(t, e.Occupied())
	assert.Equal(t, 2, *e.Unwrap())

	e = e.RemoveHandle()
	require.False(t, e.Occupied())
	old, ok := e.Old()
	require.True(t, ok)
	assert.Equal(t, 2, old)

	// The removed handle is stale now.
	assert.Nil(t, m.At(h))
}

func TestSwapHandle(t *testing.T) {
	m, err := handlemap.New[string, int]()
	require.NoError(t, err)

	e := gocc.SwapHandle[string, int](m, "k", 1)
	require.True(t, e.Occupied())

	e = gocc.SwapHandle[string, int](m, "k", 2)
	old, ok := e.Old()
	require.True(t, ok)
	assert.Equal(t, 1, old)
	assert.Equal(t, 2, *m.At(e.Handle()))
}

func TestHandlePacking(t *testing.T) {
	h := gocc.NewHandle(7, 3)
	assert.Equal(t, uint32(7), h.Slot())
	assert.Equal(t, uint32(3), h.Generation())

	h = gocc.NewHandle(0xFFFFFFFF, 0xFFFFFFFF)
	assert.Equal(t, uint32(0xFFFFFFFF), h.Slot())
	assert.Equal(t, uint32(0xFFFFFFFF), h.Generation())
}

func TestIterationHelpers(t *testing.T) {
	m := ordmap.New[int, string]()
	for _, k := range []int{3, 1, 2} {
		m.Entry(k).OrInsert("v")
	}

	var fwd []int
	for p := range gocc.All[gocc.Pair[int, string]](m) {
		fwd = append(fwd, p.Key)
	}
	assert.Equal(t, []int{1, 2, 3}, fwd)

	var rev []int
	for p := range gocc.Backward[gocc.Pair[int, string]](m) {
		rev = append(rev, p.Key)
	}
	assert.Equal(t, []int{3, 2, 1}, rev)

	var cursors []int
	for cur := gocc.Begin[gocc.Pair[int, string]](m); cur != gocc.End[gocc.Pair[int, string]](m); cur = gocc.Next[gocc.Pair[int, string]](m, cur) {
		cursors = append(cursors, cur.Key)
	}
	assert.Equal(t, fwd, cursors)
}

func TestNilContainerStateIsSafe(t *testing.T) {
	var m *ordmap.Map[int, int]

	assert.Equal(t, 0, gocc.Count(m))
	assert.Equal(t, 0, gocc.Capacity(m))
	assert.True(t, gocc.IsEmpty(m))
	assert.False(t, gocc.Validate(m))

	assert.Nil(t, gocc.Begin[gocc.Pair[int, int]](m))
	assert.False(t, gocc.Contains[int, int](m, 1))
}

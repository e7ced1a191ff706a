package gocc_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/gocc"
)

func TestHeapAllocatorTriMode(t *testing.T) {
	alloc := gocc.HeapAllocator[int]()

	// Allocate.
	buf, err := alloc(nil, 4)
	require.NoError(t, err)
	require.Len(t, buf, 4)

	// Reallocate preserving the prefix.
	buf[0], buf[3] = 10, 40
	grown, err := alloc(buf, 16)
	require.NoError(t, err)
	require.Len(t, grown, 16)
	assert.Equal(t, 10, grown[0])
	assert.Equal(t, 40, grown[3])

	// Shrink within capacity reuses the array.
	shrunk, err := alloc(grown, 8)
	require.NoError(t, err)
	assert.Len(t, shrunk, 8)
	assert.Same(t, &grown[0], &shrunk[0])

	// Free.
	freed, err := alloc(shrunk, 0)
	require.NoError(t, err)
	assert.Nil(t, freed)
}

func TestErrAllocUnwrap(t *testing.T) {
	cause := errors.New("backing store full")
	err := gocc.NewErrAlloc(128, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 128, err.Requested)
	assert.Contains(t, err.Error(), "128")
}

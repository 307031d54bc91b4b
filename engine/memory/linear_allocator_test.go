package memory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearAllocatorCreateAndDestroy(t *testing.T) {
	alloc, err := NewLinearAllocator(64, nil)
	require.NoError(t, err)
	assert.True(t, alloc.OwnsMemory())
	assert.Equal(t, uint64(64), alloc.TotalSize())
	assert.Zero(t, alloc.Allocated())

	alloc.Destroy()
	assert.False(t, alloc.OwnsMemory())
	assert.Zero(t, alloc.TotalSize())
	_, err = alloc.Allocate(1)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestLinearAllocatorBorrowedMemory(t *testing.T) {
	backing := make([]byte, 128)
	alloc, err := NewLinearAllocator(100, backing)
	require.NoError(t, err)
	assert.False(t, alloc.OwnsMemory())

	block, err := alloc.Allocate(10)
	require.NoError(t, err)
	block[0] = 0xAB
	assert.Equal(t, byte(0xAB), backing[0])

	alloc.Destroy()
	assert.Equal(t, byte(0xAB), backing[0])

	_, err = NewLinearAllocator(256, backing)
	assert.ErrorIs(t, err, ErrBackingTooSmall)
}

func TestLinearAllocatorSequentialBlocks(t *testing.T) {
	const size = 8
	const count = 16
	alloc, err := NewLinearAllocator(size*count, nil)
	require.NoError(t, err)

	blocks := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		b, err := alloc.Allocate(size)
		require.NoError(t, err)
		require.Len(t, b, size)
		assert.Equal(t, size, cap(b))
		assert.Equal(t, uint64(size*(i+1)), alloc.Allocated())
		b[0] = byte(i)
		blocks = append(blocks, b)
	}
	// Disjoint and consecutive.
	for i, b := range blocks {
		assert.Equal(t, byte(i), b[0])
	}
	assert.Zero(t, alloc.Remaining())

	// Exactly full: any further request fails without changing state.
	_, err = alloc.Allocate(1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, uint64(size*count), alloc.Allocated())
}

func TestLinearAllocatorOverflowLeavesStateUnchanged(t *testing.T) {
	alloc, err := NewLinearAllocator(32, nil)
	require.NoError(t, err)
	_, err = alloc.Allocate(20)
	require.NoError(t, err)

	_, err = alloc.Allocate(13)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, uint64(20), alloc.Allocated())

	// A size that would wrap the offset is rejected too.
	_, err = alloc.Allocate(math.MaxUint64 - 3)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, uint64(20), alloc.Allocated())

	b, err := alloc.Allocate(12)
	require.NoError(t, err)
	assert.Len(t, b, 12)
}

func TestLinearAllocatorFreeAll(t *testing.T) {
	alloc, err := NewLinearAllocator(16, nil)
	require.NoError(t, err)

	first, err := alloc.Allocate(16)
	require.NoError(t, err)
	first[3] = 7

	alloc.FreeAll()
	assert.Zero(t, alloc.Allocated())

	again, err := alloc.Allocate(16)
	require.NoError(t, err)
	// Stale contents are not cleared.
	assert.Equal(t, byte(7), again[3])
}

func TestLinearAllocatorZeroSized(t *testing.T) {
	alloc, err := NewLinearAllocator(0, nil)
	require.NoError(t, err)
	b, err := alloc.Allocate(0)
	require.NoError(t, err)
	assert.Empty(t, b)
}

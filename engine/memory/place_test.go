package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type placedRecord struct {
	Count uint64
	Index uint32
	Flag  bool
	Name  [8]byte
}

func TestPlaceSharesBackingMemory(t *testing.T) {
	alloc, err := NewLinearAllocator(AlignUp(SizeOf[placedRecord]()*4, 8), nil)
	require.NoError(t, err)
	block, err := alloc.Allocate(alloc.TotalSize())
	require.NoError(t, err)

	records, err := PlaceSlice[placedRecord](block, 4)
	require.NoError(t, err)
	records[2].Index = 42
	copy(records[2].Name[:], "abc")

	again, err := PlaceSlice[placedRecord](block, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), again[2].Index)
	assert.Equal(t, byte('a'), again[2].Name[0])
}

func TestPlaceRejectsPointerTypes(t *testing.T) {
	block := make([]byte, 64)
	_, err := Place[struct{ S string }](block)
	assert.ErrorIs(t, err, ErrPointerType)
	_, err = Place[*int](block)
	assert.ErrorIs(t, err, ErrPointerType)
	_, err = Place[[2][]byte](block)
	assert.ErrorIs(t, err, ErrPointerType)
}

func TestPlaceRejectsShortBlock(t *testing.T) {
	_, err := PlaceSlice[uint64](make([]byte, 15), 2)
	assert.ErrorIs(t, err, ErrBlockSize)
}

func TestPlaceRejectsMisalignedBlock(t *testing.T) {
	block := make([]byte, 32)
	_, err := Place[uint64](block[1:])
	assert.ErrorIs(t, err, ErrMisaligned)
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uint64(0), AlignUp(0, 8))
	assert.Equal(t, uint64(8), AlignUp(1, 8))
	assert.Equal(t, uint64(8), AlignUp(8, 8))
	assert.Equal(t, uint64(24), AlignUp(17, 8))
}

func TestAsBytes(t *testing.T) {
	v := uint32(0x01020304)
	b := AsBytes(&v)
	require.Len(t, b, 4)
	b[0] = 0
	b[1] = 0
	b[2] = 0
	b[3] = 0
	assert.Zero(t, v)
}

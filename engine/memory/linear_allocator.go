package memory

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/hearth/engine/core"
)

var (
	ErrOutOfMemory     = errors.New("linear allocator out of memory")
	ErrNotInitialized  = errors.New("linear allocator not initialized")
	ErrBackingTooSmall = errors.New("backing memory smaller than requested size")
)

// LinearAllocator hands out consecutive pieces of a single block. Pieces are
// never freed individually; FreeAll rewinds the whole block.
type LinearAllocator struct {
	totalSize  uint64
	allocated  uint64
	ownsMemory bool
	memory     []byte
}

// NewLinearAllocator creates an allocator over memory, or over a block it
// allocates and owns when memory is nil.
func NewLinearAllocator(totalSize uint64, memory []byte) (*LinearAllocator, error) {
	la := &LinearAllocator{
		totalSize:  totalSize,
		ownsMemory: memory == nil,
	}
	if memory == nil {
		la.memory = make([]byte, totalSize)
		return la, nil
	}
	if uint64(len(memory)) < totalSize {
		err := fmt.Errorf("linear allocator wants %dB, backing memory has %dB: %w", totalSize, len(memory), ErrBackingTooSmall)
		core.LogError(err.Error())
		return nil, err
	}
	la.memory = memory[:totalSize:totalSize]
	return la, nil
}

// Allocate returns the next size bytes of the block.
func (la *LinearAllocator) Allocate(size uint64) ([]byte, error) {
	if la == nil || la.memory == nil {
		core.LogError("linear allocator Allocate called on an uninitialized allocator")
		return nil, ErrNotInitialized
	}
	remaining := la.totalSize - la.allocated
	if size > remaining {
		core.LogError("linear allocator attempted to allocate %dB, only %dB remaining.", size, remaining)
		return nil, ErrOutOfMemory
	}
	start := la.allocated
	la.allocated += size
	return la.memory[start:la.allocated:la.allocated], nil
}

// FreeAll rewinds the allocator. Previously returned bytes are not cleared.
func (la *LinearAllocator) FreeAll() {
	if la == nil || la.memory == nil {
		return
	}
	la.allocated = 0
}

// Destroy drops the block when it is owned and zeroes the allocator.
func (la *LinearAllocator) Destroy() {
	if la == nil {
		return
	}
	// Borrowed memory is left to its owner.
	la.memory = nil
	la.allocated = 0
	la.totalSize = 0
	la.ownsMemory = false
}

func (la *LinearAllocator) TotalSize() uint64 { return la.totalSize }
func (la *LinearAllocator) Allocated() uint64 { return la.allocated }
func (la *LinearAllocator) Remaining() uint64 { return la.totalSize - la.allocated }
func (la *LinearAllocator) OwnsMemory() bool  { return la.ownsMemory }

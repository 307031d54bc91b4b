package memory

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/hearth/engine/core"
)

type MemoryTag uint8

const (
	// For temporary use. Should be assigned one of the below or have a new tag created.
	MemoryTagUnknown MemoryTag = iota
	MemoryTagArray
	MemoryTagLinearAllocator
	MemoryTagDict
	MemoryTagString
	MemoryTagApplication
	MemoryTagProgram
	MemoryTagRenderer
	MemoryTagTexture
	MemoryTagMaterialInstance
	MemoryTagGeometry
	MemoryTagResource

	MemoryTagMaxTags
)

var memoryTagStrings = [MemoryTagMaxTags]string{
	"UNKNOWN    ",
	"ARRAY      ",
	"LINEAR_ALLC",
	"DICT       ",
	"STRING     ",
	"APPLICATION",
	"PROGRAM    ",
	"RENDERER   ",
	"TEXTURE    ",
	"MAT_INST   ",
	"GEOMETRY   ",
	"RESOURCE   ",
}

func (t MemoryTag) String() string {
	if t >= MemoryTagMaxTags {
		return "INVALID"
	}
	return strings.TrimSpace(memoryTagStrings[t])
}

type memoryStats struct {
	TotalAllocated    uint64
	TaggedAllocations [MemoryTagMaxTags]uint64
	AllocationCount   uint64
}

// MemorySystem tracks engine allocations per tag. Its counters live in the
// subsystem arena.
type MemorySystem struct {
	stats *memoryStats
}

func MemorySystemRequirement() uint64 {
	return SizeOf[memoryStats]()
}

func NewMemorySystem(block []byte) (*MemorySystem, error) {
	stats, err := Place[memoryStats](block)
	if err != nil {
		core.LogFatal("memory system placement failed: %s", err)
		return nil, err
	}
	*stats = memoryStats{}
	core.LogInfo("Memory subsystem initialized.")
	return &MemorySystem{stats: stats}, nil
}

// Allocate returns a zeroed block and records it under tag. A nil or shut down
// system still allocates, it just does not count.
func (ms *MemorySystem) Allocate(size uint64, tag MemoryTag) []byte {
	ms.Track(size, tag)
	return make([]byte, size)
}

// Free records the release of block.
func (ms *MemorySystem) Free(block []byte, tag MemoryTag) {
	ms.Untrack(uint64(len(block)), tag)
}

// Track records size bytes held elsewhere under tag.
func (ms *MemorySystem) Track(size uint64, tag MemoryTag) {
	if ms == nil || ms.stats == nil {
		return
	}
	if tag == MemoryTagUnknown {
		core.LogWarn("memory allocation called using MemoryTagUnknown. Re-class this allocation.")
	}
	if tag >= MemoryTagMaxTags {
		tag = MemoryTagUnknown
	}
	ms.stats.TotalAllocated += size
	ms.stats.TaggedAllocations[tag] += size
	ms.stats.AllocationCount++
}

// Untrack reverses Track.
func (ms *MemorySystem) Untrack(size uint64, tag MemoryTag) {
	if ms == nil || ms.stats == nil {
		return
	}
	if tag >= MemoryTagMaxTags {
		tag = MemoryTagUnknown
	}
	ms.stats.TotalAllocated -= min(size, ms.stats.TotalAllocated)
	ms.stats.TaggedAllocations[tag] -= min(size, ms.stats.TaggedAllocations[tag])
}

func (ms *MemorySystem) TotalAllocated() uint64 {
	if ms == nil || ms.stats == nil {
		return 0
	}
	return ms.stats.TotalAllocated
}

func (ms *MemorySystem) TaggedAllocated(tag MemoryTag) uint64 {
	if ms == nil || ms.stats == nil || tag >= MemoryTagMaxTags {
		return 0
	}
	return ms.stats.TaggedAllocations[tag]
}

// AllocationCount is the number of allocations ever recorded.
func (ms *MemorySystem) AllocationCount() uint64 {
	if ms == nil || ms.stats == nil {
		return 0
	}
	return ms.stats.AllocationCount
}

// UsageString renders the per-tag usage table.
func (ms *MemorySystem) UsageString() string {
	var sb strings.Builder
	sb.WriteString("System memory use (tagged):\n")
	if ms == nil || ms.stats == nil {
		return sb.String()
	}
	for tag := MemoryTag(0); tag < MemoryTagMaxTags; tag++ {
		amount, unit := humanSize(ms.stats.TaggedAllocations[tag])
		fmt.Fprintf(&sb, "  %s: %.2f%s\n", memoryTagStrings[tag], amount, unit)
	}
	return sb.String()
}

func humanSize(bytes uint64) (float64, string) {
	const (
		kib = 1024
		mib = kib * 1024
		gib = mib * 1024
	)
	switch {
	case bytes >= gib:
		return float64(bytes) / gib, "GiB"
	case bytes >= mib:
		return float64(bytes) / mib, "MiB"
	case bytes >= kib:
		return float64(bytes) / kib, "KiB"
	}
	return float64(bytes), "B"
}

func (ms *MemorySystem) Shutdown() error {
	if ms == nil {
		return nil
	}
	ms.stats = nil
	return nil
}

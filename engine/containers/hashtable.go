package containers

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/memory"
)

var (
	ErrInvalidTableConfig = errors.New("hashtable requires positive element size and count and enough memory")
	ErrWrongTableMode     = errors.New("hashtable operation does not match the table mode")
	ErrInvalidArgument    = errors.New("hashtable requires a non-empty key and a value of element size")
	ErrTableFull          = errors.New("hashtable is full")
	ErrKeyNotFound        = errors.New("hashtable key not found")
	ErrTableDestroyed     = errors.New("hashtable used after destroy")
)

type bucketState uint8

const (
	bucketEmpty bucketState = iota
	bucketOccupied
	bucketDeleted
)

// Hashtable is a fixed-capacity table keyed by strings. Value tables copy
// elementSize bytes in and out of caller supplied memory; pointer tables hold
// references. Keys are kept next to their bucket and collisions are resolved
// by linear probing, so distinct keys never share a value.
type Hashtable struct {
	elementSize   uint64
	elementCount  uint32
	isPointerType bool
	memory        []byte

	keys   []string
	states []bucketState
	// References of a pointer table. The collector has to see them, so they
	// can not be written into memory.
	pointers []interface{}
	// Value handed back for keys that were never set.
	fill   []byte
	length int
}

// HashName computes the home bucket of key.
func HashName(key string, elementCount uint32) uint64 {
	// A multiplier to use when generating a hash. Prime to hopefully avoid collisions.
	const multiplier uint64 = 97
	var hash uint64
	for i := 0; i < len(key); i++ {
		hash = hash*multiplier + uint64(key[i])
	}
	// Mod it against the size of the table.
	return hash % uint64(elementCount)
}

// HashtableRequirement is the size of the memory a table needs.
func HashtableRequirement(elementSize uint64, elementCount uint32) uint64 {
	return elementSize * uint64(elementCount)
}

// NewHashtable creates a table over memory, which must hold at least
// elementSize*elementCount bytes. The memory is zeroed.
func NewHashtable(elementSize uint64, elementCount uint32, mem []byte, isPointerType bool) (*Hashtable, error) {
	if mem == nil {
		core.LogFatal("hashtable create failed: memory is required.")
		return nil, ErrInvalidTableConfig
	}
	if elementSize == 0 || elementCount == 0 {
		core.LogFatal("hashtable create failed: element size and count must be positive.")
		return nil, ErrInvalidTableConfig
	}
	need := HashtableRequirement(elementSize, elementCount)
	if uint64(len(mem)) < need {
		core.LogFatal("hashtable create failed: memory is %dB, need %dB.", len(mem), need)
		return nil, ErrInvalidTableConfig
	}
	ht := &Hashtable{
		elementSize:   elementSize,
		elementCount:  elementCount,
		isPointerType: isPointerType,
		memory:        mem[:need:need],
		keys:          make([]string, elementCount),
		states:        make([]bucketState, elementCount),
	}
	if isPointerType {
		ht.pointers = make([]interface{}, elementCount)
	}
	clear(ht.memory)
	return ht, nil
}

func (ht *Hashtable) bucket(index int) []byte {
	start := uint64(index) * ht.elementSize
	return ht.memory[start : start+ht.elementSize]
}

// find returns the bucket holding key. When key is absent it returns the
// bucket an insert should use, or -1 if none is left.
func (ht *Hashtable) find(key string) (int, bool) {
	home := HashName(key, ht.elementCount)
	free := -1
	for i := uint64(0); i < uint64(ht.elementCount); i++ {
		index := int((home + i) % uint64(ht.elementCount))
		switch ht.states[index] {
		case bucketEmpty:
			if free < 0 {
				free = index
			}
			return free, false
		case bucketDeleted:
			if free < 0 {
				free = index
			}
		case bucketOccupied:
			if ht.keys[index] == key {
				return index, true
			}
		}
	}
	return free, false
}

func (ht *Hashtable) check(key string, wantPointer bool, op string) error {
	if ht == nil || ht.memory == nil {
		core.LogError("hashtable %s called on a destroyed table.", op)
		return ErrTableDestroyed
	}
	if key == "" {
		core.LogError("hashtable %s requires a valid key.", op)
		return ErrInvalidArgument
	}
	if ht.isPointerType != wantPointer {
		if wantPointer {
			core.LogError("hashtable %s should not be used with tables that do not have pointer types.", op)
		} else {
			core.LogError("hashtable %s should not be used with tables that have pointer types.", op)
		}
		return ErrWrongTableMode
	}
	return nil
}

func (ht *Hashtable) claim(key string) (int, error) {
	index, found := ht.find(key)
	if found {
		return index, nil
	}
	if index < 0 {
		core.LogError("hashtable is full (%d entries), can not insert '%s'.", ht.elementCount, key)
		return -1, ErrTableFull
	}
	ht.keys[index] = key
	ht.states[index] = bucketOccupied
	ht.length++
	return index, nil
}

// Set copies elementSize bytes of value into the bucket of key.
func (ht *Hashtable) Set(key string, value []byte) error {
	if err := ht.check(key, false, "Set"); err != nil {
		return err
	}
	if uint64(len(value)) < ht.elementSize {
		core.LogError("hashtable Set for '%s' got %dB, element size is %dB.", key, len(value), ht.elementSize)
		return ErrInvalidArgument
	}
	index, err := ht.claim(key)
	if err != nil {
		return err
	}
	copy(ht.bucket(index), value[:ht.elementSize])
	return nil
}

// Get copies the value of key into out. Keys that were never set yield the
// value of the last Fill, or zeroes.
func (ht *Hashtable) Get(key string, out []byte) error {
	if err := ht.check(key, false, "Get"); err != nil {
		return err
	}
	if uint64(len(out)) < ht.elementSize {
		core.LogError("hashtable Get for '%s' got a %dB buffer, element size is %dB.", key, len(out), ht.elementSize)
		return ErrInvalidArgument
	}
	out = out[:ht.elementSize]
	if index, found := ht.find(key); found {
		copy(out, ht.bucket(index))
		return nil
	}
	if ht.fill != nil {
		copy(out, ht.fill)
	} else {
		clear(out)
	}
	return nil
}

// SetPtr stores a reference under key. A nil value removes the entry.
func (ht *Hashtable) SetPtr(key string, value interface{}) error {
	if err := ht.check(key, true, "SetPtr"); err != nil {
		return err
	}
	if value == nil {
		ht.remove(key)
		return nil
	}
	index, err := ht.claim(key)
	if err != nil {
		return err
	}
	ht.pointers[index] = value
	return nil
}

// GetPtr returns the reference stored under key.
func (ht *Hashtable) GetPtr(key string) (interface{}, error) {
	if err := ht.check(key, true, "GetPtr"); err != nil {
		return nil, err
	}
	index, found := ht.find(key)
	if !found {
		return nil, ErrKeyNotFound
	}
	return ht.pointers[index], nil
}

// Fill writes value into every bucket and makes it the value of unset keys.
func (ht *Hashtable) Fill(value []byte) error {
	if ht == nil || ht.memory == nil {
		core.LogError("hashtable Fill called on a destroyed table.")
		return ErrTableDestroyed
	}
	if ht.isPointerType {
		core.LogError("hashtable Fill should not be used with tables that have pointer types.")
		return ErrWrongTableMode
	}
	if uint64(len(value)) < ht.elementSize {
		core.LogError("hashtable Fill got %dB, element size is %dB.", len(value), ht.elementSize)
		return ErrInvalidArgument
	}
	ht.fill = append(ht.fill[:0], value[:ht.elementSize]...)
	for i := 0; i < int(ht.elementCount); i++ {
		copy(ht.bucket(i), ht.fill)
	}
	return nil
}

// Delete removes key. It reports whether the key was present.
func (ht *Hashtable) Delete(key string) bool {
	if ht == nil || ht.memory == nil || key == "" {
		return false
	}
	return ht.remove(key)
}

func (ht *Hashtable) remove(key string) bool {
	index, found := ht.find(key)
	if !found {
		return false
	}
	ht.keys[index] = ""
	ht.states[index] = bucketDeleted
	if ht.isPointerType {
		ht.pointers[index] = nil
	} else if ht.fill != nil {
		copy(ht.bucket(index), ht.fill)
	} else {
		clear(ht.bucket(index))
	}
	ht.length--
	return true
}

func (ht *Hashtable) Contains(key string) bool {
	if ht == nil || ht.memory == nil || key == "" {
		return false
	}
	_, found := ht.find(key)
	return found
}

// Len is the number of keys currently set.
func (ht *Hashtable) Len() int {
	if ht == nil {
		return 0
	}
	return ht.length
}

func (ht *Hashtable) Capacity() uint32 {
	if ht == nil {
		return 0
	}
	return ht.elementCount
}

func (ht *Hashtable) IsPointerType() bool {
	return ht != nil && ht.isPointerType
}

// Destroy releases the table. The memory stays with its owner.
func (ht *Hashtable) Destroy() {
	if ht == nil {
		return
	}
	if ht.memory != nil {
		clear(ht.memory)
	}
	*ht = Hashtable{}
}

// SetValue stores v under key in a value table whose element size is the size of T.
func SetValue[T any](ht *Hashtable, key string, v *T) error {
	b := memory.AsBytes(v)
	if ht != nil && uint64(len(b)) != ht.elementSize {
		return fmt.Errorf("value of %dB in table of %dB elements: %w", len(b), ht.elementSize, ErrInvalidArgument)
	}
	return ht.Set(key, b)
}

// GetValue reads the value of key into out.
func GetValue[T any](ht *Hashtable, key string, out *T) error {
	b := memory.AsBytes(out)
	if ht != nil && uint64(len(b)) != ht.elementSize {
		return fmt.Errorf("value of %dB in table of %dB elements: %w", len(b), ht.elementSize, ErrInvalidArgument)
	}
	return ht.Get(key, b)
}

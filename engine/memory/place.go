package memory

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

var (
	ErrPointerType = errors.New("type holds Go pointers and can not live in raw memory")
	ErrBlockSize   = errors.New("block too small for placement")
	ErrMisaligned  = errors.New("block misaligned for placement")
)

// AlignUp rounds n up to a multiple of alignment, which must be a power of two.
func AlignUp(n, alignment uint64) uint64 {
	return (n + alignment - 1) &^ (alignment - 1)
}

// SizeOf returns the in-memory size of T.
func SizeOf[T any]() uint64 {
	var x T
	return uint64(unsafe.Sizeof(x))
}

// Place views the start of block as a *T. T must be free of Go pointers since
// the collector does not scan byte memory.
func Place[T any](block []byte) (*T, error) {
	s, err := PlaceSlice[T](block, 1)
	if err != nil {
		return nil, err
	}
	return &s[0], nil
}

// PlaceSlice views the start of block as count consecutive T values.
func PlaceSlice[T any](block []byte, count int) ([]T, error) {
	var x T
	typ := reflect.TypeOf(x)
	if typ == nil || hasPointers(typ) {
		return nil, fmt.Errorf("place %v: %w", typ, ErrPointerType)
	}
	if count == 0 {
		return []T{}, nil
	}
	need := uint64(unsafe.Sizeof(x)) * uint64(count)
	if uint64(len(block)) < need {
		return nil, fmt.Errorf("place %d x %v needs %dB, block has %dB: %w", count, typ, need, len(block), ErrBlockSize)
	}
	if need == 0 {
		return make([]T, count), nil
	}
	ptr := unsafe.Pointer(&block[0])
	if uintptr(ptr)%unsafe.Alignof(x) != 0 {
		return nil, fmt.Errorf("place %v at %p: %w", typ, ptr, ErrMisaligned)
	}
	return unsafe.Slice((*T)(ptr), count), nil
}

// AsBytes views the memory of v as a byte slice of its size.
func AsBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	}
	return true
}

package core

import (
	"fmt"
	"unsafe"
)

// SubsystemStage tracks where a subsystem is in the boot protocol.
type SubsystemStage uint8

const (
	SubsystemStageUninitialized SubsystemStage = iota
	// Memory requirement has been queried.
	SubsystemStageSized
	// Block carved and constructor succeeded.
	SubsystemStageReady
	SubsystemStageShutdown
)

func (s SubsystemStage) String() string {
	switch s {
	case SubsystemStageUninitialized:
		return "uninitialized"
	case SubsystemStageSized:
		return "sized"
	case SubsystemStageReady:
		return "ready"
	case SubsystemStageShutdown:
		return "shutdown"
	}
	return "unknown"
}

// placeState casts the start of an arena block to the subsystem state T. The
// block must be large enough and aligned for T; the state holds no Go pointers.
func placeState[T any](block []byte, subsystem string) (*T, error) {
	var zero T
	size := unsafe.Sizeof(zero)
	if uintptr(len(block)) < size {
		err := fmt.Errorf("%s block is %d bytes, need %d: %w", subsystem, len(block), size, ErrInvalidBlock)
		LogFatal(err.Error())
		return nil, err
	}
	if size == 0 {
		return &zero, nil
	}
	if addr := uintptr(unsafe.Pointer(&block[0])); addr%unsafe.Alignof(zero) != 0 {
		err := fmt.Errorf("%s block at %#x is not %d byte aligned: %w", subsystem, addr, unsafe.Alignof(zero), ErrMisalignedBlock)
		LogFatal(err.Error())
		return nil, err
	}
	state := (*T)(unsafe.Pointer(&block[0]))
	*state = zero
	return state, nil
}

package core

import (
	"errors"
)

var (
	ErrInvalidBlock        = errors.New("subsystem memory block too small")
	ErrMisalignedBlock     = errors.New("subsystem memory block misaligned")
	ErrNotInitialized      = errors.New("subsystem not initialized")
	ErrAlreadyInitialized  = errors.New("subsystem already initialized")
	ErrInvalidEventCode    = errors.New("event code out of range")
	ErrIdentifierExhausted = errors.New("no identifiers available")
	ErrUnknown             = errors.New("unknown")
)

package objpool

import "errors"

var (
	// ErrOutOfMemory wraps every failure of the system allocator to
	// provide a block. Callers are expected to treat it as fatal
	ErrOutOfMemory = errors.New("objpool: out of memory")

	ErrPoolDestroyed     = errors.New("objpool: pool has been destroyed")
	ErrPoolUninitialized = errors.New("objpool: pool has not been initialized")
	ErrInvalidSize       = errors.New("objpool: object size must be greater than zero")
	ErrUnknownSlot       = errors.New("objpool: slot does not belong to any block")
)

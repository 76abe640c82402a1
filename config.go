package objpool

import (
	"log/slog"
	"math"
	"unsafe"
)

// Config provides a PoolConfig with default settings.
var Config = NewConfig()

// minObjSize is the smallest slot a pool hands out, a free slot must be
// able to hold the address of the next free slot
const minObjSize = unsafe.Sizeof(uintptr(0))

// PoolConfig is used by pools and stores when creating a new instance.
// Invalid values are clamped, never rejected
type PoolConfig struct {
	// InitialCapacity is the number of slots in the first block
	InitialCapacity uint

	// GrowthFactor is applied to the block capacity after every block,
	// 1.0 keeps all blocks the same size
	GrowthFactor float64

	// Allocator is the system allocator blocks are requested from. If nil
	// the pool creates and owns a default one
	Allocator Allocator

	// Logger receives debug output on block growth and teardown. If nil
	// slog.Default() is used
	Logger *slog.Logger
}

// NewConfig returns a new pool configuration with default settings:
// blocks of one slot that never grow.
func NewConfig() PoolConfig {
	return PoolConfig{
		InitialCapacity: 1,
		GrowthFactor:    1.0,
	}
}

// normalize returns a copy of the config with every clamp applied
func (c PoolConfig) normalize() PoolConfig {
	if c.InitialCapacity < 1 {
		c.InitialCapacity = 1
	}
	// the negated comparison also catches NaN
	if !(c.GrowthFactor >= 1.0) {
		c.GrowthFactor = 1.0
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// normalizeObjSize raises objSize to the minimum slot size
func normalizeObjSize(objSize uintptr) uintptr {
	if objSize < minObjSize {
		return minObjSize
	}
	return objSize
}

// maxCapacity is the largest slot count a block of objSize slots can have
// without its total length overflowing an int
func maxCapacity(objSize uintptr) uint {
	return uint((math.MaxInt - headerSize) / objSize)
}

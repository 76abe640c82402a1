package objpool

import (
	"fmt"

	"modernc.org/memory"
)

// Allocator is the system allocator a pool requests its blocks from.
// The returned memory must be at least pointer aligned, must not overlap
// any other live region and must not be managed by the Go garbage
// collector, because slots are addressed by plain uintptr values
type Allocator interface {
	// Alloc returns a region of exactly size bytes
	Alloc(size int) ([]byte, error)

	// Free releases a region previously returned by Alloc
	Free(buf []byte) error
}

// MemoryAllocator hands out blocks from a malloc style off-heap allocator.
// Like the pool itself it is not safe for concurrent use.
// The zero value is ready to use
type MemoryAllocator struct {
	a memory.Allocator
}

// Alloc implements Allocator
func (m *MemoryAllocator) Alloc(size int) ([]byte, error) {
	buf, err := m.a.Malloc(size)
	if err != nil {
		return nil, err
	}
	if len(buf) != size {
		// Malloc returns nil for a size of 0, pools never ask for that
		return nil, fmt.Errorf("MemoryAllocator: Malloc returned %d bytes instead of %d", len(buf), size)
	}
	return buf, nil
}

// Free implements Allocator
func (m *MemoryAllocator) Free(buf []byte) error {
	return m.a.Free(buf)
}

// Close releases all the memory the allocator still holds, including
// regions that have not been freed
func (m *MemoryAllocator) Close() error {
	return m.a.Close()
}

// newDefaultAllocator returns the allocator a pool uses when its config
// does not name one. The pool owns it and closes it on Destroy
func newDefaultAllocator() Allocator {
	return &MemoryAllocator{}
}

var _ Allocator = (*MemoryAllocator)(nil)

//go:build unix

package objpool

import (
	"golang.org/x/sys/unix"
)

// MmapAllocator maps every block as its own anonymous private mapping.
// Blocks are page aligned and returned to the kernel on Free. Every block
// costs at least one page and a system call, pools have to opt in to it
// through PoolConfig.Allocator
type MmapAllocator struct{}

// Alloc implements Allocator
func (MmapAllocator) Alloc(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

// Free implements Allocator
func (MmapAllocator) Free(buf []byte) error {
	return unix.Munmap(buf)
}

var _ Allocator = MmapAllocator{}

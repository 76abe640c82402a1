package objpool

import (
	"unsafe"
)

// headerSize is the size of the word every block starts with.
// The header holds the block's slot count
const headerSize = unsafe.Sizeof(uintptr(0))

// BlockAddr is a uintptr used for storing the memory addresses of blocks
type BlockAddr = uintptr

// BlockInfo describes one block of a pool
type BlockInfo struct {
	Addr     BlockAddr
	Capacity uint
	// Size is the total length of the block in bytes, header included
	Size int
}

// block is a region obtained from the system allocator in one call.
// It is never subdivided or freed on its own, only together with the
// whole pool
type block struct {
	buf []byte
}

// newBlock requests a block with room for capacity slots of objSize bytes
// and writes its header.
// On failure the second returned value is the allocator's error
func newBlock(a Allocator, objSize uintptr, capacity uint) (block, error) {
	totalLen := int(headerSize + objSize*uintptr(capacity))
	buf, err := a.Alloc(totalLen)
	if err != nil {
		return block{}, err
	}

	*(*uintptr)(unsafe.Pointer(&buf[0])) = uintptr(capacity)

	return block{buf: buf}, nil
}

// addr returns this block's address as a BlockAddr
func (b block) addr() BlockAddr {
	return BlockAddr(unsafe.Pointer(&b.buf[0]))
}

// capacity returns the slot count stored in the header
func (b block) capacity() uint {
	return uint(*(*uintptr)(unsafe.Pointer(&b.buf[0])))
}

// dataAddr returns the address of the first slot
func (b block) dataAddr() uintptr {
	return b.addr() + headerSize
}

// end returns the address right behind the last slot
func (b block) end() uintptr {
	return b.addr() + uintptr(len(b.buf))
}

func (b block) contains(s Slot) bool {
	return s >= b.dataAddr() && s < b.end()
}

// slotAddr returns the address of the slot at the given index
func (b block) slotAddr(idx uint, objSize uintptr) Slot {
	return b.dataAddr() + objSize*uintptr(idx)
}

// slotIdx takes a slot address within this block and returns its index
func (b block) slotIdx(s Slot, objSize uintptr) uint {
	return uint((s - b.dataAddr()) / objSize)
}

// carve pushes every slot of the block onto the free list in address
// order, which leaves the highest slot at the head of the list
func (b block) carve(objSize uintptr, free *freeList) {
	capacity := b.capacity()
	for i := uint(0); i < capacity; i++ {
		free.push(b.slotAddr(i, objSize))
	}
}

func (b block) info() BlockInfo {
	return BlockInfo{
		Addr:     b.addr(),
		Capacity: b.capacity(),
		Size:     len(b.buf),
	}
}

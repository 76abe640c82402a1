package objpool

import (
	"fmt"
	"io"
	"log/slog"
	"unsafe"
)

// State is the lifecycle state of a pool
type State uint8

const (
	// StateUninitialized is the state of a zero Pool, it must be created
	// with NewPool or NewPoolWithConfig
	StateUninitialized State = iota
	// StateReady means the pool holds at least one block
	StateReady
	// StateEmpty means all blocks have been released by Clear, the next
	// Acquire allocates a new one
	StateEmpty
	// StateDestroyed is terminal
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	case StateDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// PoolStats is a snapshot of a pool's counters
type PoolStats struct {
	Blocks       int
	TotalSlots   uint
	FreeSlots    uint
	InUseSlots   uint
	TotalBytes   int
	Grows        uint64
	Clears       uint64
	NextCapacity uint
}

// Pool hands out slots of one fixed size. It requests memory from its
// Allocator in blocks that grow by GrowthFactor and recycles released
// slots in LIFO order.
//
// A Pool is not safe for concurrent use, see LockedPool.
// Releasing a slot twice, releasing a slot of another pool or using a
// slot after releasing it is undefined behavior and not detected
type Pool struct {
	objSize      uintptr
	nextCapacity uint
	growthFactor float64

	allocator Allocator
	// ownsAllocator is set when the pool created its allocator and has to
	// close it on Destroy
	ownsAllocator bool
	logger        *slog.Logger

	// blocks is ordered oldest first, the head of the block list is the
	// last element
	blocks []block
	free   freeList

	totalSlots uint
	totalBytes int
	grows      uint64
	clears     uint64
	destroyed  bool
}

// NewPool initializes a new pool for objects of objSize bytes and
// allocates its first block of initialCapacity slots.
// objSize is raised to the size of a pointer, initialCapacity to 1 and
// growthFactor to 1.0.
// On failure the second returned value wraps ErrOutOfMemory
func NewPool(objSize uintptr, initialCapacity uint, growthFactor float64) (*Pool, error) {
	cfg := Config
	cfg.InitialCapacity = initialCapacity
	cfg.GrowthFactor = growthFactor
	return NewPoolWithConfig(objSize, cfg)
}

// NewPoolWithConfig initializes a new pool for objects of objSize bytes
// with the settings of cfg and allocates its first block
func NewPoolWithConfig(objSize uintptr, cfg PoolConfig) (*Pool, error) {
	cfg = cfg.normalize()
	objSize = normalizeObjSize(objSize)
	if maxCapacity(objSize) == 0 {
		return nil, fmt.Errorf("%w: object size %d does not fit into a block", ErrOutOfMemory, objSize)
	}

	p := &Pool{
		objSize:      objSize,
		nextCapacity: min(cfg.InitialCapacity, maxCapacity(objSize)),
		growthFactor: cfg.GrowthFactor,
		allocator:    cfg.Allocator,
		logger:       cfg.Logger.With("objSize", objSize),
	}
	if p.allocator == nil {
		p.allocator = newDefaultAllocator()
		_, p.ownsAllocator = p.allocator.(io.Closer)
	}

	if err := p.grow(); err != nil {
		p.closeAllocator()
		return nil, err
	}

	return p, nil
}

// Acquire returns the address of ObjectSize() uninitialized bytes.
// The most recently released slot is handed out first; when no slot is
// free a new block is allocated.
// On failure the second returned value wraps ErrOutOfMemory, or is
// ErrPoolDestroyed or ErrPoolUninitialized
func (p *Pool) Acquire() (Slot, error) {
	if p.destroyed {
		return 0, ErrPoolDestroyed
	}
	if s, ok := p.free.pop(); ok {
		return s, nil
	}

	if err := p.checkUsable(); err != nil {
		return 0, err
	}
	if err := p.grow(); err != nil {
		return 0, err
	}

	s, _ := p.free.pop()
	return s, nil
}

// MustAcquire is like Acquire but panics if no slot can be provided
func (p *Pool) MustAcquire() Slot {
	s, err := p.Acquire()
	if err != nil {
		panic(err)
	}
	return s
}

// Release hands a slot obtained from Acquire back to the pool. The slot
// becomes the next one returned by Acquire. Releasing into a destroyed
// pool does nothing, its blocks are gone
func (p *Pool) Release(s Slot) {
	if p.destroyed {
		return
	}
	p.free.push(s)
}

// Bytes returns the slot as a byte slice of ObjectSize() length.
// It is important that s belongs to this pool, otherwise anything can
// happen
func (p *Pool) Bytes(s Slot) []byte {
	return unsafeSlotBytes(s, p.objSize)
}

// unsafeSlotBytes takes a slot address and a size and returns the slot
// as a byte slice
func unsafeSlotBytes(s Slot, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(s)), size)
}

// grow adds one block of nextCapacity slots to the pool, puts all of its
// slots on the free list and advances nextCapacity by the growth factor.
// The pool is left untouched if the allocator fails
func (p *Pool) grow() error {
	capacity := p.nextCapacity
	b, err := newBlock(p.allocator, p.objSize, capacity)
	if err != nil {
		size := int(headerSize + p.objSize*uintptr(capacity))
		p.logger.Error("block allocation failed", "capacity", capacity, "size", size, "err", err)
		return fmt.Errorf("%w: allocating block of %d slots (%d bytes): %w", ErrOutOfMemory, capacity, size, err)
	}

	p.blocks = append(p.blocks, b)
	b.carve(p.objSize, &p.free)

	p.totalSlots += capacity
	p.totalBytes += len(b.buf)
	p.grows++
	p.nextCapacity = p.grownCapacity(capacity)

	p.logger.Debug("allocated block",
		"addr", b.addr(),
		"capacity", capacity,
		"size", len(b.buf),
		"nextCapacity", p.nextCapacity,
	)
	return nil
}

// grownCapacity returns capacity * growthFactor truncated, bounded by the
// largest capacity a block can be allocated with.
// The product is taken in single precision, a factor like 1.3 is rounded
// to float32 first and 90 slots grow to 116, not 117
func (p *Pool) grownCapacity(capacity uint) uint {
	limit := maxCapacity(p.objSize)
	grown := float32(capacity) * float32(p.growthFactor)
	if float64(grown) >= float64(limit) {
		return limit
	}
	return uint(grown)
}

// Clear releases every block back to the allocator and empties the pool.
// Object size, growth factor and the current block capacity are kept, so
// the next Acquire allocates a block of the capacity the pool had grown
// to. Every slot handed out before becomes invalid.
// If the allocator fails to free a block the remaining blocks are still
// freed and the first error is returned
func (p *Pool) Clear() error {
	if err := p.checkUsable(); err != nil {
		return err
	}
	if len(p.blocks) == 0 {
		return nil
	}

	var firstErr error
	for i := len(p.blocks) - 1; i >= 0; i-- {
		b := p.blocks[i]
		addr := b.addr()
		if err := p.allocator.Free(b.buf); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("Clear: failed freeing block at %#x: %w", addr, err)
		}
		p.blocks[i] = block{}
	}

	p.logger.Debug("cleared pool",
		"blocks", len(p.blocks),
		"slots", p.totalSlots,
		"nextCapacity", p.nextCapacity,
	)

	p.blocks = p.blocks[:0]
	p.free.reset()
	p.totalSlots = 0
	p.totalBytes = 0
	p.clears++

	return firstErr
}

// Destroy releases every block and, if the pool created its own
// allocator, closes it. A destroyed pool can not be used anymore, calling
// Destroy again is a no-op
func (p *Pool) Destroy() error {
	if p.destroyed {
		return nil
	}
	if p.objSize == 0 {
		return ErrPoolUninitialized
	}

	err := p.Clear()
	if cerr := p.closeAllocator(); cerr != nil && err == nil {
		err = cerr
	}
	p.destroyed = true
	p.blocks = nil
	p.logger.Debug("destroyed pool")

	return err
}

func (p *Pool) closeAllocator() error {
	if !p.ownsAllocator {
		return nil
	}
	p.ownsAllocator = false
	if c, ok := p.allocator.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Pool) checkUsable() error {
	if p.destroyed {
		return ErrPoolDestroyed
	}
	if p.objSize == 0 {
		return ErrPoolUninitialized
	}
	return nil
}

// ObjectSize returns the size of every slot in bytes
func (p *Pool) ObjectSize() uintptr {
	return p.objSize
}

// NextBlockCapacity returns the number of slots the next block will have
func (p *Pool) NextBlockCapacity() uint {
	return p.nextCapacity
}

// GrowthFactor returns the factor block capacities grow by
func (p *Pool) GrowthFactor() float64 {
	return p.growthFactor
}

// State returns the lifecycle state of the pool
func (p *Pool) State() State {
	switch {
	case p.destroyed:
		return StateDestroyed
	case p.objSize == 0:
		return StateUninitialized
	case len(p.blocks) == 0:
		return StateEmpty
	}
	return StateReady
}

// Stats returns a snapshot of the pool's counters.
// The slot counts assume that callers stick to the Release contract
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Blocks:       len(p.blocks),
		TotalSlots:   p.totalSlots,
		FreeSlots:    p.free.len,
		InUseSlots:   p.totalSlots - p.free.len,
		TotalBytes:   p.totalBytes,
		Grows:        p.grows,
		Clears:       p.clears,
		NextCapacity: p.nextCapacity,
	}
}

// Blocks describes all blocks of the pool, newest first
func (p *Pool) Blocks() []BlockInfo {
	infos := make([]BlockInfo, 0, len(p.blocks))
	for i := len(p.blocks) - 1; i >= 0; i-- {
		infos = append(infos, p.blocks[i].info())
	}
	return infos
}

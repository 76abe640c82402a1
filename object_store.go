package objpool

import (
	"errors"
	"fmt"
	"sort"
)

// Store contains a map of pools indexed by the size of the objects stored
// in each pool.
// It also contains a lookup table of all blocks of all pools, kept sorted
// in descending order by address, so that a slot can be released without
// naming its size. The table catches up with blocks the pools allocated
// or cleared since it was last used, also when a pool was used directly.
// Like Pool, a Store is not safe for concurrent use
type Store struct {
	pools       map[uintptr]*Pool
	tracked     map[*Pool]trackedBlocks
	lookupTable []lookupEntry
	cfg         PoolConfig
	destroyed   bool
}

// trackedBlocks is how much of a pool's block list the lookup table holds
type trackedBlocks struct {
	blocks int
	clears uint64
}

// lookupEntry is the address range of one block and the pool it belongs to
type lookupEntry struct {
	addr BlockAddr
	end  uintptr
	pool *Pool
}

// NewStore initializes a new store. Every pool it creates uses cfg
func NewStore(cfg PoolConfig) *Store {
	return &Store{
		pools:   make(map[uintptr]*Pool),
		tracked: make(map[*Pool]trackedBlocks),
		cfg:     cfg,
	}
}

// Acquire returns a slot of at least size bytes from the pool of that
// size, creating the pool if needed. Sizes below the size of a pointer
// share one pool.
// On failure it returns an error as the second value
func (s *Store) Acquire(size uintptr) (Slot, error) {
	if s.destroyed {
		return 0, ErrPoolDestroyed
	}
	if size == 0 {
		return 0, ErrInvalidSize
	}
	size = normalizeObjSize(size)

	pool, ok := s.pools[size]
	if !ok {
		var err error
		pool, err = NewPoolWithConfig(size, s.cfg)
		if err != nil {
			return 0, fmt.Errorf("Acquire: failed creating pool for size %d: %w", size, err)
		}
		s.pools[size] = pool
	}

	slot, err := pool.Acquire()
	if err != nil {
		return 0, err
	}
	s.sync()

	return slot, nil
}

// sync brings the lookup table up to date with the block lists of all
// pools. Blocks only ever get appended to a pool until it is cleared, so
// new blocks are found by position. A cleared pool invalidates the whole
// table, which is then rebuilt
func (s *Store) sync() {
	for pool, t := range s.tracked {
		if pool.clears != t.clears {
			s.lookupTable = s.lookupTable[:0]
			clear(s.tracked)
			break
		}
	}

	for _, pool := range s.pools {
		t := s.tracked[pool]
		if t.blocks == len(pool.blocks) && t.clears == pool.clears {
			continue
		}
		for _, b := range pool.blocks[t.blocks:] {
			s.track(pool, b)
		}
		s.tracked[pool] = trackedBlocks{blocks: len(pool.blocks), clears: pool.clears}
	}
}

// track inserts a block into the lookup table, keeping it sorted in
// descending order
func (s *Store) track(pool *Pool, b block) {
	addr := b.addr()
	insertAt := sort.Search(len(s.lookupTable), func(i int) bool { return s.lookupTable[i].addr < addr })
	s.lookupTable = append(s.lookupTable, lookupEntry{})
	copy(s.lookupTable[insertAt+1:], s.lookupTable[insertAt:])
	s.lookupTable[insertAt] = lookupEntry{addr: addr, end: b.end(), pool: pool}
}

// lookup finds the pool owning the block that contains the slot
func (s *Store) lookup(slot Slot) (*Pool, error) {
	s.sync()
	idx := sort.Search(len(s.lookupTable), func(i int) bool { return s.lookupTable[i].addr <= slot })
	if idx >= len(s.lookupTable) || slot >= s.lookupTable[idx].end {
		return nil, ErrUnknownSlot
	}
	return s.lookupTable[idx].pool, nil
}

// Release hands a slot back to the pool it was acquired from.
// On failure it returns ErrUnknownSlot
func (s *Store) Release(slot Slot) error {
	pool, err := s.lookup(slot)
	if err != nil {
		return err
	}
	pool.Release(slot)
	return nil
}

// Get returns the slot as a byte slice of its pool's object size
func (s *Store) Get(slot Slot) ([]byte, error) {
	pool, err := s.lookup(slot)
	if err != nil {
		return nil, err
	}
	return pool.Bytes(slot), nil
}

// Pool returns the pool serving objects of the given size, if one has
// been created. Slots acquired from it directly can be released through
// the store. Destroying it directly leaves a dead pool in the store
func (s *Store) Pool(size uintptr) (*Pool, bool) {
	pool, ok := s.pools[normalizeObjSize(size)]
	return pool, ok
}

// Clear clears every pool of the store. The pools are kept and grow again
// on the next Acquire
func (s *Store) Clear() error {
	if s.destroyed {
		return ErrPoolDestroyed
	}
	var errs []error
	for _, pool := range s.pools {
		if err := pool.Clear(); err != nil {
			errs = append(errs, err)
		}
	}
	s.sync()
	return errors.Join(errs...)
}

// Destroy destroys every pool of the store, the store can not be used
// afterwards
func (s *Store) Destroy() error {
	if s.destroyed {
		return nil
	}
	var errs []error
	for size, pool := range s.pools {
		if err := pool.Destroy(); err != nil {
			errs = append(errs, err)
		}
		delete(s.pools, size)
	}
	s.lookupTable = nil
	s.tracked = nil
	s.destroyed = true
	return errors.Join(errs...)
}

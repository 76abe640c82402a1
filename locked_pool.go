package objpool

import "sync"

// LockedPool is a Pool guarded by a single mutex. Both lists and the
// capacity counter are only touched while holding it
type LockedPool struct {
	mu sync.Mutex
	p  *Pool
}

// NewLockedPool initializes a new pool like NewPoolWithConfig and wraps it
func NewLockedPool(objSize uintptr, cfg PoolConfig) (*LockedPool, error) {
	p, err := NewPoolWithConfig(objSize, cfg)
	if err != nil {
		return nil, err
	}
	return &LockedPool{p: p}, nil
}

// Acquire is like Pool.Acquire, callers of Release, Clear and Destroy
// wait until it returns
func (l *LockedPool) Acquire() (Slot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Acquire()
}

// Release is like Pool.Release
func (l *LockedPool) Release(s Slot) {
	l.mu.Lock()
	l.p.Release(s)
	l.mu.Unlock()
}

// Bytes does not take the lock, the slot is owned by the caller
func (l *LockedPool) Bytes(s Slot) []byte {
	return unsafeSlotBytes(s, l.p.objSize)
}

// Clear is like Pool.Clear. Slots held by other goroutines become
// invalid as well
func (l *LockedPool) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Clear()
}

// Destroy is like Pool.Destroy
func (l *LockedPool) Destroy() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Destroy()
}

// Stats returns a consistent snapshot of the pool's counters
func (l *LockedPool) Stats() PoolStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Stats()
}

// State returns the lifecycle state of the pool
func (l *LockedPool) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.State()
}

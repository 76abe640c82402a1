package objpool

import (
	"fmt"
	"sort"
	"strings"

	"github.com/willf/bitset"
)

// BlockOccupancy reports which slots of a block are on the free list
type BlockOccupancy struct {
	BlockInfo
	// Free has one bit per slot of the block, set bits are free slots
	Free *bitset.BitSet
}

// Occupancy walks the free list and returns the free slots of every
// block, newest block first.
// Its cost is linear in the number of free slots and blocks, it is meant
// for diagnostics and tests
func (p *Pool) Occupancy() []BlockOccupancy {
	result := make([]BlockOccupancy, len(p.blocks))

	// sorted by address so that a free slot's block can be found with a
	// binary search
	sorted := make([]int, len(p.blocks))
	blocks := make([]block, len(p.blocks))
	for i := range p.blocks {
		b := p.blocks[len(p.blocks)-1-i]
		blocks[i] = b
		result[i] = BlockOccupancy{
			BlockInfo: b.info(),
			Free:      bitset.New(b.capacity()),
		}
		sorted[i] = i
	}
	sort.Slice(sorted, func(i, j int) bool { return result[sorted[i]].Addr < result[sorted[j]].Addr })

	p.free.each(func(s Slot) {
		// first block whose address is above s, the owner is the one before
		idx := sort.Search(len(sorted), func(i int) bool { return result[sorted[i]].Addr > s })
		if idx == 0 {
			return
		}
		i := sorted[idx-1]
		if !blocks[i].contains(s) {
			return
		}
		result[i].Free.Set(blocks[i].slotIdx(s, p.objSize))
	})

	return result
}

// String creates a long multi-line string which illustrates the pool in a
// pretty and human-readable format
func (p *Pool) String() string {
	var b strings.Builder
	stats := p.Stats()

	fmt.Fprintf(&b, "-------------------------------\n")
	fmt.Fprintf(&b, "State: %s\n", p.State())
	fmt.Fprintf(&b, "Object Size: %d\n", p.objSize)
	fmt.Fprintf(&b, "Growth Factor: %g\n", p.growthFactor)
	fmt.Fprintf(&b, "Next Block Capacity: %d\n", p.nextCapacity)
	fmt.Fprintf(&b, "Slots: %d total, %d free, %d in use\n", stats.TotalSlots, stats.FreeSlots, stats.InUseSlots)

	for _, occ := range p.Occupancy() {
		fmt.Fprintf(&b, "Block Addr: %#x Capacity: %d Size: %d Free: %d\n", occ.Addr, occ.Capacity, occ.Size, occ.Free.Count())
		for i := uint(0); i < occ.Capacity; i++ {
			if occ.Free.Test(i) {
				b.WriteByte('.')
			} else {
				b.WriteByte('#')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

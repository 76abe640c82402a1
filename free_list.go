package objpool

import "unsafe"

// Slot is the address of one fixed size memory cell handed out by a pool
type Slot = uintptr

// freeList is an intrusive singly linked list of free slots. The first
// word of every free slot holds the address of the next one, 0 ends the
// list
type freeList struct {
	head Slot
	len  uint
}

// push makes s the new head of the list
func (f *freeList) push(s Slot) {
	*(*uintptr)(unsafe.Pointer(s)) = f.head
	f.head = s
	f.len++
}

// pop removes the head of the list and returns it.
// The second returned value is false if the list is empty
func (f *freeList) pop() (Slot, bool) {
	s := f.head
	if s == 0 {
		return 0, false
	}
	f.head = *(*uintptr)(unsafe.Pointer(s))
	f.len--
	return s, true
}

func (f *freeList) reset() {
	f.head = 0
	f.len = 0
}

// each calls fn for every slot from head to tail
func (f *freeList) each(fn func(Slot)) {
	for s := f.head; s != 0; s = *(*uintptr)(unsafe.Pointer(s)) {
		fn(s)
	}
}

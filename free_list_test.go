package objpool

import (
	"testing"
	"unsafe"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFreeList(t *testing.T) {
	Convey("Given a free list over some off-heap memory", t, func() {
		alloc := &MemoryAllocator{}
		defer alloc.Close()
		buf, err := alloc.Alloc(8 * int(minObjSize))
		So(err, ShouldBeNil)
		base := uintptr(unsafe.Pointer(&buf[0]))

		var fl freeList
		_, ok := fl.pop()
		So(ok, ShouldBeFalse)

		Convey("slots pop in reverse order of their pushes", func() {
			for i := uintptr(0); i < 4; i++ {
				fl.push(base + i*minObjSize)
			}
			So(fl.len, ShouldEqual, 4)

			for i := 3; i >= 0; i-- {
				s, ok := fl.pop()
				So(ok, ShouldBeTrue)
				So(s, ShouldEqual, base+uintptr(i)*minObjSize)
			}
			_, ok := fl.pop()
			So(ok, ShouldBeFalse)
			So(fl.len, ShouldEqual, 0)
		})

		Convey("a pushed slot links to the previous head", func() {
			fl.push(base)
			fl.push(base + minObjSize)
			So(*(*uintptr)(unsafe.Pointer(base + minObjSize)), ShouldEqual, base)
			So(*(*uintptr)(unsafe.Pointer(base)), ShouldEqual, uintptr(0))
		})

		Convey("reset forgets all slots", func() {
			fl.push(base)
			fl.reset()
			_, ok := fl.pop()
			So(ok, ShouldBeFalse)
			count := 0
			fl.each(func(Slot) { count++ })
			So(count, ShouldEqual, 0)
		})
	})
}

package objpool

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestOccupancy(t *testing.T) {
	Convey("Given a pool with one block of four slots", t, func() {
		p := newTestPool(t, 8, 4, 2.0)
		occ := p.Occupancy()
		So(len(occ), ShouldEqual, 1)
		So(occ[0].Free.Count(), ShouldEqual, 4)

		Convey("acquiring marks the highest slot as used", func() {
			s := p.MustAcquire()
			occ := p.Occupancy()
			So(occ[0].Free.Count(), ShouldEqual, 3)
			So(occ[0].Free.Test(3), ShouldBeFalse)
			So(occ[0].Free.Test(0), ShouldBeTrue)

			Convey("and releasing frees it again", func() {
				p.Release(s)
				So(p.Occupancy()[0].Free.Count(), ShouldEqual, 4)
			})
		})

		Convey("every free slot is accounted to exactly one block", func() {
			for i := 0; i < 7; i++ {
				p.MustAcquire()
			}
			occ := p.Occupancy()
			So(len(occ), ShouldEqual, 2)
			So(occ[0].Capacity, ShouldEqual, 8)
			So(occ[0].Free.Count(), ShouldEqual, 5)
			So(occ[1].Free.Count(), ShouldEqual, 0)

			var free uint
			for _, o := range occ {
				free += o.Free.Count()
			}
			So(free, ShouldEqual, p.Stats().FreeSlots)
		})

		Convey("the string dump shows every block", func() {
			p.MustAcquire()
			dump := p.String()
			So(dump, ShouldContainSubstring, "State: ready")
			So(dump, ShouldContainSubstring, "Object Size: 8")
			So(dump, ShouldContainSubstring, "Capacity: 4")
			So(dump, ShouldContainSubstring, "...#\n")
		})
	})
}

package pools_test

import (
	"errors"
	"math/rand"
	"testing"

	catalog "github.com/okian/whackaword/internal/domain/catalog"
	model "github.com/okian/whackaword/internal/domain/model"
	pools "github.com/okian/whackaword/internal/domain/pools"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPools(t *testing.T) {
	Convey("Given full pools over the default catalog", t, func() {
		p := pools.New(catalog.Default(), rand.New(rand.NewSource(1)))

		Convey("Then every target and slot is available", func() {
			So(p.AvailableTargets(), ShouldEqual, 9)
			So(p.AvailableSlots(), ShouldEqual, 5)
		})

		Convey("When draining the target pool", func() {
			seen := map[string]bool{}
			for {
				tg, ok := p.PickTarget(nil)
				if !ok {
					break
				}
				seen[tg.Name] = true
			}

			Convey("Then each target is drawn exactly once", func() {
				So(len(seen), ShouldEqual, 9)
				So(p.AvailableTargets(), ShouldEqual, 0)
			})

			Convey("And ResetTargets refills it", func() {
				p.ResetTargets()
				So(p.AvailableTargets(), ShouldEqual, 9)
			})
		})

		Convey("When picking with a filter", func() {
			tg, ok := p.PickTarget(func(t model.Target) bool { return t.Name == "Egg" })

			Convey("Then only a matching target is drawn", func() {
				So(ok, ShouldBeTrue)
				So(tg.Name, ShouldEqual, "Egg")
				So(p.HasTarget("Egg"), ShouldBeFalse)
			})

			Convey("And a filter with no match reports false", func() {
				_, ok := p.PickTarget(func(t model.Target) bool { return t.Name == "Egg" })
				So(ok, ShouldBeFalse)
				So(p.AvailableTargets(), ShouldEqual, 8)
			})
		})

		Convey("When slots are drawn and released", func() {
			s1, _ := p.PickSlot()
			s2, _ := p.PickSlot()

			Convey("Then they leave the pool", func() {
				So(s1.ID, ShouldNotEqual, s2.ID)
				So(p.AvailableSlots(), ShouldEqual, 3)
			})

			Convey("And releasing returns them once", func() {
				So(p.ReleaseSlot(s1), ShouldBeNil)
				So(p.ReleaseSlot(s1), ShouldBeNil)
				So(p.AvailableSlots(), ShouldEqual, 4)
			})

			Convey("And an unknown slot is rejected", func() {
				err := p.ReleaseSlot(model.Slot{ID: "hole-99"})
				So(errors.Is(err, pools.ErrUnknownSlot), ShouldBeTrue)
			})
		})

		Convey("When every slot is taken", func() {
			for i := 0; i < 5; i++ {
				_, ok := p.PickSlot()
				So(ok, ShouldBeTrue)
			}

			Convey("Then PickSlot reports false", func() {
				_, ok := p.PickSlot()
				So(ok, ShouldBeFalse)
			})
		})
	})
}

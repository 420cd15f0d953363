package round_test

import (
	"testing"
	"time"

	round "github.com/okian/whackaword/internal/round"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTimers(t *testing.T) {
	Convey("Given a timer set on a fake clock", t, func() {
		clock := &fakeClock{}
		timers := round.NewTimers(clock)
		fired := 0

		Convey("When many callbacks fire", func() {
			for range 100 {
				timers.After(10*time.Millisecond, func() { fired++ })
			}
			clock.Advance(10 * time.Millisecond)

			Convey("Then none of them is retained", func() {
				So(fired, ShouldEqual, 100)
				So(timers.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the set is stopped before the callbacks are due", func() {
			timers.After(10*time.Millisecond, func() { fired++ })
			timers.After(20*time.Millisecond, func() { fired++ })
			So(timers.Len(), ShouldEqual, 2)
			timers.StopAll()
			clock.Advance(time.Second)

			Convey("Then nothing fires and nothing is pending", func() {
				So(fired, ShouldEqual, 0)
				So(timers.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a callback was already due as the set is stopped", func() {
			timers.After(0, func() { fired++ })
			timers.StopAll()
			// A real timer that already started running ignores Stop.
			clock.timers[len(clock.timers)-1].stopped = false
			clock.Advance(0)

			Convey("Then the late callback is dropped", func() {
				So(fired, ShouldEqual, 0)
			})
		})
	})
}

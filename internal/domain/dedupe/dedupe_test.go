package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/whackaword/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When a tap id is recorded", func() {
			d := dedupe.NewInMemoryDeduper()
			first := d.SeenAndRecord(ctx, "tap-1")
			second := d.SeenAndRecord(ctx, "tap-1")

			Convey("Then only the first delivery is new", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a tap id is unrecorded after backpressure", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "tap-1")
			d.Unrecord(ctx, "tap-1")
			d.Unrecord(ctx, "missing")

			Convey("Then a retry is accepted", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "tap-1"), ShouldBeFalse)
			})
		})

		Convey("When the bounded deduper overflows", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for _, id := range []string{"tap-1", "tap-2", "tap-3", "tap-4"} {
				So(d.SeenAndRecord(ctx, id), ShouldBeFalse)
			}

			Convey("Then the oldest id is forgotten and newer ones remain", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "tap-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "tap-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "tap-1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 3)
			})
		})

		Convey("When an id is unrecorded and recorded again before its ring slot is reused", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(ctx, "tap-1")
			d.Unrecord(ctx, "tap-1")
			d.SeenAndRecord(ctx, "tap-2")
			d.SeenAndRecord(ctx, "tap-1")
			d.SeenAndRecord(ctx, "tap-3")

			Convey("Then the stale ring entry does not evict the fresh recording", func() {
				So(d.SeenAndRecord(ctx, "tap-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			const numTaps = 1000
			for i := 0; i < numTaps; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("tap-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, numTaps)
				So(d.SeenAndRecord(ctx, "tap-0"), ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper shared by HTTP handlers", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const numGoroutines = 10

		Convey("When the same tap id is submitted concurrently", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(context.Background(), "tap-shared") {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one submission is new", func() {
				So(fresh, ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}

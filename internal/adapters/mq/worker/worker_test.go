package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/whackaword/internal/adapters/mq/queue"
	worker "github.com/okian/whackaword/internal/adapters/mq/worker"
	model "github.com/okian/whackaword/internal/domain/model"
	logging "github.com/okian/whackaword/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingHandler notes every event and whether two calls ever overlapped.
type recordingHandler struct {
	mu       sync.Mutex
	slots    []string
	active   int
	overlaps int
}

func (h *recordingHandler) HandleEvent(_ context.Context, e model.Event) {
	h.mu.Lock()
	h.active++
	if h.active > 1 {
		h.overlaps++
	}
	h.mu.Unlock()

	time.Sleep(time.Millisecond)

	h.mu.Lock()
	h.active--
	h.slots = append(h.slots, e.Slot)
	h.mu.Unlock()
}

func (h *recordingHandler) handled() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.slots...)
}

func TestLoop(t *testing.T) {
	convey.Convey("Given a loop over a mailbox", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		h := &recordingHandler{}
		loop := worker.NewLoop(q, h, worker.WithName("test-loop"), worker.WithLogger(logging.Get()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go loop.Run(ctx)

		convey.Convey("When events arrive from several goroutines", func() {
			var wg sync.WaitGroup
			for g := 0; g < 4; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 5; i++ {
						q.Enqueue(ctx, model.TapEvent("hole-1", 1))
					}
				}()
			}
			wg.Wait()

			deadline := time.Now().Add(2 * time.Second)
			for len(h.handled()) < 20 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}

			convey.Convey("Then each is handled once and never concurrently", func() {
				convey.So(len(h.handled()), convey.ShouldEqual, 20)
				convey.So(h.overlaps, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When events are queued in order", func() {
			for _, s := range []string{"a", "b", "c"} {
				q.Enqueue(ctx, model.TapEvent(s, 1))
			}
			deadline := time.Now().Add(2 * time.Second)
			for len(h.handled()) < 3 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}

			convey.Convey("Then they are handled in that order", func() {
				convey.So(h.handled(), convey.ShouldResemble, []string{"a", "b", "c"})
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			err := loop.Shutdown(shutdownCtx)
			again := loop.Shutdown(shutdownCtx)

			convey.Convey("Then it stops and a second shutdown is harmless", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(again, convey.ShouldBeNil)
				<-loop.Done()
			})
		})

		// Closing the mailbox ends the forwarding goroutine.
		_ = q.Close()
		cancel()
		<-loop.Done()
	})
}

func TestLoopStopsWhenQueueCloses(t *testing.T) {
	convey.Convey("Given a running loop", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		loop := worker.NewLoop(q, &recordingHandler{})
		go loop.Run(context.Background())

		convey.Convey("When the mailbox is closed", func() {
			_ = q.Close()

			convey.Convey("Then Run returns", func() {
				select {
				case <-loop.Done():
				case <-time.After(time.Second):
					convey.So("loop still running", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

package narration_test

import (
	"context"
	"testing"

	model "github.com/okian/whackaword/internal/domain/model"
	narration "github.com/okian/whackaword/internal/narration"
	. "github.com/smartystreets/goconvey/convey"
)

// recordingPlayer remembers every Play call and lets the test finish them.
type recordingPlayer struct {
	played   []string
	inFlight int
	maxIn    int
	dones    []func()
}

func (p *recordingPlayer) Play(_ context.Context, clip model.Clip, done func()) {
	p.played = append(p.played, clip.ID)
	p.inFlight++
	if p.inFlight > p.maxIn {
		p.maxIn = p.inFlight
	}
	p.dones = append(p.dones, func() {
		p.inFlight--
		done()
	})
}

func clip(id string) model.Clip { return model.Clip{ID: id, Kind: model.ClipPrompt} }

func TestQueue(t *testing.T) {
	Convey("Given an idle narration queue", t, func() {
		ctx := context.Background()
		player := &recordingPlayer{}
		var finished []uint64
		q := narration.New(player, func(seq uint64) { finished = append(finished, seq) })

		// complete finishes the oldest outstanding playback and routes it back.
		complete := func() {
			d := player.dones[0]
			player.dones = player.dones[1:]
			d()
			seq := finished[len(finished)-1]
			So(q.Finished(ctx, seq), ShouldBeTrue)
		}

		So(q.IsIdle(), ShouldBeTrue)

		Convey("When three clips are enqueued at once", func() {
			q.Enqueue(ctx, clip("a"), nil)
			q.Enqueue(ctx, clip("b"), nil)
			q.Enqueue(ctx, clip("c"), nil)

			Convey("Then only the first is playing", func() {
				So(player.played, ShouldResemble, []string{"a"})
				So(q.Pending(), ShouldEqual, 2)
				So(q.IsIdle(), ShouldBeFalse)
				playing, ok := q.Playing()
				So(ok, ShouldBeTrue)
				So(playing.ID, ShouldEqual, "a")
			})

			Convey("And completions play the rest in order, one at a time", func() {
				complete()
				complete()
				complete()
				So(player.played, ShouldResemble, []string{"a", "b", "c"})
				So(player.maxIn, ShouldEqual, 1)
				So(q.IsIdle(), ShouldBeTrue)
			})
		})

		Convey("When completions interleave with enqueues", func() {
			q.Enqueue(ctx, clip("a"), nil)
			complete()
			q.Enqueue(ctx, clip("b"), nil)
			q.Enqueue(ctx, clip("c"), nil)
			complete()
			q.Enqueue(ctx, clip("d"), nil)
			complete()
			complete()

			Convey("Then playback order equals enqueue order", func() {
				So(player.played, ShouldResemble, []string{"a", "b", "c", "d"})
				So(player.maxIn, ShouldEqual, 1)
			})
		})

		Convey("When an item has a completion callback", func() {
			var order []string
			q.Enqueue(ctx, clip("a"), func() {
				order = append(order, "a-done")
				order = append(order, "playing:"+player.played[len(player.played)-1])
			})
			q.Enqueue(ctx, clip("b"), nil)
			complete()

			Convey("Then it fires before the next item starts", func() {
				So(order, ShouldResemble, []string{"a-done", "playing:a"})
				So(player.played, ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When a callback enqueues more narration", func() {
			q.Enqueue(ctx, clip("a"), func() { q.Enqueue(ctx, clip("late"), nil) })
			q.Enqueue(ctx, clip("b"), nil)
			complete()
			complete()

			Convey("Then already queued items keep their place", func() {
				So(player.played, ShouldResemble, []string{"a", "b", "late"})
			})
		})

		Convey("When a stale completion arrives", func() {
			q.Enqueue(ctx, clip("a"), nil)

			Convey("Then it is ignored", func() {
				So(q.Finished(ctx, 99), ShouldBeFalse)
				So(q.IsIdle(), ShouldBeFalse)
			})
		})
	})
}

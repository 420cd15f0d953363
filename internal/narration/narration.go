// Package narration serializes spoken clips into a single-stream FIFO.
//
// At most one clip is in flight. Completion arrives as a sequence number
// routed back through the session loop, so every mutation happens on the
// loop goroutine.
package narration

import (
	"context"

	model "github.com/okian/whackaword/internal/domain/model"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/okian/whackaword/pkg/metrics"
)

// Player plays one clip to completion and calls done exactly once, from any
// goroutine. Play must not block.
type Player interface {
	Play(ctx context.Context, clip model.Clip, done func())
}

// Notify delivers a playback completion back onto the owning loop.
type Notify func(seq uint64)

type request struct {
	seq        uint64
	clip       model.Clip
	onComplete func()
}

// Queue is a FIFO of narration requests. Not safe for concurrent use.
type Queue struct {
	player     Player
	notify     Notify
	log        logger.Logger
	pending    []request
	inflight   *request
	completing bool
	nextSeq    uint64
}

// Option customizes a Queue.
type Option func(*Queue)

// WithLogger sets the queue logger.
func WithLogger(l logger.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.log = l
		}
	}
}

// New builds an idle queue playing through p and reporting completions via notify.
func New(p Player, notify Notify, opts ...Option) *Queue {
	q := &Queue{player: p, notify: notify, log: logger.Nop()}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends clip. It starts playing immediately only when nothing is in
// flight. onComplete may be nil.
func (q *Queue) Enqueue(ctx context.Context, clip model.Clip, onComplete func()) {
	q.nextSeq++
	q.pending = append(q.pending, request{seq: q.nextSeq, clip: clip, onComplete: onComplete})
	q.log.Debug(ctx, "narration enqueued",
		logger.String("clip", clip.ID),
		logger.Uint64("seq", q.nextSeq),
		logger.Int("pending", len(q.pending)),
	)
	if q.inflight == nil && !q.completing {
		q.startNext(ctx)
	}
	metrics.UpdateNarrationDepth(len(q.pending))
}

// Finished handles the completion of playback seq. Completions that do not
// match the in-flight request are ignored and reported as false.
func (q *Queue) Finished(ctx context.Context, seq uint64) bool {
	if q.inflight == nil || q.inflight.seq != seq {
		q.log.Debug(ctx, "ignoring stale narration completion", logger.Uint64("seq", seq))
		return false
	}
	done := q.inflight
	q.inflight = nil
	metrics.RecordNarrationPlayed(done.clip.Kind.String())

	if done.onComplete != nil {
		q.completing = true
		done.onComplete()
		q.completing = false
	}
	q.startNext(ctx)
	metrics.UpdateNarrationDepth(len(q.pending))
	return true
}

// IsIdle reports whether nothing is playing or waiting.
func (q *Queue) IsIdle() bool {
	return q.inflight == nil && len(q.pending) == 0
}

// Pending is the number of requests waiting behind the one in flight.
func (q *Queue) Pending() int {
	return len(q.pending)
}

// Playing returns the clip in flight.
func (q *Queue) Playing() (model.Clip, bool) {
	if q.inflight == nil {
		return model.Clip{}, false
	}
	return q.inflight.clip, true
}

func (q *Queue) startNext(ctx context.Context) {
	if q.inflight != nil || len(q.pending) == 0 {
		return
	}
	next := q.pending[0]
	q.pending[0] = request{}
	q.pending = q.pending[1:]
	q.inflight = &next

	seq := next.seq
	q.log.Debug(ctx, "narration started", logger.String("clip", next.clip.ID), logger.Uint64("seq", seq))
	q.player.Play(ctx, next.clip, func() { q.notify(seq) })
}

// Package worker runs the single-threaded game loop over the event mailbox.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	model "github.com/okian/whackaword/internal/domain/model"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/okian/whackaword/pkg/metrics"
)

// Event is what the loop reads off the queue.
type Event = model.Event

// Handler applies one event. The loop guarantees calls never overlap.
type Handler interface {
	HandleEvent(ctx context.Context, e model.Event)
}

// Queue defines how the loop receives events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the event in hand to finish.
	Shutdown(ctx context.Context) error
}

// Loop is the only consumer of the mailbox, so the handler's state has a
// single writer.
type Loop struct {
	queue   Queue
	handler Handler
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewLoop creates a loop feeding queue events to handler.
func NewLoop(queue Queue, handler Handler, opts ...Option) *Loop {
	l := &Loop{
		queue:    queue,
		handler:  handler,
		name:     "loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	l.logger = l.logger.Named(l.name)

	return l
}

// Run starts the loop. It returns when ctx is cancelled, Shutdown is called
// or the queue is closed.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	eventChan := l.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				l.logger.Debug(ctx, "mailbox closed")
				return
			}
			l.process(ctx, event)
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Shutdown stops the loop.
func (l *Loop) Shutdown(ctx context.Context) error {
	l.shutdownOnce.Do(func() { close(l.shutdown) })

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		l.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (l *Loop) process(ctx context.Context, event Event) { //nolint:gocritic // hugeParam: Event must be passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordLoopLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	l.logger.Debug(ctx, "handling event",
		logger.String("event_id", event.ID),
		logger.String("kind", event.Kind.String()),
		logger.Uint64("token", uint64(event.Token)),
	)
	l.handler.HandleEvent(ctx, event)
}

package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	model "github.com/okian/whackaword/internal/domain/model"
)

func tapEvent(slot string) model.Event {
	return model.TapEvent(slot, 1)
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	event1 := tapEvent("hole-1")
	if !q.Enqueue(ctx, event1) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	event := <-q.Dequeue(ctx)
	if event.ID != event1.ID || event.Slot != "hole-1" {
		t.Errorf("expected %s on hole-1, got %s on %s", event1.ID, event.ID, event.Slot)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, tapEvent("hole-1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, tapEvent("hole-2")) {
		t.Error("expected enqueue to succeed")
	}

	// Full: the caller must be told so it can report backpressure.
	if q.Enqueue(ctx, tapEvent("hole-3")) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_PreservesOrderForSingleConsumer(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = q.Close() }()

	for i := 0; i < 50; i++ {
		if !q.Enqueue(ctx, tapEvent(fmt.Sprintf("hole-%d", i))) {
			t.Fatalf("enqueue %d failed", i)
		}
	}

	ch := q.Dequeue(ctx)
	for i := 0; i < 50; i++ {
		e := <-ch
		if want := fmt.Sprintf("hole-%d", i); e.Slot != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, e.Slot)
		}
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() { _ = q.Close() }()
	numGoroutines := 10
	numEvents := 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numEvents; j++ {
				for !q.Enqueue(ctx, tapEvent(fmt.Sprintf("hole-%d-%d", id, j))) {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	seen := make(map[string]bool)
	ch := q.Dequeue(ctx)
	for len(seen) < numGoroutines*numEvents {
		select {
		case e := <-ch:
			seen[e.ID] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d events", len(seen))
		}
	}
	wg.Wait()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, tapEvent("hole-1")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, tapEvent("hole-2")) {
		t.Error("expected enqueue to succeed")
	}

	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}

	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}

	if q.Enqueue(ctx, tapEvent("hole-3")) {
		t.Error("expected enqueue to fail after closing")
	}

	// Events queued before Close are still delivered, then the channel closes.
	var got []string
	timeout := time.After(time.Second)
	eventChan := q.Dequeue(ctx)
	for {
		select {
		case e, ok := <-eventChan:
			if !ok {
				if len(got) != 2 {
					t.Errorf("expected 2 drained events, got %v", got)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			got = append(got, e.Slot)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}

package round

import (
	"sync"
	"time"
)

// Timers tracks the pending callbacks of a collaborator so they can be
// cancelled together. Fired timers are forgotten. Safe for concurrent use.
type Timers struct {
	mu      sync.Mutex
	clock   Clock
	next    uint64
	pending map[uint64]Timer
}

// NewTimers creates an empty set scheduling on c.
func NewTimers(c Clock) *Timers {
	if c == nil {
		c = SystemClock()
	}
	return &Timers{clock: c, pending: make(map[uint64]Timer)}
}

// After runs f once d has elapsed, unless StopAll is called first.
func (t *Timers) After(d time.Duration, f func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.next
	t.next++
	t.pending[id] = t.clock.AfterFunc(d, func() {
		t.mu.Lock()
		_, live := t.pending[id]
		delete(t.pending, id)
		t.mu.Unlock()
		if live {
			f()
		}
	})
}

// StopAll cancels every pending callback.
func (t *Timers) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.pending {
		timer.Stop()
		delete(t.pending, id)
	}
}

// Len reports how many callbacks are still pending.
func (t *Timers) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

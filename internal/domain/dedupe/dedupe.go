// Package dedupe remembers tap ids so a retried HTTP tap is applied at most once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 4096

// Deduper records seen tap IDs to ensure at-most-once delivery to the loop.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so a tap that never reached the mailbox
	// (backpressure) can be retried.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type slot struct {
	id  string
	gen uint64
}

// inMemoryDeduper keeps the ids of the last maxSize recordings in a ring;
// each new id overwrites the oldest. maxSize <= 0 keeps everything.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]uint64 // id -> generation it was recorded with
	ring    []slot
	next    int
	gen     uint64
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	if d.maxSize > 0 {
		d.ring = make([]slot, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.gen++
	d.seen[id] = d.gen

	if d.maxSize > 0 {
		d.evict(d.ring[d.next])
		d.ring[d.next] = slot{id: id, gen: d.gen}
		d.next = (d.next + 1) % d.maxSize
	}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

// evict forgets old unless it was unrecorded or recorded again since.
// Must be called with d.mu held.
func (d *inMemoryDeduper) evict(old slot) {
	if old.id == "" {
		return
	}
	if gen, ok := d.seen[old.id]; ok && gen == old.gen {
		delete(d.seen, old.id)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

package round

import "context"

// barrier is a join over the retractions of one round: it completes on the
// arrival of the last slot it was armed with. Duplicate or unknown arrivals
// do not count.
type barrier struct {
	waiting map[string]struct{}
	then    func(context.Context)
}

func newBarrier(slotIDs []string, then func(context.Context)) *barrier {
	b := &barrier{waiting: make(map[string]struct{}, len(slotIDs)), then: then}
	for _, id := range slotIDs {
		b.waiting[id] = struct{}{}
	}
	return b
}

// arrive marks slotID retracted. counted reports whether the arrival was
// expected; last reports whether it completed the barrier.
func (b *barrier) arrive(slotID string) (counted, last bool) {
	if _, ok := b.waiting[slotID]; !ok {
		return false, false
	}
	delete(b.waiting, slotID)
	return true, len(b.waiting) == 0
}

func (b *barrier) remaining() int { return len(b.waiting) }

// Package pools tracks which targets and slots are eligible for fresh assignment.
//
// A target leaves its pool when drawn and only returns on a full reset; a
// slot leaves when drawn and returns when its card has retracted.
package pools

import (
	"fmt"
	"math/rand"

	model "github.com/okian/whackaword/internal/domain/model"
)

// Catalog is the read side the pools are refilled from.
type Catalog interface {
	Targets() []model.Target
	Slots() []model.Slot
}

// Pools is owned by one goroutine and is not safe for concurrent use.
type Pools struct {
	catalog Catalog
	rng     *rand.Rand
	targets []model.Target
	slots   []model.Slot
	known   map[string]struct{}
}

// New builds full pools from c drawing with rng.
func New(c Catalog, rng *rand.Rand) *Pools {
	p := &Pools{catalog: c, rng: rng, known: make(map[string]struct{})}
	for _, s := range c.Slots() {
		p.known[s.ID] = struct{}{}
	}
	p.Reset()
	return p
}

// Reset refills both pools from the catalog.
func (p *Pools) Reset() {
	p.ResetTargets()
	p.slots = p.catalog.Slots()
}

// ResetTargets returns every target to the pool. Call only when every slot
// has retracted.
func (p *Pools) ResetTargets() {
	p.targets = p.catalog.Targets()
}

// PickTarget removes and returns a uniformly random target for which match
// returns true. A nil match accepts any target. ok is false when nothing matches.
func (p *Pools) PickTarget(match func(model.Target) bool) (model.Target, bool) {
	candidates := make([]int, 0, len(p.targets))
	for i, t := range p.targets {
		if match == nil || match(t) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return model.Target{}, false
	}
	i := candidates[p.rng.Intn(len(candidates))]
	t := p.targets[i]
	last := len(p.targets) - 1
	p.targets[i] = p.targets[last]
	p.targets = p.targets[:last]
	return t, true
}

// PickSlot removes and returns a uniformly random available slot.
func (p *Pools) PickSlot() (model.Slot, bool) {
	if len(p.slots) == 0 {
		return model.Slot{}, false
	}
	i := p.rng.Intn(len(p.slots))
	s := p.slots[i]
	last := len(p.slots) - 1
	p.slots[i] = p.slots[last]
	p.slots = p.slots[:last]
	return s, true
}

// ReleaseSlot makes s available again. Releasing an already available slot is a no-op.
func (p *Pools) ReleaseSlot(s model.Slot) error {
	if _, ok := p.known[s.ID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, s.ID)
	}
	for _, have := range p.slots {
		if have.ID == s.ID {
			return nil
		}
	}
	p.slots = append(p.slots, s)
	return nil
}

// HasTarget reports whether a target named name is still available.
func (p *Pools) HasTarget(name string) bool {
	for _, t := range p.targets {
		if t.Name == name {
			return true
		}
	}
	return false
}

func (p *Pools) AvailableTargets() int { return len(p.targets) }

func (p *Pools) AvailableSlots() int { return len(p.slots) }

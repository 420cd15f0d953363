// Package selection assigns targets to slots for each round.
package selection

import (
	"fmt"
	"math/rand"

	model "github.com/okian/whackaword/internal/domain/model"
)

// Pools is the availability state selection draws from.
type Pools interface {
	PickTarget(match func(model.Target) bool) (model.Target, bool)
	PickSlot() (model.Slot, bool)
	AvailableTargets() int
	AvailableSlots() int
}

// History answers whether a target was already solved.
type History interface {
	Contains(name string) bool
}

// Engine produces assignments and picks the prompted target. It is owned by
// the session loop.
type Engine struct {
	pools   Pools
	history History
	rng     *rand.Rand
	current Assignment
}

// New builds an engine over p and h. rng drives the prompt choice.
func New(p Pools, h History, rng *rand.Rand) *Engine {
	return &Engine{pools: p, history: h, rng: rng}
}

// Current returns the assignment of the round in play.
func (e *Engine) Current() *Assignment {
	return &e.current
}

// Assign fills the current assignment with count target to slot pairs. With
// reuse the previous round's targets are kept and only slots are redrawn.
// It panics when the pools cannot satisfy the request.
func (e *Engine) Assign(count int, reuse bool) *Assignment {
	if count <= 0 {
		panic(fmt.Errorf("%w: slot count %d", ErrContractViolation, count))
	}
	if e.pools.AvailableSlots() < count {
		panic(fmt.Errorf("%w: %d slots requested, %d available", ErrPoolExhausted, count, e.pools.AvailableSlots()))
	}
	if reuse {
		e.reassign(count)
	} else {
		e.fresh(count)
	}
	return &e.current
}

func (e *Engine) fresh(count int) {
	if e.pools.AvailableTargets() < count {
		panic(fmt.Errorf("%w: %d targets requested, %d available", ErrPoolExhausted, count, e.pools.AvailableTargets()))
	}
	e.current.reset()

	unsolved := func(t model.Target) bool { return !e.history.Contains(t.Name) }
	for i := 0; i < count; i++ {
		var (
			t  model.Target
			ok bool
		)
		if i == count-1 && !e.hasUnsolved() {
			t, ok = e.pools.PickTarget(unsolved)
		}
		if !ok {
			t, ok = e.pools.PickTarget(nil)
		}
		if !ok {
			panic(fmt.Errorf("%w: target pool empty", ErrPoolExhausted))
		}
		s, ok := e.pools.PickSlot()
		if !ok {
			panic(fmt.Errorf("%w: slot pool empty", ErrPoolExhausted))
		}
		e.current.entries = append(e.current.entries, Entry{Target: t, Slot: s, Placed: true})
	}
}

func (e *Engine) reassign(count int) {
	if count != e.current.Len() {
		panic(fmt.Errorf("%w: retry of %d targets asked for %d slots", ErrContractViolation, e.current.Len(), count))
	}
	for i := range e.current.entries {
		if e.current.entries[i].Placed {
			panic(fmt.Errorf("%w: retry before slots were cleared", ErrContractViolation))
		}
		s, ok := e.pools.PickSlot()
		if !ok {
			panic(fmt.Errorf("%w: slot pool empty", ErrPoolExhausted))
		}
		e.current.entries[i].Slot = s
		e.current.entries[i].Placed = true
	}
}

func (e *Engine) hasUnsolved() bool {
	for _, en := range e.current.entries {
		if !e.history.Contains(en.Target.Name) {
			return true
		}
	}
	return false
}

// PickPrompt chooses the target the player is asked to find: uniformly among
// assigned targets not yet solved, or among all assigned when every one is.
func (e *Engine) PickPrompt() model.Target {
	if e.current.Len() == 0 {
		panic(fmt.Errorf("%w: prompt requested before assignment", ErrContractViolation))
	}
	var candidates []model.Target
	for _, en := range e.current.entries {
		if !e.history.Contains(en.Target.Name) {
			candidates = append(candidates, en.Target)
		}
	}
	if len(candidates) == 0 {
		candidates = e.current.Targets()
	}
	return candidates[e.rng.Intn(len(candidates))]
}

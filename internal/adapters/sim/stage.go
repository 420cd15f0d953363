// Package sim provides headless collaborators: a timer-driven stage, a
// narration player that simulates clip length, and an autoplay bot.
package sim

import (
	"context"
	"sort"
	"sync"

	model "github.com/okian/whackaword/internal/domain/model"
	round "github.com/okian/whackaword/internal/round"
	"github.com/okian/whackaword/pkg/logger"
)

// Hole is what the simulated stage shows in one slot.
type Hole struct {
	Slot     string `json:"slot"`
	Target   string `json:"target,omitempty"`
	Up       bool   `json:"up"`
	Feedback bool   `json:"feedback"`
	Hiding   bool   `json:"hiding"`
}

// Stage animates presentations with timers and reports completion like a
// real view would. Safe for concurrent use.
type Stage struct {
	mu     sync.Mutex
	base   base
	holes  map[string]Hole
	timers *round.Timers
}

// NewStage creates a simulated stage.
func NewStage(opts ...Option) *Stage {
	b := newBase(opts)
	return &Stage{base: b, holes: make(map[string]Hole), timers: round.NewTimers(b.clock)}
}

// Present pops target up in slot and calls done once it is up.
func (s *Stage) Present(ctx context.Context, p model.Presentation, done func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holes[p.Slot.ID] = Hole{Slot: p.Slot.ID, Target: p.Target.Name}
	s.base.log.Debug(ctx, "pop up", logger.String("slot", p.Slot.ID), logger.String("target", p.Target.Name))
	s.timers.After(s.base.pop, func() {
		s.update(p.Slot.ID, func(h *Hole) {
			// A hole already hiding stays down.
			if !h.Hiding {
				h.Up = true
			}
		})
		done()
	})
}

// Retract hides slot and calls done once it is hidden.
func (s *Stage) Retract(ctx context.Context, slot model.Slot, done func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base.log.Debug(ctx, "retract", logger.String("slot", slot.ID))
	if h, ok := s.holes[slot.ID]; ok {
		h.Hiding = true
		s.holes[slot.ID] = h
	}
	s.timers.After(s.base.retract, func() {
		s.mu.Lock()
		if h, ok := s.holes[slot.ID]; ok && h.Hiding {
			delete(s.holes, slot.ID)
		}
		s.mu.Unlock()
		done()
	})
}

// EmitFeedback marks slot as celebrating.
func (s *Stage) EmitFeedback(_ context.Context, slot model.Slot) {
	s.update(slot.ID, func(h *Hole) { h.Feedback = true })
}

// Holes returns the occupied holes ordered by slot id.
func (s *Stage) Holes() []Hole {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Hole, 0, len(s.holes))
	for _, h := range s.holes {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// Reset cancels pending animations and empties every hole. The stage can
// be used again afterwards.
func (s *Stage) Reset() {
	s.timers.StopAll()
	s.mu.Lock()
	s.holes = make(map[string]Hole)
	s.mu.Unlock()
}

// Pending reports animations still running.
func (s *Stage) Pending() int { return s.timers.Len() }

func (s *Stage) update(slotID string, f func(*Hole)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.holes[slotID]; ok {
		f(&h)
		s.holes[slotID] = h
	}
}

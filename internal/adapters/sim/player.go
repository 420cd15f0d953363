package sim

import (
	"context"
	"sync"

	model "github.com/okian/whackaword/internal/domain/model"
	round "github.com/okian/whackaword/internal/round"
	"github.com/okian/whackaword/pkg/logger"
)

// Player pretends to play narration clips. Each clip lasts a random
// duration within the configured range.
type Player struct {
	mu     sync.Mutex
	base   base
	played []model.Clip
	timers *round.Timers
}

// NewPlayer creates a simulated narration player.
func NewPlayer(opts ...Option) *Player {
	b := newBase(opts)
	return &Player{base: b, timers: round.NewTimers(b.clock)}
}

// Play schedules done after the simulated clip length.
func (p *Player) Play(ctx context.Context, clip model.Clip, done func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d := p.base.between(p.base.clipMin, p.base.clipMax)
	p.base.log.Debug(ctx, "play clip", logger.String("clip", clip.ID), logger.Duration("length", d))
	p.timers.After(d, func() {
		p.mu.Lock()
		p.played = append(p.played, clip)
		p.mu.Unlock()
		done()
	})
}

// Played returns clips that finished, oldest first.
func (p *Player) Played() []model.Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.Clip(nil), p.played...)
}

// Reset cancels clips still playing.
func (p *Player) Reset() { p.timers.StopAll() }

// Pending reports clips still playing.
func (p *Player) Pending() int { return p.timers.Len() }

// Effects counts sound effects instead of playing them.
type Effects struct {
	mu     sync.Mutex
	counts map[model.Effect]int
}

// NewEffects creates a counting effects sink.
func NewEffects() *Effects {
	return &Effects{counts: make(map[model.Effect]int)}
}

// PlayEffect records e.
func (e *Effects) PlayEffect(_ context.Context, effect model.Effect) {
	e.mu.Lock()
	e.counts[effect]++
	e.mu.Unlock()
}

// Count reports how many times effect was played.
func (e *Effects) Count(effect model.Effect) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts[effect]
}

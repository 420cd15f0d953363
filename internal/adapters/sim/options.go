package sim

import (
	"math/rand"
	"time"

	round "github.com/okian/whackaword/internal/round"
	"github.com/okian/whackaword/pkg/logger"
)

// Default simulated timings.
const (
	defaultPopDuration     = 500 * time.Millisecond
	defaultRetractDuration = 500 * time.Millisecond
	defaultClipMin         = 600 * time.Millisecond
	defaultClipMax         = 1200 * time.Millisecond
	defaultRandomSeed      = 42
)

// Option configures the simulated stage and player.
type Option func(*base)

type base struct {
	clock round.Clock
	rng   *rand.Rand
	log   logger.Logger

	pop, retract     time.Duration
	clipMin, clipMax time.Duration
}

func newBase(opts []Option) base {
	b := base{
		clock:   round.SystemClock(),
		rng:     rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible runs
		log:     logger.Nop(),
		pop:     defaultPopDuration,
		retract: defaultRetractDuration,
		clipMin: defaultClipMin,
		clipMax: defaultClipMax,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// WithClock replaces the system clock.
func WithClock(c round.Clock) Option {
	return func(b *base) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithSeed makes jitter reproducible.
func WithSeed(seed int64) Option {
	return func(b *base) {
		b.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation randomness
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.log = l
		}
	}
}

// WithAnimation sets how long cards take to pop up and to hide.
func WithAnimation(pop, retract time.Duration) Option {
	return func(b *base) {
		if pop >= 0 {
			b.pop = pop
		}
		if retract >= 0 {
			b.retract = retract
		}
	}
}

// WithClipLength sets the simulated clip duration range.
func WithClipLength(minLen, maxLen time.Duration) Option {
	return func(b *base) {
		if minLen >= 0 && maxLen >= minLen {
			b.clipMin = minLen
			b.clipMax = maxLen
		}
	}
}

// between returns a duration in [lo, hi].
func (b *base) between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(b.rng.Int63n(int64(hi-lo)+1))
}

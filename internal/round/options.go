package round

import (
	"math/rand"
	"time"

	"github.com/okian/whackaword/pkg/logger"
)

// Default round timings.
const (
	DefaultRoundDeadline = 8 * time.Second
	DefaultFeedbackHold  = time.Second
	DefaultRequired      = 3
)

// Option customizes a Session.
type Option func(*Session)

// WithID sets the session id used in logs and snapshots.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces the system clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRand sets the random source for every draw the session makes.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithEffects attaches a sound effect collaborator.
func WithEffects(e Effects) Option {
	return func(s *Session) {
		s.effects = e
	}
}

// WithTiers sets the simultaneous target count per tier and the successes
// required to complete each tier.
func WithTiers(tierTargets []int, required int) Option {
	return func(s *Session) {
		if len(tierTargets) > 0 {
			s.tierTargets = append([]int(nil), tierTargets...)
		}
		if required > 0 {
			s.required = required
		}
	}
}

// WithRoundDeadline sets how long a round waits for a tap.
func WithRoundDeadline(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.deadline = d
		}
	}
}

// WithFeedbackHold sets how long cards stay up after a correct tap. Zero
// retracts immediately.
func WithFeedbackHold(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.hold = d
		}
	}
}

// WithResetHistoryOnTier clears the solved set on every tier advance.
func WithResetHistoryOnTier(reset bool) Option {
	return func(s *Session) {
		s.resetHistoryOnTier = reset
	}
}

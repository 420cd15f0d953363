package audio

import (
	"time"

	"github.com/okian/whackaword/pkg/logger"
)

// Default mixing and timing.
const (
	DefaultMusicVolume         = 0.3
	DefaultDuckedMusicVolume   = 0.1
	DefaultFirstNarrationDelay = 2000 * time.Millisecond
	DefaultNarrationDelay      = 800 * time.Millisecond
)

// Option configures an Engine.
type Option func(*Engine)

// WithAssetsDir makes the engine look for <id>.wav clips and music.wav in dir.
func WithAssetsDir(dir string) Option {
	return func(e *Engine) {
		e.assets = dir
	}
}

// WithLeadIn sets the silence before the first narration clip and before
// every later one.
func WithLeadIn(first, later time.Duration) Option {
	return func(e *Engine) {
		if first >= 0 {
			e.firstDelay = first
		}
		if later >= 0 {
			e.delay = later
		}
	}
}

// WithMusicVolume sets the background level and the level it drops to
// while a prompt plays. Both are linear gains in [0,1].
func WithMusicVolume(level, ducked float64) Option {
	return func(e *Engine) {
		if level >= 0 && level <= 1 {
			e.musicLevel = level
		}
		if ducked >= 0 && ducked <= 1 {
			e.duckedLevel = ducked
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

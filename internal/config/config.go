// Package config defines game configuration and its loading.
//
// Conventions:
// - New() returns defaults; Load(ctx) layers a YAML file and env vars on top.
// - Durations are configured in milliseconds and exposed as time.Duration.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// TargetConfig describes one vocabulary card.
type TargetConfig struct {
	Name   string `koanf:"name"`
	Prompt string `koanf:"prompt"`
	Image  string `koanf:"image"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile receives logs when the terminal owns stdout.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the event mailbox feeding the game loop.
	QueueSize int `koanf:"queue_size"`

	// TapDedupeSize is how many HTTP tap ids are remembered.
	TapDedupeSize int `koanf:"tap_dedupe_size"`

	RoundDeadlineMS    int   `koanf:"round_deadline_ms"`
	FeedbackHoldMS     int   `koanf:"feedback_hold_ms"`
	RequiredSuccesses  int   `koanf:"required_successes"`
	TierTargets        []int `koanf:"tier_targets"`
	ResetHistoryOnTier bool  `koanf:"reset_history_on_tier"`

	// Narration lead-in before the first and every later clip.
	FirstNarrationDelayMS int `koanf:"first_narration_delay_ms"`
	NarrationDelayMS      int `koanf:"narration_delay_ms"`

	// Card animation durations for the terminal and simulated stages.
	PopDurationMS     int `koanf:"pop_duration_ms"`
	RetractDurationMS int `koanf:"retract_duration_ms"`

	MusicVolume       float64 `koanf:"music_volume"`
	DuckedMusicVolume float64 `koanf:"ducked_music_volume"`

	// AssetsDir holds <clip>.wav files; missing clips are synthesized.
	AssetsDir string `koanf:"assets_dir"`

	// Seed fixes the random source; 0 seeds from the clock.
	Seed int64 `koanf:"seed"`

	AutoplayAccuracy   float64 `koanf:"autoplay_accuracy"`
	AutoplayReactionMS int     `koanf:"autoplay_reaction_ms"`

	// Targets overrides the built-in catalog when non-empty.
	Targets []TargetConfig `koanf:"targets"`

	// Slots lists the hole ids.
	Slots []string `koanf:"slots"`
}

// New creates a Config with defaults matching the reference game.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFile:               "whackaword.log",
		Addr:                  ":9080",
		QueueSize:             1024,
		TapDedupeSize:         4096,
		RoundDeadlineMS:       8000,
		FeedbackHoldMS:        1000,
		RequiredSuccesses:     3,
		TierTargets:           []int{1, 2, 3},
		ResetHistoryOnTier:    false,
		FirstNarrationDelayMS: 2000,
		NarrationDelayMS:      800,
		PopDurationMS:         500,
		RetractDurationMS:     500,
		MusicVolume:           0.3,
		DuckedMusicVolume:     0.1,
		AutoplayAccuracy:      0.7,
		AutoplayReactionMS:    1500,
		Slots:                 []string{"hole-1", "hole-2", "hole-3", "hole-4", "hole-5"},
	}
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.RoundDeadlineMS <= 0:
		return fmt.Errorf("%w: round_deadline_ms must be positive", ErrInvalidConfig)
	case c.FeedbackHoldMS < 0:
		return fmt.Errorf("%w: feedback_hold_ms must not be negative", ErrInvalidConfig)
	case c.RequiredSuccesses <= 0:
		return fmt.Errorf("%w: required_successes must be positive", ErrInvalidConfig)
	case len(c.TierTargets) == 0:
		return fmt.Errorf("%w: tier_targets must not be empty", ErrInvalidConfig)
	case len(c.Slots) == 0:
		return fmt.Errorf("%w: slots must not be empty", ErrInvalidConfig)
	case !unit(c.MusicVolume) || !unit(c.DuckedMusicVolume):
		return fmt.Errorf("%w: volumes must be within [0,1]", ErrInvalidConfig)
	case !unit(c.AutoplayAccuracy):
		return fmt.Errorf("%w: autoplay_accuracy must be within [0,1]", ErrInvalidConfig)
	case c.FirstNarrationDelayMS < 0 || c.NarrationDelayMS < 0 || c.PopDurationMS < 0 || c.RetractDurationMS < 0:
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	}

	for i, n := range c.TierTargets {
		if n <= 0 {
			return fmt.Errorf("%w: tier %d presents %d targets", ErrInvalidConfig, i+1, n)
		}
		if n > len(c.Slots) {
			return fmt.Errorf("%w: tier %d presents %d targets but only %d slots exist", ErrInvalidConfig, i+1, n, len(c.Slots))
		}
		if len(c.Targets) > 0 && n > len(c.Targets) {
			return fmt.Errorf("%w: tier %d presents %d targets but only %d are configured", ErrInvalidConfig, i+1, n, len(c.Targets))
		}
	}
	return nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

func (c *Config) RoundDeadline() time.Duration { return ms(c.RoundDeadlineMS) }

func (c *Config) FeedbackHold() time.Duration { return ms(c.FeedbackHoldMS) }

func (c *Config) FirstNarrationDelay() time.Duration { return ms(c.FirstNarrationDelayMS) }

func (c *Config) NarrationDelay() time.Duration { return ms(c.NarrationDelayMS) }

func (c *Config) PopDuration() time.Duration { return ms(c.PopDurationMS) }

func (c *Config) RetractDuration() time.Duration { return ms(c.RetractDurationMS) }

func (c *Config) AutoplayReaction() time.Duration { return ms(c.AutoplayReactionMS) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

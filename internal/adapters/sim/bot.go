package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	round "github.com/okian/whackaword/internal/round"
	"github.com/okian/whackaword/pkg/logger"
)

// Bot defaults.
const (
	DefaultAccuracy     = 0.7
	DefaultReaction     = 1500 * time.Millisecond
	defaultPollInterval = 50 * time.Millisecond
)

// Tapper delivers a tap to a running session.
type Tapper interface {
	Tap(ctx context.Context, slotID string, token uint64) error
}

// SnapshotFunc reads the current session state.
type SnapshotFunc func(ctx context.Context) (round.Snapshot, error)

// BotStats summarizes what the bot did.
type BotStats struct {
	Rounds  int `json:"rounds"`
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// BotOption configures a Bot.
type BotOption func(*Bot)

// WithAccuracy sets the chance of tapping the prompted target.
func WithAccuracy(p float64) BotOption {
	return func(b *Bot) {
		if p >= 0 && p <= 1 {
			b.accuracy = p
		}
	}
}

// WithReaction sets how long the bot waits after every card is up.
func WithReaction(d time.Duration) BotOption {
	return func(b *Bot) {
		if d >= 0 {
			b.reaction = d
		}
	}
}

// WithPollInterval sets how often the bot reads the snapshot.
func WithPollInterval(d time.Duration) BotOption {
	return func(b *Bot) {
		if d > 0 {
			b.poll = d
		}
	}
}

// WithBotSeed makes the bot's choices reproducible.
func WithBotSeed(seed int64) BotOption {
	return func(b *Bot) {
		b.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation randomness
	}
}

// WithBotLogger sets the logger.
func WithBotLogger(l logger.Logger) BotOption {
	return func(b *Bot) {
		if l != nil {
			b.log = l
		}
	}
}

// Bot plays a session by reading snapshots and tapping. With probability
// accuracy it taps the prompted target; otherwise it either taps another
// slot or lets the deadline pass.
type Bot struct {
	snapshot SnapshotFunc
	tapper   Tapper
	slots    []string
	accuracy float64
	reaction time.Duration
	poll     time.Duration
	rng      *rand.Rand
	log      logger.Logger
}

// NewBot creates a bot that can tap any of slots.
func NewBot(snapshot SnapshotFunc, tapper Tapper, slots []string, opts ...BotOption) (*Bot, error) {
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}
	b := &Bot{
		snapshot: snapshot,
		tapper:   tapper,
		slots:    append([]string(nil), slots...),
		accuracy: DefaultAccuracy,
		reaction: DefaultReaction,
		poll:     defaultPollInterval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // simulation randomness
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Run plays until the session is won or ctx is done.
func (b *Bot) Run(ctx context.Context) (BotStats, error) {
	var (
		stats   BotStats
		handled uint64
		seen    uint64
		due     time.Time
	)
	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case now := <-ticker.C:
			snap, err := b.snapshot(ctx)
			if err != nil {
				return stats, fmt.Errorf("read snapshot: %w", err)
			}
			if snap.Won {
				b.log.Info(ctx, "session won", logger.Int("rounds", stats.Rounds))
				return stats, nil
			}
			if snap.Token == handled || !ready(snap) {
				continue
			}
			if snap.Token != seen {
				seen = snap.Token
				due = now.Add(b.reaction)
			}
			if now.Before(due) {
				continue
			}
			handled = snap.Token
			stats.Rounds++
			b.act(ctx, snap, &stats)
		}
	}
}

func (b *Bot) act(ctx context.Context, snap round.Snapshot, stats *BotStats) {
	correct, _ := snap.CorrectSlot()
	roll := b.rng.Float64()
	var slot string
	switch {
	case roll < b.accuracy:
		slot = correct
		stats.Correct++
	case roll < b.accuracy+(1-b.accuracy)/2:
		slot = b.other(correct)
		stats.Wrong++
	default:
		stats.Skipped++
		b.log.Debug(ctx, "letting the round time out", logger.Uint64("token", snap.Token))
		return
	}
	if err := b.tapper.Tap(ctx, slot, snap.Token); err != nil {
		stats.Failed++
		b.log.Warn(ctx, "tap failed", logger.String("slot", slot), logger.Error(err))
		return
	}
	b.log.Debug(ctx, "tapped", logger.String("slot", slot), logger.Uint64("token", snap.Token))
}

// other picks any slot but correct; it may be empty.
func (b *Bot) other(correct string) string {
	if len(b.slots) == 1 {
		return b.slots[0]
	}
	for {
		s := b.slots[b.rng.Intn(len(b.slots))]
		if s != correct {
			return s
		}
	}
}

func ready(s round.Snapshot) bool {
	if s.Phase != "presenting" || len(s.Presented) == 0 {
		return false
	}
	for _, v := range s.Presented {
		if !v.Ready {
			return false
		}
	}
	return true
}

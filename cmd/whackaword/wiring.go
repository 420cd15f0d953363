package main

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/okian/whackaword/internal/adapters/audio"
	"github.com/okian/whackaword/internal/adapters/sim"
	"github.com/okian/whackaword/internal/config"
	"github.com/okian/whackaword/internal/domain/catalog"
	model "github.com/okian/whackaword/internal/domain/model"
	"github.com/okian/whackaword/internal/narration"
	round "github.com/okian/whackaword/internal/round"
	"github.com/okian/whackaword/pkg/logger"
)

// buildCatalog turns configured targets and slots into a catalog. With no
// targets configured the built-in foods are used.
func buildCatalog(c *config.Config) (*catalog.Catalog, error) {
	slots := make([]model.Slot, 0, len(c.Slots))
	for _, id := range c.Slots {
		slots = append(slots, model.Slot{ID: id})
	}

	targets := catalog.Default().Targets()
	if len(c.Targets) > 0 {
		targets = make([]model.Target, 0, len(c.Targets))
		for _, t := range c.Targets {
			targets = append(targets, model.Target{
				Name:   t.Name,
				Prompt: model.Clip{ID: t.Prompt, Kind: model.ClipPrompt},
				Image:  t.Image,
			})
		}
	}
	return catalog.New(targets, slots)
}

// sessionOptions maps game settings onto the round engine.
func sessionOptions(c *config.Config) []round.Option {
	opts := []round.Option{
		round.WithTiers(c.TierTargets, c.RequiredSuccesses),
		round.WithRoundDeadline(c.RoundDeadline()),
		round.WithFeedbackHold(c.FeedbackHold()),
		round.WithResetHistoryOnTier(c.ResetHistoryOnTier),
	}
	if c.Seed != 0 {
		opts = append(opts, round.WithRand(rand.New(rand.NewSource(c.Seed)))) //nolint:gosec // game randomness
	}
	return opts
}

// simOptions configures simulated collaborators from the same settings.
func simOptions(c *config.Config, l logger.Logger) []sim.Option {
	opts := []sim.Option{
		sim.WithAnimation(c.PopDuration(), c.RetractDuration()),
		sim.WithLogger(l),
	}
	if c.Seed != 0 {
		opts = append(opts, sim.WithSeed(c.Seed))
	}
	return opts
}

// sound is the narration player and effects sink for a session.
type sound struct {
	player  narration.Player
	effects round.Effects
}

// newSound opens the speaker. When there is no audio device the game
// carries on with simulated, silent narration.
func newSound(ctx context.Context, c *config.Config, l logger.Logger) sound {
	out, err := audio.SpeakerOutput()
	if err == nil {
		var eng *audio.Engine
		eng, err = audio.New(out,
			audio.WithAssetsDir(c.AssetsDir),
			audio.WithLeadIn(c.FirstNarrationDelay(), c.NarrationDelay()),
			audio.WithMusicVolume(c.MusicVolume, c.DuckedMusicVolume),
			audio.WithLogger(l.Named("audio")),
		)
		if err == nil {
			if cat, cerr := buildCatalog(c); cerr == nil {
				if perr := eng.Preload(cat.Clips()); perr != nil {
					l.Warn(ctx, "some clips could not be loaded", logger.Error(perr))
				}
			}
			if merr := eng.StartMusic(ctx); merr != nil {
				l.Warn(ctx, "background music unavailable", logger.Error(merr))
			}
			return sound{player: eng, effects: eng}
		}
	}
	l.Warn(ctx, "audio unavailable; narration is silent", logger.Error(err))
	return silentSound(c, l)
}

// Close releases the audio output, if any. Sessions only reset it.
func (s sound) Close() error {
	if c, ok := s.player.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func silentSound(c *config.Config, l logger.Logger) sound {
	lead := c.NarrationDelay()
	opts := append(simOptions(c, l), sim.WithClipLength(lead+600*time.Millisecond, lead+1200*time.Millisecond))
	return sound{player: sim.NewPlayer(opts...), effects: sim.NewEffects()}
}

func slotIDs(cat *catalog.Catalog) []string {
	ids := make([]string, 0, cat.SlotCount())
	for _, s := range cat.Slots() {
		ids = append(ids, s.ID)
	}
	return ids
}

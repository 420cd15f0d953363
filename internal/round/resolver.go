package round

import (
	"context"

	model "github.com/okian/whackaword/internal/domain/model"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/okian/whackaword/pkg/metrics"
)

// onTap resolves the current round with the first qualifying tap. Taps with
// another round's token, outside Presenting, or on an empty slot are no-ops.
func (s *Session) onTap(ctx context.Context, slotID string, token model.RoundToken) {
	if token != s.token || s.phase != PhasePresenting || s.resolved {
		metrics.RecordTap("stale")
		s.stale(ctx, model.EventTap, token)
		return
	}
	target, ok := s.selector.Current().TargetAt(slotID)
	if !ok {
		metrics.RecordTap("empty")
		s.log.Debug(ctx, "tap on empty slot", logger.String("slot", slotID), logger.Uint64("token", uint64(token)))
		return
	}

	s.resolved = true
	s.stopDeadline()
	metrics.RecordRoundResolution(float64(s.clock.Now().Sub(s.presentedAt).Milliseconds()))

	if target.Name == s.correct.Name {
		s.onCorrect(ctx, slotID)
		return
	}
	s.onIncorrect(ctx, slotID, target)
}

func (s *Session) onCorrect(ctx context.Context, slotID string) {
	metrics.RecordTap("correct")
	s.phase = PhaseResolved
	s.progress.RecordSuccess()
	s.history.Record(s.correct.Name)

	if slot, err := s.catalog.Slot(slotID); err == nil {
		s.stage.EmitFeedback(ctx, slot)
	}
	s.effect(ctx, model.EffectTick)
	s.narration.Enqueue(ctx, s.catalog.FeedbackClip(), nil)

	s.log.Info(ctx, "correct tap",
		logger.Uint64("token", uint64(s.token)),
		logger.String("target", s.correct.Name),
		logger.Int("tier", s.progress.Tier()),
		logger.Int("successes", s.progress.Successes()),
	)

	if s.progress.HasWon() {
		metrics.UpdateProgress(s.progress.Tier(), s.progress.Successes())
		// Cards stay up until every queued clip, the win clip last, has played.
		s.narration.Enqueue(ctx, s.catalog.WinClip(), func() {
			s.retract(ctx, s.finish)
		})
		return
	}

	if s.progress.AdvanceIfEligible() {
		metrics.RecordTierAdvance()
		if s.resetHistoryOnTier {
			s.history.Reset()
		}
		s.log.Info(ctx, "tier advanced",
			logger.Int("tier", s.progress.Tier()),
			logger.Int("targets", s.progress.TargetCount()),
			logger.Bool("history_reset", s.resetHistoryOnTier),
		)
	}
	metrics.UpdateProgress(s.progress.Tier(), s.progress.Successes())

	if s.hold <= 0 {
		s.retract(ctx, s.freshRound)
		return
	}
	token := s.token
	s.holdT = s.clock.AfterFunc(s.hold, func() {
		s.post(model.NewEvent(model.EventHoldElapsed, token))
	})
}

// onIncorrect pre-empts the deadline and retries with the same targets.
func (s *Session) onIncorrect(ctx context.Context, slotID string, tapped model.Target) {
	metrics.RecordTap("incorrect")
	s.phase = PhaseResolved
	s.log.Info(ctx, "incorrect tap",
		logger.Uint64("token", uint64(s.token)),
		logger.String("slot", slotID),
		logger.String("tapped", tapped.Name),
		logger.String("prompt", s.correct.Name),
	)
	s.retract(ctx, s.retryRound)
}

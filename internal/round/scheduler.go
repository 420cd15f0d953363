package round

import (
	"context"

	model "github.com/okian/whackaword/internal/domain/model"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/okian/whackaword/pkg/metrics"
)

// startRound draws an assignment sized to the current tier, presents it,
// narrates the prompt and arms the deadline under a new token. With reuse the
// previous targets and prompt are kept and only slots are redrawn.
func (s *Session) startRound(ctx context.Context, reuse bool) {
	a := s.selector.Assign(s.progress.TargetCount(), reuse)
	if !reuse {
		s.correct = s.selector.PickPrompt()
	}

	s.token++
	token := s.token
	s.phase = PhasePresenting
	s.resolved = false
	s.retry = reuse
	s.presentedAt = s.clock.Now()
	clear(s.ready)

	for _, en := range a.Entries() {
		slotID := en.Slot.ID
		s.stage.Present(ctx, model.Presentation{Token: token, Slot: en.Slot, Target: en.Target}, func() {
			s.postSlot(model.EventPresented, token, slotID)
		})
	}
	s.effect(ctx, model.EffectPopUp)
	s.narration.Enqueue(ctx, s.correct.Prompt, nil)
	s.deadlineT = s.clock.AfterFunc(s.deadline, func() {
		s.post(model.NewEvent(model.EventDeadline, token))
	})

	kind := "fresh"
	if reuse {
		kind = "retry"
	}
	metrics.RecordRoundStarted(kind)
	s.log.Info(ctx, "round started",
		logger.Uint64("token", uint64(token)),
		logger.String("kind", kind),
		logger.String("prompt", s.correct.Name),
		logger.Int("tier", s.progress.Tier()),
		logger.Int("targets", a.Len()),
	)
}

func (s *Session) onPresented(ctx context.Context, slotID string, token model.RoundToken) {
	if token != s.token {
		s.stale(ctx, model.EventPresented, token)
		return
	}
	s.ready[slotID] = true
}

// onDeadline forces a miss unless the round was already resolved.
func (s *Session) onDeadline(ctx context.Context, token model.RoundToken) {
	if token != s.token || s.resolved {
		s.stale(ctx, model.EventDeadline, token)
		return
	}
	s.resolved = true
	s.phase = PhaseTimedOut
	s.deadlineT = nil
	metrics.RecordRoundTimeout()
	metrics.RecordRoundResolution(float64(s.clock.Now().Sub(s.presentedAt).Milliseconds()))
	s.log.Info(ctx, "round timed out", logger.Uint64("token", uint64(token)), logger.String("prompt", s.correct.Name))
	s.retract(ctx, s.retryRound)
}

func (s *Session) onHoldElapsed(ctx context.Context, token model.RoundToken) {
	if token != s.token || s.phase != PhaseResolved || s.holdT == nil {
		s.stale(ctx, model.EventHoldElapsed, token)
		return
	}
	s.holdT = nil
	s.retract(ctx, s.freshRound)
}

// retract hides every occupied slot and runs next once all of them reported
// back. Targets stay in the assignment; their slots are cleared.
func (s *Session) retract(ctx context.Context, next func(context.Context)) {
	slots := s.selector.Current().ClearSlots()
	ids := make([]string, 0, len(slots))
	for _, sl := range slots {
		ids = append(ids, sl.ID)
	}
	s.phase = PhaseRetracting
	s.barrier = newBarrier(ids, next)

	token := s.token
	for _, sl := range slots {
		slotID := sl.ID
		s.stage.Retract(ctx, sl, func() {
			s.postSlot(model.EventRetracted, token, slotID)
		})
	}
	s.effect(ctx, model.EffectHide)
	s.log.Debug(ctx, "retracting", logger.Uint64("token", uint64(token)), logger.Int("slots", len(ids)))

	if len(ids) == 0 {
		s.completeRetraction(ctx)
	}
}

func (s *Session) onRetracted(ctx context.Context, slotID string, token model.RoundToken) {
	if token != s.token || s.barrier == nil {
		s.stale(ctx, model.EventRetracted, token)
		return
	}
	counted, last := s.barrier.arrive(slotID)
	if !counted {
		s.stale(ctx, model.EventRetracted, token)
		return
	}
	slot, err := s.catalog.Slot(slotID)
	if err == nil {
		err = s.pools.ReleaseSlot(slot)
	}
	if err != nil {
		metrics.RecordErrorByComponent("round", "release_slot")
		s.log.Error(ctx, "releasing slot", logger.Error(err), logger.String("slot", slotID))
	}
	delete(s.ready, slotID)
	s.log.Debug(ctx, "slot retracted", logger.String("slot", slotID), logger.Int("remaining", s.barrier.remaining()))
	if last {
		s.completeRetraction(ctx)
	}
}

func (s *Session) completeRetraction(ctx context.Context) {
	b := s.barrier
	s.barrier = nil
	s.phase = PhaseIdle
	b.then(ctx)
}

// retryRound re-presents the same targets after a miss or timeout.
func (s *Session) retryRound(ctx context.Context) {
	s.startRound(ctx, true)
}

// freshRound returns every target to the pool and draws a new round.
func (s *Session) freshRound(ctx context.Context) {
	s.pools.ResetTargets()
	s.startRound(ctx, false)
}

// finish ends a won session once the win narration drained and every card
// retracted.
func (s *Session) finish(ctx context.Context) {
	s.phase = PhaseWon
	metrics.RecordSessionWon()
	s.log.Info(ctx, "session won", logger.String("session", s.id), logger.Int("solved", s.history.Len()))
	close(s.done)
}

func (s *Session) stopDeadline() {
	if s.deadlineT != nil {
		s.deadlineT.Stop()
		s.deadlineT = nil
	}
}

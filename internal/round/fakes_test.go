package round_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	catalog "github.com/okian/whackaword/internal/domain/catalog"
	model "github.com/okian/whackaword/internal/domain/model"
	round "github.com/okian/whackaword/internal/round"
)

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	now    time.Time
	timers []*fakeTimer
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) round.Timer {
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			t.f()
		}
	}
}

type pendingDone struct {
	slot string
	done func()
}

type fakeStage struct {
	presented []model.Presentation
	retracted []string
	feedback  []string
	presents  []pendingDone
	retracts  []pendingDone
}

func (s *fakeStage) Present(_ context.Context, p model.Presentation, done func()) {
	s.presented = append(s.presented, p)
	s.presents = append(s.presents, pendingDone{slot: p.Slot.ID, done: done})
}

func (s *fakeStage) Retract(_ context.Context, slot model.Slot, done func()) {
	s.retracted = append(s.retracted, slot.ID)
	s.retracts = append(s.retracts, pendingDone{slot: slot.ID, done: done})
}

func (s *fakeStage) EmitFeedback(_ context.Context, slot model.Slot) {
	s.feedback = append(s.feedback, slot.ID)
}

type fakePlayer struct {
	played []model.Clip
	dones  []func()
}

func (p *fakePlayer) Play(_ context.Context, clip model.Clip, done func()) {
	p.played = append(p.played, clip)
	p.dones = append(p.dones, done)
}

func (p *fakePlayer) playedIDs() []string {
	out := make([]string, 0, len(p.played))
	for _, c := range p.played {
		out = append(out, c.ID)
	}
	return out
}

type fakeEffects struct {
	played []model.Effect
}

func (f *fakeEffects) PlayEffect(_ context.Context, e model.Effect) {
	f.played = append(f.played, e)
}

type mailbox struct {
	events []model.Event
}

func (m *mailbox) Enqueue(_ context.Context, e model.Event) bool {
	m.events = append(m.events, e)
	return true
}

// harness drives a session deterministically from the test goroutine.
type harness struct {
	ctx     context.Context
	s       *round.Session
	clock   *fakeClock
	stage   *fakeStage
	player  *fakePlayer
	effects *fakeEffects
	box     *mailbox
}

func newHarness(t *testing.T, seed int64, opts ...round.Option) *harness {
	t.Helper()
	h := &harness{
		ctx:     context.Background(),
		clock:   &fakeClock{now: time.Unix(1_700_000_000, 0)},
		stage:   &fakeStage{},
		player:  &fakePlayer{},
		effects: &fakeEffects{},
		box:     &mailbox{},
	}
	base := []round.Option{
		round.WithClock(h.clock),
		round.WithRand(rand.New(rand.NewSource(seed))),
		round.WithEffects(h.effects),
	}
	s, err := round.New(catalog.Default(), h.stage, h.player, h.box, append(base, opts...)...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	h.s = s
	return h
}

// drain hands every queued event to the session in order.
func (h *harness) drain() {
	for len(h.box.events) > 0 {
		e := h.box.events[0]
		h.box.events = h.box.events[1:]
		h.s.HandleEvent(h.ctx, e)
	}
}

func (h *harness) start() {
	h.box.Enqueue(h.ctx, model.NewEvent(model.EventStart, 0))
	h.drain()
}

// popUp completes every pending presentation.
func (h *harness) popUp() {
	pending := h.stage.presents
	h.stage.presents = nil
	for _, p := range pending {
		p.done()
	}
	h.drain()
}

// retractSome completes the first n pending retractions.
func (h *harness) retractSome(n int) {
	pending := h.stage.retracts[:n]
	h.stage.retracts = h.stage.retracts[n:]
	for _, p := range pending {
		p.done()
	}
	h.drain()
}

func (h *harness) retractAll() {
	h.retractSome(len(h.stage.retracts))
}

// finishClip completes the clip currently playing.
func (h *harness) finishClip() {
	d := h.player.dones[0]
	h.player.dones = h.player.dones[1:]
	d()
	h.drain()
}

func (h *harness) finishAllAudio() {
	for len(h.player.dones) > 0 {
		h.finishClip()
	}
}

func (h *harness) tap(slot string) {
	h.box.Enqueue(h.ctx, model.TapEvent(slot, model.RoundToken(h.s.Snapshot().Token)))
	h.drain()
}

func (h *harness) correctSlot() string {
	slot, ok := h.s.Snapshot().CorrectSlot()
	if !ok {
		panic("no correct slot presented")
	}
	return slot
}

func (h *harness) wrongSlot() (string, bool) {
	snap := h.s.Snapshot()
	for _, v := range snap.Presented {
		if v.Target != snap.Prompt {
			return v.Slot, true
		}
	}
	return "", false
}

func (h *harness) emptySlot() string {
	taken := map[string]bool{}
	for _, v := range h.s.Snapshot().Presented {
		taken[v.Slot] = true
	}
	for _, sl := range catalog.Default().Slots() {
		if !taken[sl.ID] {
			return sl.ID
		}
	}
	panic("every slot occupied")
}

// solveRound taps the prompted card and lets the hold and retraction finish.
func (h *harness) solveRound() {
	h.tap(h.correctSlot())
	h.clock.Advance(round.DefaultFeedbackHold)
	h.drain()
	h.retractAll()
}

func presentedTargets(s round.Snapshot) []string {
	out := make([]string, 0, len(s.Presented))
	for _, v := range s.Presented {
		out = append(out, v.Target)
	}
	return out
}

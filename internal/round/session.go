// Package round runs the game: it schedules timed presentations, resolves
// taps and sequences narration for one session.
//
// Every input reaches the session as a model.Event through HandleEvent, which
// must be called from a single goroutine. Collaborators never call back into
// the session directly; their completions are posted to the Mailbox.
package round

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	catalog "github.com/okian/whackaword/internal/domain/catalog"
	history "github.com/okian/whackaword/internal/domain/history"
	model "github.com/okian/whackaword/internal/domain/model"
	pools "github.com/okian/whackaword/internal/domain/pools"
	progress "github.com/okian/whackaword/internal/domain/progress"
	selection "github.com/okian/whackaword/internal/domain/selection"
	narration "github.com/okian/whackaword/internal/narration"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/okian/whackaword/pkg/metrics"
)

// Stage is the presentation collaborator. Calls are fire-and-forget; done is
// called once the visual reaches its terminal state.
type Stage interface {
	Present(ctx context.Context, p model.Presentation, done func())
	Retract(ctx context.Context, slot model.Slot, done func())
	EmitFeedback(ctx context.Context, slot model.Slot)
}

// Effects plays incidental sounds that may overlap narration.
type Effects interface {
	PlayEffect(ctx context.Context, e model.Effect)
}

// Mailbox accepts events for the loop that owns the session.
type Mailbox interface {
	Enqueue(ctx context.Context, e model.Event) bool
}

// Session owns all mutable game state.
type Session struct {
	id  string
	log logger.Logger
	rng *rand.Rand

	catalog   *catalog.Catalog
	pools     *pools.Pools
	history   *history.CorrectHistory
	selector  *selection.Engine
	progress  *progress.Tracker
	narration *narration.Queue

	stage   Stage
	effects Effects
	clock   Clock
	mailbox Mailbox

	tierTargets        []int
	required           int
	deadline           time.Duration
	hold               time.Duration
	resetHistoryOnTier bool

	started     bool
	phase       Phase
	token       model.RoundToken
	resolved    bool
	retry       bool
	correct     model.Target
	presentedAt time.Time
	ready       map[string]bool
	deadlineT   Timer
	holdT       Timer
	barrier     *barrier

	snapshot atomic.Pointer[Snapshot]
	done     chan struct{}
}

// New builds a session over cat. player performs narration playback and
// mailbox receives every completion and timer event.
func New(cat *catalog.Catalog, stage Stage, player narration.Player, mailbox Mailbox, opts ...Option) (*Session, error) {
	if cat == nil || stage == nil || player == nil || mailbox == nil {
		return nil, fmt.Errorf("%w: catalog, stage, player and mailbox are required", ErrInvalidSession)
	}
	s := &Session{
		id:          uuid.NewString(),
		log:         logger.Nop(),
		clock:       SystemClock(),
		catalog:     cat,
		stage:       stage,
		mailbox:     mailbox,
		tierTargets: []int{1, 2, 3},
		required:    DefaultRequired,
		deadline:    DefaultRoundDeadline,
		hold:        DefaultFeedbackHold,
		ready:       make(map[string]bool),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // game randomness
	}

	tracker, err := progress.New(s.tierTargets, s.required)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if n := tracker.MaxTargetCount(); n > cat.SlotCount() || n > cat.TargetCount() {
		return nil, fmt.Errorf("%w: a tier presents %d targets but the catalog has %d targets and %d slots",
			ErrInvalidSession, n, cat.TargetCount(), cat.SlotCount())
	}

	s.progress = tracker
	s.pools = pools.New(cat, s.rng)
	s.history = history.New()
	s.selector = selection.New(s.pools, s.history, s.rng)
	s.narration = narration.New(player, s.narrationFinished, narration.WithLogger(s.log.Named("narration")))
	s.publish()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Done is closed once the session is won and every card has retracted.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot returns the state published after the last handled event. Safe
// for concurrent use.
func (s *Session) Snapshot() Snapshot { return *s.snapshot.Load() }

// HandleEvent applies one event. It must only be called from the loop goroutine.
func (s *Session) HandleEvent(ctx context.Context, e model.Event) {
	switch e.Kind {
	case model.EventStart:
		s.startSession(ctx)
	case model.EventTap:
		s.onTap(ctx, e.Slot, e.Token)
	case model.EventDeadline:
		s.onDeadline(ctx, e.Token)
	case model.EventHoldElapsed:
		s.onHoldElapsed(ctx, e.Token)
	case model.EventPresented:
		s.onPresented(ctx, e.Slot, e.Token)
	case model.EventRetracted:
		s.onRetracted(ctx, e.Slot, e.Token)
	case model.EventAudioFinished:
		s.narration.Finished(ctx, e.Seq)
	default:
		s.log.Warn(ctx, "unknown event kind", logger.String("event_id", e.ID), logger.Int("kind", int(e.Kind)))
	}
	s.publish()
}

// startSession resets progress, pools and history and begins the first round.
// It is ignored once a session has started.
func (s *Session) startSession(ctx context.Context) {
	if s.started {
		s.log.Warn(ctx, "session already started", logger.String("session", s.id))
		return
	}
	s.started = true
	s.progress.Reset()
	s.pools.Reset()
	s.history.Reset()
	metrics.UpdateProgress(s.progress.Tier(), s.progress.Successes())
	s.log.Info(ctx, "session started",
		logger.String("session", s.id),
		logger.Int("tiers", s.progress.Tiers()),
		logger.Int("required", s.progress.Required()),
	)
	s.startRound(ctx, false)
}

// post hands an event to the mailbox from a collaborator or timer goroutine.
func (s *Session) post(e model.Event) {
	if !s.mailbox.Enqueue(context.Background(), e) {
		s.log.Error(context.Background(), "event dropped",
			logger.Error(ErrMailboxFull),
			logger.String("kind", e.Kind.String()),
			logger.Uint64("token", uint64(e.Token)),
		)
	}
}

func (s *Session) postSlot(kind model.EventKind, token model.RoundToken, slotID string) {
	e := model.NewEvent(kind, token)
	e.Slot = slotID
	s.post(e)
}

func (s *Session) narrationFinished(seq uint64) {
	e := model.NewEvent(model.EventAudioFinished, 0)
	e.Seq = seq
	s.post(e)
}

func (s *Session) effect(ctx context.Context, e model.Effect) {
	if s.effects != nil {
		s.effects.PlayEffect(ctx, e)
	}
}

func (s *Session) stale(ctx context.Context, kind model.EventKind, token model.RoundToken) {
	metrics.RecordStaleEvent(kind.String())
	s.log.Debug(ctx, "stale event ignored",
		logger.String("kind", kind.String()),
		logger.Uint64("token", uint64(token)),
		logger.Uint64("current", uint64(s.token)),
		logger.String("phase", s.phase.String()),
	)
}

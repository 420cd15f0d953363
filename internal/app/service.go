// Package service wires a game session to its mailbox, loop and
// collaborators, and exposes what the front-ends need.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/whackaword/internal/adapters/mq/queue"
	"github.com/okian/whackaword/internal/adapters/mq/worker"
	"github.com/okian/whackaword/internal/adapters/sim"
	"github.com/okian/whackaword/internal/domain/catalog"
	"github.com/okian/whackaword/internal/domain/dedupe"
	model "github.com/okian/whackaword/internal/domain/model"
	"github.com/okian/whackaword/internal/narration"
	round "github.com/okian/whackaword/internal/round"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/okian/whackaword/pkg/metrics"
)

// Default service configuration.
const (
	defaultQueueSize   = 1024
	defaultDedupeSize  = 4096
	defaultStopTimeout = 2 * time.Second
)

// Service owns one game session. Start builds a fresh session every time,
// so a stopped service can be started again.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	catalog     *catalog.Catalog
	stage       round.Stage
	player      narration.Player
	effects     round.Effects
	sessionOpts []round.Option

	// Runtime components
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	session atomic.Pointer[round.Session]
	loop    *worker.Loop
	cancel  context.CancelFunc

	// Configuration
	queueSize  int
	dedupeSize int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the mailbox capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many tap ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog replaces the built-in word list.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithStage sets the presentation surface.
func WithStage(st round.Stage) Option {
	return func(s *Service) {
		if st != nil {
			s.stage = st
		}
	}
}

// WithPlayer sets the narration audio player.
func WithPlayer(p narration.Player) Option {
	return func(s *Service) {
		if p != nil {
			s.player = p
		}
	}
}

// WithEffects sets the sound effects sink.
func WithEffects(e round.Effects) Option {
	return func(s *Service) {
		if e != nil {
			s.effects = e
		}
	}
}

// WithSessionOptions passes options to every session the service builds.
func WithSessionOptions(opts ...round.Option) Option {
	return func(s *Service) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// New constructs a Service. Collaborators left unset are simulated.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:  defaultQueueSize,
		dedupeSize: defaultDedupeSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.catalog == nil {
		s.catalog = catalog.Default()
	}
	if s.stage == nil {
		s.stage = sim.NewStage()
	}
	if s.player == nil {
		s.player = sim.NewPlayer()
	}
	if s.effects == nil {
		s.effects = sim.NewEffects()
	}

	return s
}

// Start builds a session and its loop and kicks off the first round.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	opts := append([]round.Option{
		round.WithLogger(s.logger.Named("session")),
		round.WithEffects(s.effects),
	}, s.sessionOpts...)
	session, err := round.New(s.catalog, s.stage, s.player, s.queue, opts...)
	if err != nil {
		_ = s.queue.Close()
		return fmt.Errorf("build session: %w", err)
	}
	s.session.Store(session)
	s.loop = worker.NewLoop(s.queue, session, worker.WithName("game-loop"), worker.WithLogger(s.logger))

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.loop.Run(loopCtx)

	if !s.queue.Enqueue(ctx, model.NewEvent(model.EventStart, 0)) {
		s.teardown(ctx)
		return fmt.Errorf("start session: %w", ErrBackpressure)
	}

	s.started = true
	metrics.UpdateSessionsActive(1)
	s.logger.Info(ctx, "game service started",
		logger.String("session", session.ID()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("targets", s.catalog.TargetCount()),
		logger.Int("slots", s.catalog.SlotCount()),
	)

	return nil
}

// resetter is a collaborator holding per-session state, such as pending
// animations or queued narration, that must not leak into the next session.
type resetter interface {
	Reset()
}

// Stop shuts the loop down and resets collaborators for the next Start.
// Closing collaborators is left to whoever built them.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultStopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping game service...")
	s.teardown(ctx)
	for _, c := range []any{s.stage, s.player, s.effects} {
		if r, ok := c.(resetter); ok {
			r.Reset()
		}
	}

	s.session.Store(nil)
	s.started = false
	metrics.UpdateSessionsActive(0)
	s.logger.Info(ctx, "game service stopped")
}

// teardown must be called with s.mu held.
func (s *Service) teardown(ctx context.Context) {
	if err := s.loop.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "loop shutdown", logger.Error(err))
	}
	s.cancel()
	_ = s.queue.Close()
}

// Tap delivers a tap on slotID made while round token was shown.
func (s *Service) Tap(ctx context.Context, slotID string, token uint64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	return s.tap(ctx, slotID, token)
}

// SubmitTap is Tap with at-most-once delivery per tapID. It reports true
// when tapID was seen before. A tap rejected for backpressure is forgotten
// so the client can retry it.
func (s *Service) SubmitTap(ctx context.Context, tapID, slotID string, token uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return false, ErrNotStarted
	}
	if tapID != "" && s.deduper.SeenAndRecord(ctx, tapID) {
		s.logger.Debug(ctx, "duplicate tap", logger.String("tap_id", tapID))
		return true, nil
	}
	if err := s.tap(ctx, slotID, token); err != nil {
		if tapID != "" {
			s.deduper.Unrecord(ctx, tapID)
		}
		return false, err
	}
	return false, nil
}

// tap must be called with s.mu held.
func (s *Service) tap(ctx context.Context, slotID string, token uint64) error {
	if _, err := s.catalog.Slot(slotID); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slotID)
	}
	if !s.queue.Enqueue(ctx, model.TapEvent(slotID, model.RoundToken(token))) {
		return ErrBackpressure
	}
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	return nil
}

// Snapshot returns the latest session state. It never blocks, so
// collaborators may call it while the loop is inside their methods.
func (s *Service) Snapshot(_ context.Context) (round.Snapshot, error) {
	session := s.session.Load()
	if session == nil {
		return round.Snapshot{}, ErrNotStarted
	}
	return session.Snapshot(), nil
}

// Done is closed when the current session is won. It is nil while the
// service is stopped.
func (s *Service) Done() <-chan struct{} {
	session := s.session.Load()
	if session == nil {
		return nil
	}
	return session.Done()
}

// Catalog returns the word list the service plays with.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":    s.started,
		"queueSize":  s.queueSize,
		"dedupeSize": s.dedupeSize,
		"targets":    s.catalog.TargetCount(),
		"slots":      s.catalog.SlotCount(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		snap := s.session.Load().Snapshot()

		stats["queueLength"] = queueLen
		stats["session"] = snap.Session
		stats["phase"] = snap.Phase
		stats["tier"] = snap.Tier
		stats["won"] = snap.Won
		stats["tapsRemembered"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
	}

	return stats
}

// Size returns the number of tap ids currently remembered.
func (s *Service) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

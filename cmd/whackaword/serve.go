package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/whackaword/internal/adapters/http/api"
	"github.com/okian/whackaword/internal/adapters/http/site"
	"github.com/okian/whackaword/internal/adapters/http/swagger"
	"github.com/okian/whackaword/internal/adapters/sim"
	service "github.com/okian/whackaword/internal/app"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/spf13/cobra"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

var (
	serveAudio  bool
	serveReplay bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a headless session behind the HTTP API and web page",
	Long: `serve runs the game with a simulated stage and exposes it over HTTP:
the play page at /, GET /session, POST /taps, /stats, /healthz, /metrics
and the API description at /api-docs.`,
	RunE: runServe,
}

func init() { //nolint:gochecknoinits // cobra command wiring
	serveCmd.Flags().BoolVar(&serveAudio, "audio", false, "Play narration on this machine's speaker")
	serveCmd.Flags().BoolVar(&serveReplay, "replay", true, "Start a new session after each win")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := logger.Init(); err != nil {
		return err
	}
	log := initLogging(ctx)

	cat, err := buildCatalog(cfg)
	if err != nil {
		return err
	}
	snd := silentSound(cfg, log)
	if serveAudio {
		snd = newSound(ctx, cfg, log)
	}
	defer snd.Close()

	svc := service.New(
		service.WithLogger(log),
		service.WithCatalog(cat),
		service.WithStage(sim.NewStage(simOptions(cfg, log.Named("stage"))...)),
		service.WithPlayer(snd.player),
		service.WithEffects(snd.effects),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.TapDedupeSize),
		service.WithSessionOptions(sessionOptions(cfg)...),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)
	if serveReplay {
		go replay(ctx, svc, log)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error(ctx, "HTTP server failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newMux registers the API, docs and play page.
func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

// replay starts a fresh session a little while after each win.
func replay(ctx context.Context, svc *service.Service, log logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-svc.Done():
		}
		log.Info(ctx, "session won; starting another")
		select {
		case <-ctx.Done():
			return
		case <-time.After(winLinger):
		}
		svc.Stop()
		if err := svc.Start(ctx); err != nil {
			log.Error(ctx, "restart failed", logger.Error(err))
			return
		}
	}
}

// startServiceMetricsUpdater refreshes gauges derived from service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.GetStats() // refreshes the queue gauge
		}
	}
}

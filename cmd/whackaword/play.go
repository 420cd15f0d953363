package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/okian/whackaword/internal/adapters/terminal"
	service "github.com/okian/whackaword/internal/app"
	round "github.com/okian/whackaword/internal/round"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/spf13/cobra"
)

const (
	logFileMode = 0o600
	winLinger   = 3 * time.Second
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal (keys 1-N tap a hole, q quits)",
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// The screen owns stdout, so logs go to a file.
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if err := logger.InitWithWriter(f); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := initLogging(ctx)

	cat, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}

	var svc *service.Service
	view := terminal.New(screen, cat.Slots(),
		terminal.WithAnimation(cfg.PopDuration(), cfg.RetractDuration()),
		terminal.WithLogger(log.Named("terminal")),
		terminal.WithStatus(func() round.Snapshot {
			snap, _ := svc.Snapshot(ctx)
			return snap
		}),
	)
	defer view.Close()

	snd := newSound(ctx, cfg, log)
	defer snd.Close()
	svc = service.New(
		service.WithLogger(log),
		service.WithCatalog(cat),
		service.WithStage(view),
		service.WithPlayer(snd.player),
		service.WithEffects(snd.effects),
		service.WithQueueSize(cfg.QueueSize),
		service.WithSessionOptions(sessionOptions(cfg)...),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-svc.Done():
			log.Info(runCtx, "session won")
			select {
			case <-time.After(winLinger):
			case <-runCtx.Done():
			}
			cancel()
		case <-runCtx.Done():
		}
	}()

	return view.Run(runCtx, svc)
}

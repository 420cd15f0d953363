package main

import (
	"fmt"
	"time"

	"github.com/okian/whackaword/internal/adapters/sim"
	service "github.com/okian/whackaword/internal/app"
	round "github.com/okian/whackaword/internal/round"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/spf13/cobra"
)

const clientTimeout = 5 * time.Second

var (
	autoplayURL  string
	autoplayFast bool
)

var autoplayCmd = &cobra.Command{
	Use:   "autoplay",
	Short: "Let a bot play a session to the end",
	Long: `autoplay plays a whole session with a bot that taps the prompted card
with probability autoplay_accuracy. With --url it drives a running
"whackaword serve" over HTTP; otherwise it plays an in-process session.`,
	RunE: runAutoplay,
}

func init() { //nolint:gochecknoinits // cobra command wiring
	autoplayCmd.Flags().StringVar(&autoplayURL, "url", "", "Base URL of a running server, e.g. http://localhost:9080")
	autoplayCmd.Flags().BoolVar(&autoplayFast, "fast", false, "Skip animations, lead-ins and reaction time")
}

func runAutoplay(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := logger.Init(); err != nil {
		return err
	}
	log := initLogging(ctx)
	if autoplayFast {
		cfg.PopDurationMS, cfg.RetractDurationMS = 0, 0
		cfg.NarrationDelayMS, cfg.FirstNarrationDelayMS = 0, 0
		cfg.FeedbackHoldMS, cfg.AutoplayReactionMS = 0, 0
	}

	cat, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	var (
		snapshot sim.SnapshotFunc
		tapper   sim.Tapper
	)
	if autoplayURL != "" {
		client := sim.NewHTTPClient(autoplayURL, clientTimeout)
		snapshot, tapper = client.Snapshot, client
	} else {
		simOpts := simOptions(cfg, log.Named("sim"))
		player := silentSound(cfg, log.Named("sim")).player
		if autoplayFast {
			player = sim.NewPlayer(append(simOpts, sim.WithClipLength(0, 0))...)
		}
		svc := service.New(
			service.WithLogger(log),
			service.WithCatalog(cat),
			service.WithStage(sim.NewStage(simOpts...)),
			service.WithPlayer(player),
			service.WithSessionOptions(sessionOptions(cfg)...),
		)
		if err := svc.Start(ctx); err != nil {
			return err
		}
		defer svc.Stop()
		snapshot, tapper = svc.Snapshot, svc
	}

	botOpts := []sim.BotOption{
		sim.WithAccuracy(cfg.AutoplayAccuracy),
		sim.WithReaction(cfg.AutoplayReaction()),
		sim.WithBotLogger(log.Named("bot")),
	}
	if cfg.Seed != 0 {
		botOpts = append(botOpts, sim.WithBotSeed(cfg.Seed))
	}
	bot, err := sim.NewBot(snapshot, tapper, slotIDs(cat), botOpts...)
	if err != nil {
		return err
	}

	start := time.Now()
	stats, err := bot.Run(ctx)
	if err != nil {
		return fmt.Errorf("autoplay: %w", err)
	}
	final, _ := snapshot(ctx)
	printSummary(cmd, stats, final, time.Since(start))
	return nil
}

func printSummary(cmd *cobra.Command, stats sim.BotStats, final round.Snapshot, took time.Duration) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "session %s won=%v after %s\n", final.Session, final.Won, took.Round(time.Millisecond))
	_, _ = fmt.Fprintf(out, "rounds %d: correct %d, wrong %d, skipped %d, failed %d\n",
		stats.Rounds, stats.Correct, stats.Wrong, stats.Skipped, stats.Failed)
	_, _ = fmt.Fprintf(out, "solved: %v\n", final.Solved)
}

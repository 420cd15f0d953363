// Command whackaword runs the Whack-A-Word vocabulary game.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/whackaword/internal/config"
	"github.com/okian/whackaword/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	logLevel   string

	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "whackaword",
	Short: "Whack-A-Word - a vocabulary game for young children",
	Long: `Whack-A-Word pops picture cards up out of holes and asks the player to
find one by name. Three correct taps finish a tier; each tier shows more
cards at once.

Run without arguments to play in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd, args)
	},
}

func init() { //nolint:gochecknoinits // cobra command wiring
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set "+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log_level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd, serveCmd, autoplayCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// initLogging applies the configured level; invalid input falls back to info.
func initLogging(ctx context.Context) logger.Logger {
	l := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		l.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return l
}

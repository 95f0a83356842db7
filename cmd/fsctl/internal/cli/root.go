// Package cli implements fsctl's command tree, adapted from the
// teacher's cmd package layout (cobra root with persistent logging
// flags, a context cancelled on SIGINT/SIGTERM).
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"forkserver-go/internal/logging"
)

var (
	globalLogFormat string
	globalDebug     bool
)

var rootCmd = &cobra.Command{
	Use:   "fsctl",
	Short: "Reference controller for a fork-server-preloaded host process",
	Long: `fsctl drives a host process running under the forkserver-go preload
module: it sets up the environment the module expects, launches the
host, and exchanges fork-server protocol messages with it over
stdin/stdout.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the fsctl command tree.
func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns a context cancelled on SIGINT/SIGTERM, so a long
// running drive or batch run can be interrupted cleanly.
func GetContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "set the format for log output (text or json)")
	rootCmd.PersistentFlags().BoolVar(&globalDebug, "debug", false, "enable debug logging")
}

func setupLogging() {
	level := slog.LevelInfo
	if globalDebug {
		level = slog.LevelDebug
	}

	logger := logging.NewLogger(logging.Config{
		Level:  level,
		Format: globalLogFormat,
		Output: os.Stderr,
	})
	logging.SetDefault(logger)
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var logLevel string

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "materializer",
		Short: "materializer merges mounted secrets into service configuration, then execs the service",
		Long: `materializer is a container entrypoint. It merges secret material mounted
by the orchestrator into a target process's configuration, then replaces
itself with that process so the service runs as PID 1 with direct signal
delivery.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(logLevel)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			}))
			slog.SetDefault(logger)
			return nil
		},
	}

	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel(), "Log level (debug, info, warn, error)")

	cmd.AddCommand(newAppendCommand())
	cmd.AddCommand(newOIDCCommand())

	return cmd
}

// defaultLogLevel honors LOG_LEVEL so the level can be set from a container
// environment where editing the entrypoint argv is awkward.
func defaultLogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", level)
	}
}

func run() int {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}

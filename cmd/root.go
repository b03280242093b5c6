package cmd

import (
	"apireq-migrate/internal/modules/filereader"
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	recordsPath string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "apireq",
	Short: "Move API request definitions between environments",
	Long: `A CLI tool to sanitize an exported list of API request definitions and
import it into a destination environment authenticated with OAuth2 client credentials`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute now takes a context, logger and the level the logger was built with
func Execute(ctx context.Context, logger *zap.Logger, level zap.AtomicLevel) {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(logLevel)); err != nil {
			return err
		}
		level.SetLevel(l)
		return nil
	}
	if err := rootCmd.ExecuteContext(withLogger(ctx, logger)); err != nil {
		logger.Error("execution failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&recordsPath, "file", "f", filereader.DefaultPath, "Path to the JSON file of request definitions")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pflag.CommandLine.AddFlagSet(rootCmd.PersistentFlags())
}

type loggerKey struct{}

func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// loggerFrom returns the logger Execute stored on the command context.
func loggerFrom(cmd *cobra.Command) *zap.Logger {
	if logger, ok := cmd.Context().Value(loggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

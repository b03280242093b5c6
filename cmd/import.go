package cmd

import (
	"apireq-migrate/internal/config"
	"apireq-migrate/internal/modules/auth"
	"apireq-migrate/internal/modules/importer"
	"apireq-migrate/internal/modules/journal"
	"apireq-migrate/internal/modules/uploader"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type importFlags struct {
	envFile     string
	delay       time.Duration
	timeout     time.Duration
	journalPath string
}

var importOpts importFlags

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Submit every request definition to the destination environment",
	Long: `Authenticate with the OAuth2 client-credentials grant, then PUT each request
definition from the file to <DESTINATION_API_URL>/apirequests, one at a time`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd.Context(), recordsPath, importOpts, loggerFrom(cmd))
	},
}

func init() {
	importCmd.Flags().StringVar(&importOpts.envFile, "env-file", config.DefaultEnvFile, "Dotenv file with the destination settings")
	importCmd.Flags().DurationVar(&importOpts.delay, "delay", uploader.DefaultDelay, "Pause after each accepted request")
	importCmd.Flags().DurationVar(&importOpts.timeout, "timeout", 30*time.Second, "HTTP client timeout")
	importCmd.Flags().StringVar(&importOpts.journalPath, "journal", "", "SQLite file to record each submission in (disabled when empty)")
	rootCmd.AddCommand(importCmd)
}

func runImport(ctx context.Context, path string, flags importFlags, logger *zap.Logger) error {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return err
	}

	opts := importer.Options{
		RecordsPath: path,
		Delay:       flags.delay,
		Client:      &http.Client{Timeout: flags.timeout},
	}
	if flags.journalPath != "" {
		store, err := journal.NewStore(flags.journalPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Journal = store
	}

	logger.Info("starting import",
		zap.String("path", path),
		zap.String("destination", cfg.SubmitURL()),
		zap.Duration("delay", flags.delay))

	_, err = importer.New(cfg, opts, logger).Run(ctx)
	var statusErr *auth.StatusError
	if errors.As(err, &statusErr) {
		logger.Error("authentication rejected",
			zap.String("identity_url", cfg.IdentityURL),
			zap.Int("status", statusErr.StatusCode),
			zap.String("body", statusErr.Body))
	}
	return err
}

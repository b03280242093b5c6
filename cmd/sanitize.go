package cmd

import (
	"apireq-migrate/internal/modules/filereader"
	"apireq-migrate/internal/modules/persistence"
	"apireq-migrate/internal/modules/sanitizer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize",
	Short: "Strip environment URLs and API keys from the requests file",
	Long: `Sort the request definitions by id, replace each URL host with a placeholder and
blank every X-API-Key header value, then overwrite the file in place`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSanitize(recordsPath, loggerFrom(cmd))
	},
}

func init() {
	rootCmd.AddCommand(sanitizeCmd)
}

func runSanitize(path string, logger *zap.Logger) error {
	logger.Info("starting sanitize", zap.String("path", path))

	records, err := filereader.LoadRecords(path, logger)
	if err != nil {
		return err
	}

	sanitized := sanitizer.Sanitize(records, logger)
	return persistence.New(path).WriteRecords(sanitized, logger)
}

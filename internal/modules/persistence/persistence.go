package persistence

import (
	"apireq-migrate/internal/models"
	"fmt"
	"os"

	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

var prettyOptions = &pretty.Options{
	Width:    0,
	Prefix:   "",
	Indent:   "    ",
	SortKeys: false,
}

// FilePersister writes request records back to a JSON export file.
type FilePersister struct {
	path string // File that is overwritten on every write
}

// New creates a new FilePersister for the given export file.
//
// Parameters:
//   - path: The file to overwrite.
//
// Returns:
//   - A pointer to a new FilePersister instance.
func New(path string) *FilePersister {
	return &FilePersister{path: path}
}

// WriteRecords encodes records as an indented JSON array and overwrites the file.
//
// The write is not atomic: a failure part way through can leave a truncated file.
//
// Parameters:
//   - records: The records to write, in the order they should appear.
//   - logger: Logger for logging progress.
//
// Returns:
//   - An error if encoding or writing fails, nil otherwise.
func (fp *FilePersister) WriteRecords(records []models.Record, logger *zap.Logger) error {
	if records == nil {
		records = []models.Record{}
	}
	data, err := models.Encode(records)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	data = pretty.PrettyOptions(data, prettyOptions)

	logger.Debug("writing records file", zap.String("path", fp.path))
	if err := os.WriteFile(fp.path, data, 0644); err != nil {
		return fmt.Errorf("writing records file: %w", err)
	}

	logger.Info("records written",
		zap.String("path", fp.path),
		zap.Int("total_records", len(records)))
	return nil
}

package filereader

import (
	"apireq-migrate/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DefaultPath is the export file both commands work on when no path is given.
const DefaultPath = "AllRequests.json"

// FileReader loads request records from a JSON export and implements pipeline.Stage.
type FileReader struct {
	path string
}

// New creates a new FileReader for the given export file.
func New(path string) *FileReader {
	return &FileReader{path: path}
}

// LoadRecords reads the whole export file and decodes it as a JSON array of records.
func LoadRecords(path string, logger *zap.Logger) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records file: %w", err)
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing records file %s: %w", path, err)
	}

	logger.Info("loaded records",
		zap.String("path", path),
		zap.String("size", humanize.Bytes(uint64(len(data)))),
		zap.Int("total_records", len(records)))
	return records, nil
}

// Execute loads the export file and sends each record, in file order, to output.
func (fr *FileReader) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	records, err := LoadRecords(fr.path, logger)
	if err != nil {
		return err
	}

	for _, record := range records {
		select {
		case <-ctx.Done():
			logger.Warn("record reading interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		case output <- record:
			logger.Debug("read record", zap.Int64("id", record.ID), zap.String("name", record.Name))
		}
	}
	return nil
}

package importer

import (
	"apireq-migrate/internal/models"
	"apireq-migrate/internal/modules/journal"
	"context"

	"go.uber.org/zap"
)

// Summary counts the outcomes of one import run.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	FailedIDs []int64
}

// Journal receives every submission result. *journal.Store satisfies it.
type Journal interface {
	Add(e journal.Entry) (int64, error)
}

// reporter is the final pipeline stage: it logs each result and tallies the summary.
type reporter struct {
	runID   string
	journal Journal
	summary *Summary
}

func (rp *reporter) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	for item := range input {
		result, ok := item.(models.Result)
		if !ok {
			logger.Warn("invalid input type, expected Result", zap.Any("type", item))
			continue
		}
		rp.report(result, logger)
	}
	return nil
}

func (rp *reporter) report(r models.Result, logger *zap.Logger) {
	rp.summary.Total++
	fields := []zap.Field{
		zap.Int64("id", r.RecordID),
		zap.String("name", r.Name),
		zap.Int("status", r.StatusCode),
		zap.ByteString("body", r.Body),
		zap.Duration("duration", r.Duration),
	}

	if r.Success() {
		rp.summary.Succeeded++
		logger.Info("submitted request", fields...)
	} else {
		rp.summary.Failed++
		rp.summary.FailedIDs = append(rp.summary.FailedIDs, r.RecordID)
		if r.Error != nil {
			fields = append(fields, zap.Error(r.Error))
		}
		logger.Warn("failed to submit request", fields...)
	}

	if rp.journal == nil {
		return
	}
	if _, err := rp.journal.Add(journal.FromResult(rp.runID, r)); err != nil {
		logger.Warn("journal write failed", zap.Int64("id", r.RecordID), zap.Error(err))
	}
}

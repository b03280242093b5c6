package importer

import (
	"apireq-migrate/internal/config"
	"apireq-migrate/internal/modules/auth"
	"apireq-migrate/internal/modules/filereader"
	"apireq-migrate/internal/modules/pipeline"
	"apireq-migrate/internal/modules/uploader"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options tune an import run.
type Options struct {
	RecordsPath string
	Delay       time.Duration
	Client      *http.Client
	Journal     Journal
}

// Importer authenticates against the destination and replays every record into it.
type Importer struct {
	cfg    *config.Config
	opts   Options
	logger *zap.Logger
}

// New creates an Importer. A zero Options.RecordsPath means filereader.DefaultPath.
func New(cfg *config.Config, opts Options, logger *zap.Logger) *Importer {
	if opts.RecordsPath == "" {
		opts.RecordsPath = filereader.DefaultPath
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	return &Importer{cfg: cfg, opts: opts, logger: logger}
}

// Run authenticates once and then submits the records file in file order.
//
// An authentication failure returns before the records file is read or any
// record is sent. Rejected records are counted in the Summary and do not
// stop the run.
func (im *Importer) Run(ctx context.Context) (Summary, error) {
	runID := uuid.New().String()
	logger := im.logger.With(zap.String("run_id", runID))
	summary := Summary{RunID: runID}

	for _, key := range im.cfg.Missing() {
		logger.Warn("configuration variable not set", zap.String("variable", key))
	}

	token, err := auth.ClientCredentials(ctx, im.opts.Client, im.cfg.IdentityURL, im.cfg.ClientID, im.cfg.ClientSecret)
	if err != nil {
		return summary, err
	}
	logger.Info("authenticated", zap.String("identity_url", im.cfg.IdentityURL), zap.Int("expires_in", token.ExpiresIn))

	p := pipeline.New(logger)
	p.AddStage(filereader.New(im.opts.RecordsPath))
	p.AddStage(uploader.NewRehydrator(im.cfg.FastAPIURL, im.cfg.APIKey))
	p.AddStage(uploader.New(im.opts.Client, im.cfg.SubmitURL(), token.Headers(), im.opts.Delay))
	p.AddStage(&reporter{runID: runID, journal: im.opts.Journal, summary: &summary})

	input := make(chan interface{})
	close(input)

	if err := p.Run(ctx, input); err != nil {
		// stages may still be running after a cancel; do not hand out their summary
		return Summary{RunID: runID}, fmt.Errorf("import run %s: %w", runID, err)
	}

	logger.Info("import statistics",
		zap.Int("total", summary.Total),
		zap.Int("successful", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int64s("failed_ids", summary.FailedIDs))
	return summary, nil
}

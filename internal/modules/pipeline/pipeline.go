package pipeline

import (
	"context"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Stage is one step of a Pipeline. Execute consumes items until input is closed
// or ctx is done; the pipeline closes output once Execute returns.
type Stage interface {
	Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error
}

// Pipeline runs stages concurrently, each feeding the next.
type Pipeline struct {
	stages []Stage
	logger *zap.Logger // handed to every stage
}

// New returns an empty Pipeline.
func New(logger *zap.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
	}
}

// AddStage appends stage after the ones already added.
func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Run starts every stage in its own goroutine and blocks until all of them
// return or ctx is done. The first stage reads input; each later stage reads a
// buffered channel written by the one before it.
//
// A stage that returns early, with or without an error, has the rest of its
// input drained so the stages before it can still finish. Stage errors are
// combined with multierr. On cancellation Run returns ctx.Err() without
// waiting for the stages.
func (p *Pipeline) Run(ctx context.Context, input <-chan interface{}) error {
	if len(p.stages) == 0 {
		p.logger.Warn("no stages in pipeline")
		return nil
	}

	channels := make([]chan interface{}, len(p.stages))
	for i := range channels {
		channels[i] = make(chan interface{}, 50)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errAll error
	)
	wg.Add(len(p.stages))

	for i, stage := range p.stages {
		inChan := input
		if i > 0 {
			inChan = channels[i-1]
		}
		outChan := channels[i]

		go func(stage Stage, in <-chan interface{}, out chan<- interface{}, idx int) {
			defer wg.Done()
			defer close(out)
			if err := stage.Execute(ctx, in, out, p.logger); err != nil {
				p.logger.Error("stage execution failed",
					zap.Int("stage", idx),
					zap.Error(err))
				mu.Lock()
				errAll = multierr.Append(errAll, err)
				mu.Unlock()
			}
			// drain
			for range in {
			}
		}(stage, inChan, outChan, i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		mu.Lock()
		defer mu.Unlock()
		if errAll != nil {
			return errAll
		}
		p.logger.Info("pipeline completed successfully")
		return nil
	case <-ctx.Done():
		p.logger.Info("pipeline canceled", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

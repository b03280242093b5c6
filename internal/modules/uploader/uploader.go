package uploader

import (
	"apireq-migrate/internal/models"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultDelay is the pause after every accepted record.
const DefaultDelay = 5 * time.Second

// Uploader PUTs records to the destination one at a time and implements pipeline.Stage.
type Uploader struct {
	client    *http.Client
	submitURL string
	headers   http.Header
	delay     time.Duration
}

// New creates an Uploader sending to submitURL with the given headers.
func New(client *http.Client, submitURL string, headers http.Header, delay time.Duration) *Uploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{
		client:    client,
		submitURL: submitURL,
		headers:   headers.Clone(),
		delay:     delay,
	}
}

// Submit sends one record. It never returns an error: failures are reported in the Result.
func (u *Uploader) Submit(ctx context.Context, record models.Record) models.Result {
	start := time.Now()
	result := models.Result{RecordID: record.ID, Name: record.Name, URL: record.URL}

	body, err := models.Encode(record)
	if err != nil {
		result.Error = fmt.Errorf("encoding record: %w", err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.submitURL, bytes.NewReader(body))
	if err != nil {
		result.Error = fmt.Errorf("creating request: %w", err)
		return result
	}
	for k, v := range u.headers {
		req.Header[k] = append([]string(nil), v...)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		result.Error = fmt.Errorf("submit failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.Body, err = io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Errorf("read failed: %w", err)
	}
	result.Duration = time.Since(start)
	return result
}

// Execute submits every record from input in arrival order and forwards each Result.
// After an accepted record it waits for the configured delay before taking the next one.
func (u *Uploader) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	for item := range input {
		record, ok := item.(models.Record)
		if !ok {
			logger.Warn("invalid input type, expected Record", zap.Any("type", item))
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Warn("submission interrupted", zap.Error(err))
			return err
		}

		logger.Debug("submitting record", zap.Int64("id", record.ID), zap.String("url", u.submitURL))
		result := u.Submit(ctx, record)

		select {
		case output <- result:
		case <-ctx.Done():
			return ctx.Err()
		}

		if result.Success() && u.delay > 0 {
			timer := time.NewTimer(u.delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				logger.Warn("submission interrupted", zap.Error(ctx.Err()))
				return ctx.Err()
			}
		}
	}
	return nil
}

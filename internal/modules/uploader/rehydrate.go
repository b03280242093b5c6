package uploader

import (
	"apireq-migrate/internal/models"
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	// URLMarker stands in for the destination API base in prepared exports.
	URLMarker    = "REMOVED_API_URL"
	apiKeyHeader = "X-API-Key"
)

// Rehydrate fills destination values into a prepared record. Pure.
func Rehydrate(r models.Record, apiURL, apiKey string) models.Record {
	out := r.Clone()
	if out.HasURL() {
		out.SetURL(strings.ReplaceAll(out.URL, URLMarker, apiURL))
	}
	for i := range out.Headers {
		if out.Headers[i].Key == apiKeyHeader {
			out.Headers[i].SetValue(apiKey)
		}
	}
	return out
}

// Rehydrator applies Rehydrate to every record passing through the pipeline.
type Rehydrator struct {
	apiURL string
	apiKey string
}

func NewRehydrator(apiURL, apiKey string) *Rehydrator {
	return &Rehydrator{apiURL: apiURL, apiKey: apiKey}
}

func (rh *Rehydrator) Execute(ctx context.Context, input <-chan interface{}, output chan<- interface{}, logger *zap.Logger) error {
	for item := range input {
		record, ok := item.(models.Record)
		if !ok {
			logger.Warn("invalid input type, expected Record", zap.Any("type", item))
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case output <- Rehydrate(record, rh.apiURL, rh.apiKey):
		}
	}
	return nil
}

package sanitizer

import (
	"apireq-migrate/internal/models"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	// PlaceholderHost replaces the scheme and host of every record URL.
	PlaceholderHost = "https://PLACEHOLDER/"
	// PlaceholderSecret replaces every X-API-Key header value.
	PlaceholderSecret = "PLACEHOLDER"
	// APIKeyHeader is the header whose value is treated as a secret. Matched exactly.
	APIKeyHeader = "X-API-Key"
)

// SanitizeURL swaps everything up to the third "/" for PlaceholderHost.
// URLs with fewer than four "/"-separated parts become PlaceholderHost alone.
func SanitizeURL(url string) string {
	parts := strings.SplitN(url, "/", 4)
	if len(parts) > 3 {
		return PlaceholderHost + parts[3]
	}
	return PlaceholderHost
}

// SanitizeRecord returns a copy of r with its URL and API key header scrubbed.
func SanitizeRecord(r models.Record) models.Record {
	out := r.Clone()
	out.SetURL(SanitizeURL(r.URL))
	for i := range out.Headers {
		if out.Headers[i].Key == APIKeyHeader {
			out.Headers[i].SetValue(PlaceholderSecret)
		}
	}
	return out
}

// Sanitize sorts records by ascending id and sanitizes each of them.
func Sanitize(records []models.Record, logger *zap.Logger) []models.Record {
	sorted := make([]models.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})

	logger.Info("sanitizing records", zap.Int("total_records", len(sorted)))

	out := make([]models.Record, 0, len(sorted))
	for _, r := range sorted {
		s := SanitizeRecord(r)
		logger.Debug("sanitized record",
			zap.Int64("id", s.ID),
			zap.String("name", s.Name),
			zap.String("url", s.URL))
		out = append(out, s)
	}
	return out
}

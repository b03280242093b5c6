package uploader

import (
	"apireq-migrate/internal/models"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRehydrate(t *testing.T) {
	r := models.NewRecord(1, "a", "REMOVED_API_URL/api/items")
	r.SetHeaders([]models.Header{
		{Key: "X-API-Key", Value: "PLACEHOLDER"},
		{Key: "Accept", Value: "*/*"},
	})

	got := Rehydrate(r, "https://fastapi.example.com", "key-1")

	assert.Equal(t, "https://fastapi.example.com/api/items", got.URL)
	assert.Equal(t, "key-1", got.Headers[0].Value)
	assert.Equal(t, "*/*", got.Headers[1].Value)
	assert.Equal(t, "REMOVED_API_URL/api/items", r.URL)
	assert.Equal(t, "PLACEHOLDER", r.Headers[0].Value)
}

func TestRehydrate_NoURLNoHeaders(t *testing.T) {
	var r models.Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":9,"name":"n"}`), &r))

	got := Rehydrate(r, "https://fastapi", "key")

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"name":"n"}`, string(out))
}

func TestRehydrate_PlaceholderHostIsLeftAlone(t *testing.T) {
	r := models.NewRecord(1, "a", "https://PLACEHOLDER/api")
	assert.Equal(t, "https://PLACEHOLDER/api", Rehydrate(r, "https://fastapi", "k").URL)
}

func TestRehydrator_Execute(t *testing.T) {
	logger := zaptest.NewLogger(t)
	input := make(chan interface{}, 3)
	input <- models.NewRecord(1, "a", "REMOVED_API_URL/one")
	input <- "not a record"
	input <- models.NewRecord(2, "b", "REMOVED_API_URL/two")
	close(input)
	output := make(chan interface{}, 3)

	require.NoError(t, NewRehydrator("https://f", "k").Execute(context.Background(), input, output, logger))
	close(output)

	var urls []string
	for item := range output {
		urls = append(urls, item.(models.Record).URL)
	}
	assert.Equal(t, []string{"https://f/one", "https://f/two"}, urls)
}

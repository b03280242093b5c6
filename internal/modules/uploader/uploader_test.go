package uploader

import (
	"apireq-migrate/internal/models"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func authHeaders() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer tok")
	h.Set("User-Agent", "ImportScript/1.0")
	return h
}

func TestSubmit(t *testing.T) {
	var gotMethod, gotAuth, gotAgent string
	var gotBody map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		if gotBody["name"] == "bad" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"boom"}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	u := New(ts.Client(), ts.URL+"/apirequests", authHeaders(), 0)

	tests := []struct {
		name        string
		record      models.Record
		wantStatus  int
		wantSuccess bool
		wantBody    string
	}{
		{
			name:        "accepted",
			record:      models.NewRecord(1, "good", "https://api/x"),
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantBody:    `{"ok":true}`,
		},
		{
			name:        "rejected",
			record:      models.NewRecord(2, "bad", "https://api/y"),
			wantStatus:  http.StatusInternalServerError,
			wantSuccess: false,
			wantBody:    `{"error":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := u.Submit(context.Background(), tt.record)

			if result.Error != nil {
				t.Fatalf("unexpected error: %v", result.Error)
			}
			if result.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, result.StatusCode)
			}
			if result.Success() != tt.wantSuccess {
				t.Errorf("expected success %v, got %v", tt.wantSuccess, result.Success())
			}
			if string(result.Body) != tt.wantBody {
				t.Errorf("expected body %s, got %s", tt.wantBody, result.Body)
			}
			if result.RecordID != tt.record.ID {
				t.Errorf("expected record id %d, got %d", tt.record.ID, result.RecordID)
			}
			if gotMethod != http.MethodPut {
				t.Errorf("expected PUT, got %s", gotMethod)
			}
			if gotAuth != "Bearer tok" || gotAgent != "ImportScript/1.0" {
				t.Errorf("unexpected headers: auth=%q agent=%q", gotAuth, gotAgent)
			}
			if gotBody["url"] != tt.record.URL {
				t.Errorf("expected body url %s, got %v", tt.record.URL, gotBody["url"])
			}
		})
	}
}

func TestSubmit_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	result := New(nil, url+"/apirequests", authHeaders(), 0).Submit(context.Background(), models.NewRecord(1, "a", "u"))
	if result.Error == nil {
		t.Errorf("expected error, got nil")
	}
	if result.Success() {
		t.Errorf("expected failure")
	}
}

func TestExecute_ContinuesAfterFailure(t *testing.T) {
	logger := zaptest.NewLogger(t)

	var mu sync.Mutex
	var seen []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		name, _ := body["name"].(string)
		mu.Lock()
		seen = append(seen, name)
		mu.Unlock()
		if name == "B" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	u := New(ts.Client(), ts.URL+"/apirequests", authHeaders(), time.Millisecond)

	input := make(chan interface{}, 3)
	input <- models.NewRecord(1, "A", "u")
	input <- models.NewRecord(2, "B", "u")
	input <- models.NewRecord(3, "C", "u")
	close(input)
	output := make(chan interface{}, 3)

	if err := u.Execute(context.Background(), input, output, logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(output)

	var results []models.Result
	for item := range output {
		results = append(results, item.(models.Result))
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	wantSuccess := []bool{true, false, true}
	for i, r := range results {
		if r.Success() != wantSuccess[i] {
			t.Errorf("record %s: expected success %v, got %v", r.Name, wantSuccess[i], r.Success())
		}
	}
	if len(seen) != 3 || seen[0] != "A" || seen[1] != "B" || seen[2] != "C" {
		t.Errorf("expected A, B, C in order, got %v", seen)
	}
}

func TestExecute_CancelDuringDelay(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	u := New(ts.Client(), ts.URL, authHeaders(), time.Hour)

	input := make(chan interface{}, 2)
	input <- models.NewRecord(1, "A", "u")
	input <- models.NewRecord(2, "B", "u")
	close(input)
	output := make(chan interface{}, 2)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-output
		cancel()
	}()

	done := make(chan error)
	go func() { done <- u.Execute(ctx, input, output, logger) }()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("uploader did not stop on cancellation")
	}
}

func TestExecute_DelayFollowsAcceptedRecords(t *testing.T) {
	const delay = 50 * time.Millisecond

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["name"] == "B" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	tests := []struct {
		name    string
		records []string
		min     time.Duration
		max     time.Duration
	}{
		{"accepted then rejected", []string{"A", "B"}, delay, 2 * delay},
		{"single accepted", []string{"A"}, delay, 0},
		{"single rejected", []string{"B"}, 0, delay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := New(ts.Client(), ts.URL+"/apirequests", authHeaders(), delay)

			input := make(chan interface{}, len(tt.records))
			for i, name := range tt.records {
				input <- models.NewRecord(int64(i+1), name, "u")
			}
			close(input)
			output := make(chan interface{}, len(tt.records))

			start := time.Now()
			if err := u.Execute(context.Background(), input, output, zaptest.NewLogger(t)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			elapsed := time.Since(start)

			if elapsed < tt.min {
				t.Errorf("expected at least %s, took %s", tt.min, elapsed)
			}
			if tt.max > 0 && elapsed >= tt.max {
				t.Errorf("expected less than %s, took %s", tt.max, elapsed)
			}
		})
	}
}

func TestSubmit_BodyNotHTMLEscaped(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	record := models.NewRecord(1, "a", "https://api/search?a=1&b=<2>")
	result := New(ts.Client(), ts.URL, authHeaders(), 0).Submit(context.Background(), record)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if !strings.Contains(got, "?a=1&b=<2>") {
		t.Errorf("expected raw query string in body, got %s", got)
	}
}

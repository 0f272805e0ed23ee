package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"segue/internal/identity"
)

func introDBRequest() Request {
	return Request{Identity: identity.Identity{
		ImdbID:  "tt0903747",
		Season:  1,
		Episode: 3,
	}}
}

func TestIntroDBFetchSingleObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/intro" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("imdb_id") != "tt0903747" || query.Get("season") != "1" || query.Get("episode") != "3" {
			t.Fatalf("unexpected query %v", query)
		}
		w.Write([]byte(`{"start_sec":30,"end_sec":90}`))
	}))
	defer server.Close()

	client, err := NewIntroDB(server.URL, "", time.Second)
	if err != nil {
		t.Fatalf("NewIntroDB: %v", err)
	}
	set, err := client.Fetch(context.Background(), introDBRequest())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(set.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(set.Segments))
	}
	if set.Segments[0].StartSec != 30 || set.Segments[0].EndSec != 90 {
		t.Fatalf("segment = %+v", set.Segments[0])
	}
}

func TestIntroDBFetchArrayWithMixedKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"start":5,"end":30},{"startTime":1200,"endTime":1290}]`))
	}))
	defer server.Close()

	client, err := NewIntroDB(server.URL, "", time.Second)
	if err != nil {
		t.Fatalf("NewIntroDB: %v", err)
	}
	set, err := client.Fetch(context.Background(), introDBRequest())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(set.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(set.Segments))
	}
}

func TestIntroDBFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewIntroDB(server.URL, "", time.Second)
	if err != nil {
		t.Fatalf("NewIntroDB: %v", err)
	}
	set, err := client.Fetch(context.Background(), introDBRequest())
	if err != nil {
		t.Fatalf("404 should not be an error: %v", err)
	}
	if !set.Empty() {
		t.Fatalf("expected empty set, got %+v", set)
	}
}

func TestIntroDBSubmitSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/submit" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "idb_key" {
			t.Fatalf("api key header = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload["imdb_id"] != "tt0903747" || payload["start_sec"] != 30.0 {
			t.Fatalf("unexpected payload %v", payload)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := NewIntroDB(server.URL, "idb_key", time.Second)
	if err != nil {
		t.Fatalf("NewIntroDB: %v", err)
	}
	result, err := client.Submit(context.Background(), "", "tt0903747", 1, 3, 30, 90)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
}

func TestIntroDBSubmitDurationRule(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client, err := NewIntroDB(server.URL, "idb_key", time.Second)
	if err != nil {
		t.Fatalf("NewIntroDB: %v", err)
	}
	tests := []struct {
		name     string
		start    float64
		end      float64
	}{
		{"too short", 30, 33},
		{"too long", 30, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.Submit(context.Background(), "", "tt0903747", 1, 3, tt.start, tt.end)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if result.Success {
				t.Fatal("expected rejection")
			}
			if !strings.Contains(result.Message, "5-180") {
				t.Fatalf("message = %q", result.Message)
			}
		})
	}
	if called {
		t.Fatal("invalid durations must not reach the network")
	}
}

func TestIntroDBSubmitStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"bad request", http.StatusBadRequest, `{"error":"overlap"}`, "invalid request"},
		{"unauthorized", http.StatusUnauthorized, ``, "invalid api key"},
		{"rate limited", http.StatusTooManyRequests, ``, "rate limited"},
		{"server error", http.StatusInternalServerError, ``, "error 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewIntroDB(server.URL, "idb_key", time.Second)
			if err != nil {
				t.Fatalf("NewIntroDB: %v", err)
			}
			result, err := client.Submit(context.Background(), "", "tt0903747", 1, 3, 30, 90)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if result.Success {
				t.Fatal("expected failure")
			}
			if !strings.Contains(result.Message, tt.message) {
				t.Fatalf("message = %q, want substring %q", result.Message, tt.message)
			}
		})
	}
}

func TestIntroDBSubmitWithoutKey(t *testing.T) {
	client, err := NewIntroDB("http://example.invalid", "", time.Second)
	if err != nil {
		t.Fatalf("NewIntroDB: %v", err)
	}
	if client.CanSubmit() {
		t.Fatal("CanSubmit should be false without a key")
	}
	result, err := client.Submit(context.Background(), "", "tt0903747", 1, 3, 30, 90)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure without api key")
	}
}

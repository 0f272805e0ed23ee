package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestJikanSearchPrefersYearMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/anime" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Hunter x Hunter" {
			t.Fatalf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Fatalf("unexpected limit %q", got)
		}
		w.Write([]byte(`{"data":[
			{"mal_id":136,"title":"Hunter x Hunter","year":1999},
			{"mal_id":11061,"title":"Hunter x Hunter (2011)","year":2011}
		]}`))
	}))
	defer server.Close()

	client, err := NewJikan(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewJikan: %v", err)
	}
	malID, err := client.SearchMalID(context.Background(), "Hunter x Hunter", 2011)
	if err != nil {
		t.Fatalf("SearchMalID: %v", err)
	}
	if malID != 11061 {
		t.Fatalf("expected 11061, got %d", malID)
	}
}

func TestJikanSearchAiredFromFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"mal_id":1,"title":"Cowboy Bebop","aired":{"from":"1998-04-03T00:00:00+00:00"}},
			{"mal_id":5,"title":"Cowboy Bebop: The Movie","aired":{"from":"2001-09-01T00:00:00+00:00"}}
		]}`))
	}))
	defer server.Close()

	client, err := NewJikan(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewJikan: %v", err)
	}
	malID, err := client.SearchMalID(context.Background(), "Cowboy Bebop", 1998)
	if err != nil {
		t.Fatalf("SearchMalID: %v", err)
	}
	if malID != 1 {
		t.Fatalf("expected 1, got %d", malID)
	}
}

func TestJikanSearchFirstResultFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"mal_id":42,"title":"Completely Different Name","year":1990},
			{"mal_id":43,"title":"Also Unrelated","year":1991}
		]}`))
	}))
	defer server.Close()

	client, err := NewJikan(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewJikan: %v", err)
	}
	malID, err := client.SearchMalID(context.Background(), "Obscure Show", 2020)
	if err != nil {
		t.Fatalf("SearchMalID: %v", err)
	}
	if malID != 42 {
		t.Fatalf("expected first-result fallback 42, got %d", malID)
	}
}

func TestJikanSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client, err := NewJikan(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewJikan: %v", err)
	}
	malID, err := client.SearchMalID(context.Background(), "Nonexistent", 0)
	if err != nil {
		t.Fatalf("SearchMalID: %v", err)
	}
	if malID != 0 {
		t.Fatalf("expected 0, got %d", malID)
	}
}

func TestJikanSearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewJikan(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewJikan: %v", err)
	}
	if _, err := client.SearchMalID(context.Background(), "Cowboy Bebop", 1998); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

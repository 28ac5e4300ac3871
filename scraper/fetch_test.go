package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"price-scout/config"
	"price-scout/utils"
)

func testFetchConfig() *config.Config {
	return &config.Config{
		FetchMinJitterMs: 1,
		FetchMaxJitterMs: 2,
		FetchTimeoutMs:   2000,
		MaxRetries:       3,
		HostConcurrency:  2,
	}
}

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f, err := NewFetcher(testFetchConfig(), utils.NewLogger(false))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f
}

func TestFetchSuccessShortCircuits(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`<html><body><h1 id="x">hello</h1></body></html>`))
	}))
	defer srv.Close()

	doc := newTestFetcher(t).Fetch(context.Background(), srv.URL)
	if doc == nil {
		t.Fatal("expected a document, got nil")
	}
	if got := doc.Find("#x").Text(); got != "hello" {
		t.Errorf("document content: got %q, want %q", got, "hello")
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected exactly 1 request on success, got %d", hits)
	}
}

func TestFetchRetriesTransientFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`<html><body>ok</body></html>`))
	}))
	defer srv.Close()

	doc := newTestFetcher(t).Fetch(context.Background(), srv.URL)
	if doc == nil {
		t.Fatal("expected a document after retries, got nil")
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Errorf("expected 3 attempts, got %d", hits)
	}
}

func TestFetchExhaustionReturnsNil(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	doc := newTestFetcher(t).Fetch(context.Background(), srv.URL)
	if doc != nil {
		t.Fatal("expected nil document after exhausting attempts")
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Errorf("expected 3 attempts, got %d", hits)
	}
}

func TestFetchBacksOffOnRateLimit(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`<html><body>ok</body></html>`))
	}))
	defer srv.Close()

	doc := newTestFetcher(t).Fetch(context.Background(), srv.URL)
	if doc == nil {
		t.Fatal("expected a document after rate-limit backoff, got nil")
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("expected 2 attempts, got %d", hits)
	}
}

func TestFetchSendsClientIdentityHeaders(t *testing.T) {
	var ua, upgrade string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		upgrade = r.Header.Get("Upgrade-Insecure-Requests")
		w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	if doc := newTestFetcher(t).Fetch(context.Background(), srv.URL); doc == nil {
		t.Fatal("expected a document, got nil")
	}

	found := false
	for _, set := range headerSets {
		if set["User-Agent"] == ua {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("User-Agent %q is not one of the rotating header sets", ua)
	}
	if upgrade != "1" {
		t.Errorf("Upgrade-Insecure-Requests: got %q, want %q", upgrade, "1")
	}
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html></html>`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if doc := newTestFetcher(t).Fetch(ctx, srv.URL); doc != nil {
		t.Fatal("expected nil document for a cancelled context")
	}
}

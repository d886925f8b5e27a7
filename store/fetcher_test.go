package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"curseforge-badges/cfwidget"
	"curseforge-badges/config"

	"go.uber.org/zap"
)

type fakeUpstream struct {
	calls  atomic.Int64
	status atomic.Int64 // HTTP status to serve; 200 serves the project body
}

func (u *fakeUpstream) handler(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
	status := int(u.status.Load())
	if status != http.StatusOK {
		http.Error(w, "nope", status)
		return
	}
	_, _ = w.Write([]byte(`{"id":7,"title":"Iris","thumbnail":"","downloads":{"monthly":1,"total":1000}}`))
}

func newTestFetcher(t *testing.T, upstreamURL string) (*Fetcher, *Store) {
	t.Helper()

	cfg := config.Config{
		UpstreamURL:         upstreamURL,
		UserAgent:           "test-agent",
		RevalidateSeconds:   3600,
		StaleIfErrorSeconds: 7200,
	}
	client, err := cfwidget.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	s := openTestStore(t)
	return NewFetcher(client, s, cfg, zap.NewNop().Sugar()), s
}

func TestFetcherCachesWithinRevalidateWindow(t *testing.T) {
	upstream := &fakeUpstream{}
	upstream.status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(upstream.handler))
	defer srv.Close()

	f, _ := newTestFetcher(t, srv.URL)

	p, err := f.GetProject(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p.Title != "Iris" {
		t.Errorf("Title = %q, want Iris", p.Title)
	}

	if _, err := f.GetProject(context.Background(), 7); err != nil {
		t.Fatalf("GetProject (cached): %v", err)
	}
	if got := upstream.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1 (second request should hit the cache)", got)
	}
}

func TestFetcherServesStaleAndRefreshesInBackground(t *testing.T) {
	upstream := &fakeUpstream{}
	upstream.status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(upstream.handler))
	defer srv.Close()

	f, s := newTestFetcher(t, srv.URL)

	// Seed an entry two hours old: past the 1h revalidate window, inside the
	// stale-if-error window.
	staleAt := time.Now().Add(-2 * time.Hour)
	if err := s.Put(7, []byte(`{"id":7,"title":"Old Iris","downloads":{"total":900}}`), false, staleAt); err != nil {
		t.Fatalf("Put: %v", err)
	}

	p, err := f.GetProject(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p.Title != "Old Iris" {
		t.Errorf("Title = %q, want the stale Old Iris", p.Title)
	}

	// The background refresh should land shortly.
	deadline := time.Now().Add(5 * time.Second)
	for {
		entry, err := s.Get(7)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if entry != nil && entry.FetchedAt.After(staleAt.Add(time.Hour)) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("background refresh never updated the cache entry")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := upstream.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}

func TestFetcherExpiredEntryWithUpstreamDown(t *testing.T) {
	upstream := &fakeUpstream{}
	upstream.status.Store(http.StatusServiceUnavailable)
	srv := httptest.NewServer(http.HandlerFunc(upstream.handler))
	defer srv.Close()

	f, s := newTestFetcher(t, srv.URL)

	// Entry far beyond revalidate + stale-if-error.
	if err := s.Put(7, []byte(`{"id":7,"title":"Ancient"}`), false, time.Now().Add(-24*time.Hour)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, err := f.GetProject(context.Background(), 7)
	var upstreamErr *cfwidget.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Errorf("expected UpstreamError for expired entry with upstream down, got %v", err)
	}
}

func TestFetcherNegativeCache(t *testing.T) {
	upstream := &fakeUpstream{}
	upstream.status.Store(http.StatusNotFound)
	srv := httptest.NewServer(http.HandlerFunc(upstream.handler))
	defer srv.Close()

	f, _ := newTestFetcher(t, srv.URL)

	if _, err := f.GetProject(context.Background(), 9); !errors.Is(err, cfwidget.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if _, err := f.GetProject(context.Background(), 9); !errors.Is(err, cfwidget.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound from cache, got %v", err)
	}
	if got := upstream.calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1 (404 should be negatively cached)", got)
	}
}

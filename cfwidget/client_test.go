package cfwidget

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"curseforge-badges/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.Config{UpstreamURL: srv.URL, UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestGetProject(t *testing.T) {
	t.Run("decodes filtered fields and drops the rest", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/394468" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
				t.Errorf("unexpected user agent %s", ua)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": 394468,
				"title": "Sodium",
				"summary": "A modern rendering engine",
				"thumbnail": "https://example.com/icon.png",
				"downloads": {"monthly": 100, "total": 5000000},
				"members": [{"title": "Owner", "username": "jellysquid3", "id": 1}],
				"files": [],
				"accounts": {"secret": "should-not-survive"},
				"donate": "https://example.com/donate"
			}`))
		})

		p, err := client.GetProject(context.Background(), 394468)
		if err != nil {
			t.Fatalf("GetProject: %v", err)
		}
		if p.Title != "Sodium" {
			t.Errorf("Title = %q, want Sodium", p.Title)
		}
		if p.Downloads.Total != 5000000 {
			t.Errorf("Downloads.Total = %d, want 5000000", p.Downloads.Total)
		}
		if p.Owner() != "jellysquid3" {
			t.Errorf("Owner = %q, want jellysquid3", p.Owner())
		}
	})

	t.Run("caps the description", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id": 1, "title": "X", "description": "` + strings.Repeat("a", 6000) + `"}`))
		})

		p, err := client.GetProject(context.Background(), 1)
		if err != nil {
			t.Fatalf("GetProject: %v", err)
		}
		if len(p.Description) != maxDescriptionLen {
			t.Errorf("Description length = %d, want %d", len(p.Description), maxDescriptionLen)
		}
	})

	t.Run("caps the description on a rune boundary", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id": 1, "title": "X", "description": "` + strings.Repeat("ありがとう", 1200) + `"}`))
		})

		p, err := client.GetProject(context.Background(), 1)
		if err != nil {
			t.Fatalf("GetProject: %v", err)
		}
		runes := []rune(p.Description)
		if len(runes) != maxDescriptionLen {
			t.Errorf("Description rune count = %d, want %d", len(runes), maxDescriptionLen)
		}
		if !utf8.ValidString(p.Description) {
			t.Error("capped description is not valid UTF-8")
		}
	})

	t.Run("404 maps to ErrProjectNotFound", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		})

		_, err := client.GetProject(context.Background(), 1)
		if !errors.Is(err, ErrProjectNotFound) {
			t.Errorf("expected ErrProjectNotFound, got %v", err)
		}
	})

	t.Run("5xx maps to UpstreamError", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		})

		_, err := client.GetProject(context.Background(), 1)
		var upstreamErr *UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
		if upstreamErr.StatusCode != http.StatusBadGateway {
			t.Errorf("StatusCode = %d, want 502", upstreamErr.StatusCode)
		}
	})

	t.Run("malformed body maps to UpstreamError", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>definitely not json</html>"))
		})

		_, err := client.GetProject(context.Background(), 1)
		var upstreamErr *UpstreamError
		if !errors.As(err, &upstreamErr) {
			t.Errorf("expected UpstreamError, got %v", err)
		}
	})
}

// Package server exposes the badge and metadata endpoints over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"curseforge-badges/cfwidget"
	"curseforge-badges/config"
	"curseforge-badges/render"

	"go.uber.org/zap"
)

// ProjectFetcher provides cached project metadata.
type ProjectFetcher interface {
	GetProject(ctx context.Context, projectID int) (*cfwidget.Project, error)
}

type Server struct {
	cfg      config.Config
	fetcher  ProjectFetcher
	renderer render.Renderer
	log      *zap.SugaredLogger
	client   *http.Client
	http     *http.Server
}

func New(cfg config.Config, fetcher ProjectFetcher, renderer render.Renderer, log *zap.SugaredLogger) *Server {
	s := &Server{
		cfg:      cfg,
		fetcher:  fetcher,
		renderer: renderer,
		log:      log,
		client:   &http.Client{Timeout: 10 * time.Second},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/badge/{projectId}", s.handleBadge)
	mux.HandleFunc("GET /api/project/{projectId}", s.handleProject)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.http = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routing table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) ListenAndServe() error {
	s.log.Infow("Listening", "addr", s.cfg.ListenAddr)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"curseforge-badges/badge"
	"curseforge-badges/cfwidget"
	"curseforge-badges/render"
)

// Cache lifetime for "no such project" responses. Short, so a freshly
// published project shows up quickly.
const notFoundMaxAge = 300

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(r.PathValue("projectId"))
	if err != nil || projectID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	opts, err := badge.ParseOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.fetcher.GetProject(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, cfwidget.ErrProjectNotFound) {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", notFoundMaxAge))
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		s.log.Errorw("Failed to fetch project", "projectId", projectID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch project metadata")
		return
	}

	tag := badge.ETag(projectID, p, opts)
	w.Header().Set("ETag", tag)
	w.Header().Set("Vary", "Accept, Accept-Encoding")
	if etagMatch(r.Header.Get("If-None-Match"), tag) {
		w.Header().Set("Cache-Control", s.cacheControl(p))
		w.WriteHeader(http.StatusNotModified)
		return
	}

	icon, err := render.PrepareIcon(r.Context(), s.client, p.Thumbnail)
	if err != nil {
		s.log.Errorw("Failed to prepare thumbnail", "projectId", projectID, "error", err)
		w.Header().Set("Cache-Control", "no-store")
		writeError(w, http.StatusInternalServerError, "failed to prepare badge assets")
		return
	}

	b := badge.Build(p, opts, icon)
	img, err := s.renderer.Render(r.Context(), b)
	if err != nil {
		s.log.Errorw("Failed to render badge", "projectId", projectID, "error", err)
		w.Header().Set("Cache-Control", "no-store")
		status := http.StatusInternalServerError
		if errors.Is(err, render.ErrTimeout) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "failed to render badge")
		return
	}

	w.Header().Set("Content-Type", render.ContentType(opts.Format))
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", s.cacheControl(p))
	w.Write(img)
}

// cacheControl builds the success-path caching policy. With the popularity
// cache enabled, heavily downloaded projects get longer lifetimes since
// their numbers move slowly in relative terms.
func (s *Server) cacheControl(p *cfwidget.Project) string {
	maxAge := s.cfg.RevalidateSeconds
	if s.cfg.PopularityCache {
		maxAge = cfwidget.CacheDuration(p.Downloads.Total)
	}
	return fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, s.cfg.StaleIfErrorSeconds)
}

func etagMatch(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == tag || candidate == "*" {
			return true
		}
	}
	return false
}

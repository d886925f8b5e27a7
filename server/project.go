package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"curseforge-badges/cfwidget"
)

type latestVersionResponse struct {
	Version      string   `json:"version"`
	FileName     string   `json:"fileName"`
	FileSize     string   `json:"fileSize"`
	UploadedAt   string   `json:"uploadedAt"`
	GameVersions []string `json:"gameVersions"`
	DownloadURL  string   `json:"downloadUrl"`
}

type projectResponse struct {
	*cfwidget.Project
	Owner         string                 `json:"owner"`
	LatestVersion *latestVersionResponse `json:"latestVersion,omitempty"`
}

// handleProject serves the filtered metadata as JSON, for callers that want
// the numbers without an image.
func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.Atoi(r.PathValue("projectId"))
	if err != nil || projectID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid project id")
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

	resp := projectResponse{Project: p, Owner: p.Owner()}
	if latest := cfwidget.LatestFile(p); latest != nil {
		resp.LatestVersion = &latestVersionResponse{
			Version:      latest.Version,
			FileName:     latest.FileName,
			FileSize:     cfwidget.FormatFileSize(latest.FileSize),
			UploadedAt:   cfwidget.FormatDate(latest.UploadedAt),
			GameVersions: latest.GameVersions,
			DownloadURL:  latest.DownloadURL,
		}
	}

	w.Header().Set("Cache-Control", s.cacheControl(p))
	writeJSON(w, http.StatusOK, resp)
}

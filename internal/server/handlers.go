package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"trendpulse/internal/core"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// RunResponse is the successful trigger payload.
type RunResponse struct {
	OK bool `json:"ok"`
	core.RunSummary
}

// ErrorResponse is the failure payload.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := s.db.Ping(r.Context()); err != nil {
		checks["database"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
		return
	}
	checks["database"] = "ok"
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

// handleRunPipeline handles POST /api/pipeline/run. When a cron secret is
// configured, the bearer token must match.
func (s *Server) handleRunPipeline(w http.ResponseWriter, r *http.Request) {
	if s.cronSecret != "" {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token != s.cronSecret {
			s.respondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
	}

	summary, err := s.pipe.Run(r.Context())
	if err != nil {
		s.log.Error("pipeline run failed", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "pipeline run failed",
			Detail: err.Error(),
		})
		return
	}

	s.respondJSON(w, http.StatusOK, RunResponse{OK: true, RunSummary: *summary})
}

// handleLatestSnapshot handles GET /api/snapshots/latest: the most recent
// snapshot with its ranked keywords.
func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.db.Snapshots().Latest(r.Context())
	if err != nil {
		s.log.Error("latest snapshot lookup failed", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "snapshot lookup failed", Detail: err.Error()})
		return
	}
	if snapshot == nil {
		s.respondJSON(w, http.StatusNotFound, ErrorResponse{Error: "no snapshots yet"})
		return
	}

	keywords, err := s.db.Keywords().BySnapshot(r.Context(), snapshot.SnapshotID)
	if err != nil {
		s.log.Error("snapshot keywords lookup failed", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "keyword lookup failed", Detail: err.Error()})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"snapshot": snapshot,
		"keywords": keywords,
	})
}

// handleKeywordSources handles GET /api/keywords/{keywordId}/sources for
// the latest snapshot, counting the lookup in search_counts.
func (s *Server) handleKeywordSources(w http.ResponseWriter, r *http.Request) {
	keywordID := chi.URLParam(r, "keywordId")

	snapshot, err := s.db.Snapshots().Latest(r.Context())
	if err != nil || snapshot == nil {
		s.respondJSON(w, http.StatusNotFound, ErrorResponse{Error: "no snapshots yet"})
		return
	}

	if err := s.db.SearchCounts().Increment(r.Context(), keywordID); err != nil {
		s.log.Warn("search count increment failed", "keyword_id", keywordID, "error", err)
	}

	sources, err := s.db.Sources().ByKeyword(r.Context(), snapshot.SnapshotID, keywordID)
	if err != nil {
		s.log.Error("source lookup failed", "error", err)
		s.respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "source lookup failed", Detail: err.Error()})
		return
	}
	if sources == nil {
		sources = []core.SourceRow{}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"snapshotId": snapshot.SnapshotID,
		"keywordId":  keywordID,
		"sources":    sources,
	})
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

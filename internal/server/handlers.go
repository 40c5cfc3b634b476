package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/brownzinoart/weready/internal/core/errors"
	"github.com/brownzinoart/weready/internal/data/cache"
	"github.com/brownzinoart/weready/internal/data/history"
	"github.com/brownzinoart/weready/internal/detect"
)

type detectRequest struct {
	Source   string `json:"source"`
	Language string `json:"language"`
}

type detectResponse struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Cached    bool           `json:"cached"`
	Result    *detect.Result `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	lang, err := detect.ParseLanguage(req.Language)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	key := cache.Key(lang, req.Source)
	if result, ok := s.cache.Get(r.Context(), key); ok {
		writeJSON(w, http.StatusOK, detectResponse{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UTC(),
			Cached:    true,
			Result:    result,
		})
		return
	}

	result, err := s.service.Detect(r.Context(), req.Source, lang)
	if err != nil {
		if errors.IsCode(err, errors.CodeValidationError) {
			writeDomainError(w, err)
			return
		}
		// Cancellation or timeout: the partial outcome set must not be
		// scored, so the call fails hard.
		slog.Error("detection failed", "language", lang, "error", err)
		writeError(w, http.StatusServiceUnavailable, "detection did not complete")
		return
	}

	s.cache.Set(r.Context(), key, result)

	resp := detectResponse{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Result:    result,
	}

	if s.store != nil {
		report := history.Report{
			ID:         resp.ID,
			Timestamp:  resp.Timestamp,
			Language:   result.Language,
			Method:     string(result.Method),
			Score:      result.Score,
			Confidence: result.Confidence,
			TotalRefs:  result.TotalReferences,
			Unverified: result.Unverified,
		}
		if err := s.store.Save(report); err != nil {
			werr := errors.Wrap(err, errors.CodeUnavailable, "persist report")
			slog.Error("failed to persist report", "id", resp.ID, "error", werr)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeDomainError(w, errors.New(errors.CodeNotFound, "history is disabled"))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeDomainError(w, errors.New(errors.CodeValidationError, "limit must be a positive integer"))
			return
		}
		// The limit sizes the result allocation; never trust it unbounded.
		if n > history.MaxRecentLimit {
			n = history.MaxRecentLimit
		}
		limit = n
	}

	reports, err := s.store.Recent(limit)
	if err != nil {
		werr := errors.AddContext(errors.Wrap(err, errors.CodeUnavailable, "load reports"), errors.CtxOperation, "reports")
		slog.Error("failed to load reports", "error", werr)
		writeDomainError(w, werr)
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "up"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps DomainError codes onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsCode(err, errors.CodeValidationError), errors.IsCode(err, errors.CodeNotSupported):
		status = http.StatusBadRequest
	case errors.IsCode(err, errors.CodeNotFound):
		status = http.StatusNotFound
	case errors.IsCode(err, errors.CodeUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, err.Error())
}

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/acrsantana/project-guide/internal/apperr"
	"github.com/acrsantana/project-guide/internal/catalog"
)

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func runID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ListRuns handles GET /api/runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListRuns()
	if err != nil {
		slog.Error("list runs failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  items,
		"total": len(items),
	})
}

// GetRun handles GET /api/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := runID(r)
	detail, err := h.svc.GetRun(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get run failed", slog.String("run", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// GetFindings handles GET /api/runs/{id}/findings.
func (h *Handler) GetFindings(w http.ResponseWriter, r *http.Request) {
	id := runID(r)
	f, err := h.svc.Findings(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get findings failed", slog.String("run", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// GetTranscript handles GET /api/runs/{id}/transcript.
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	id := runID(r)
	text, err := h.svc.Transcript(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get transcript failed", slog.String("run", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeText(w, "text/plain; charset=utf-8", text)
}

// GetGuide handles GET /api/runs/{id}/guide.
func (h *Handler) GetGuide(w http.ResponseWriter, r *http.Request) {
	id := runID(r)
	text, err := h.svc.Guide(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get guide failed", slog.String("run", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeText(w, "text/markdown; charset=utf-8", text)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := h.svc.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if hits == nil {
		hits = []catalog.SearchHit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": hits,
		"total":   len(hits),
	})
}

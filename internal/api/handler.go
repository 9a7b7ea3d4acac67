package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mtlprog/budget/internal/cache"
	"github.com/mtlprog/budget/internal/chart"
	"github.com/mtlprog/budget/internal/date"
	"github.com/mtlprog/budget/internal/domain"
	"github.com/mtlprog/budget/internal/snapshot"
	"github.com/mtlprog/budget/internal/store"
	"github.com/mtlprog/budget/internal/valuation"
)

// Handler provides HTTP endpoints for the budget API.
type Handler struct {
	engine    *valuation.Engine
	stores    *store.Stores
	snapshots *snapshot.Service
	render    func(title string, lines ...chart.Line) ([]byte, error)
}

// NewHandler creates a new API handler. snapshots may be nil when no database is configured.
func NewHandler(engine *valuation.Engine, stores *store.Stores, snapshots *snapshot.Service) *Handler {
	return &Handler{engine: engine, stores: stores, snapshots: snapshots, render: chart.RenderSeries}
}

// cache opens a data cache for one request.
func (h *Handler) cache() *cache.Cache { return cache.New(h.stores) }

// dateQuery parses the named query parameter, defaulting to def.
func dateQuery(r *http.Request, name string, def date.Date) (date.Date, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return date.Date{}, domain.Errorf("invalid %s %q, expected YYYY-MM-DD", name, s)
	}
	return d, nil
}

// at is the ?date= parameter, today by default.
func (h *Handler) at(w http.ResponseWriter, r *http.Request) (date.Date, bool) {
	d, err := dateQuery(r, "date", h.engine.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return date.Date{}, false
	}
	return d, true
}

// GetLatestSnapshot handles GET /api/v1/snapshots/latest.
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	s, err := h.snapshots.GetLatest(r.Context())
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no snapshots found")
			return
		}
		slog.Error("failed to get latest snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetSnapshotByDate handles GET /api/v1/snapshots/{date}.
func (h *Handler) GetSnapshotByDate(w http.ResponseWriter, r *http.Request) {
	dateStr := r.PathValue("date")
	d, err := date.Parse(dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	s, err := h.snapshots.GetByDate(r.Context(), d)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "snapshot not found for date")
			return
		}
		slog.Error("failed to get snapshot by date", "date", dateStr, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListSnapshots handles GET /api/v1/snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	const maxLimit = 365
	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}

	snapshots, err := h.snapshots.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// GenerateSnapshot handles POST /api/v1/snapshots/generate.
func (h *Handler) GenerateSnapshot(w http.ResponseWriter, r *http.Request) {
	d := h.engine.Today()
	if s := r.FormValue("date"); s != "" {
		parsed, err := date.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
			return
		}
		d = parsed
	}

	data, err := h.snapshots.Generate(r.Context(), d)
	if err != nil {
		slog.Error("failed to generate snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate snapshot")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// writeStoreError maps a store mutation error to a response.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	default:
		slog.Error("store mutation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

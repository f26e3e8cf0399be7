package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/liao/internal/domain/model"
)

// HistoryDependencies is the event log surface used by HistoryHandler.
type HistoryDependencies interface {
	History(ctx context.Context) ([]model.HistoryRow, error)
	DeleteEvent(ctx context.Context, id int64) ([]model.LeaderboardEntry, error)
}

// HistoryHandler lists and removes scoring events.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetHistory handles GET /api/history, newest first.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_history"
	rows, err := h.deps.History(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if rows == nil {
		rows = []model.HistoryRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleDeleteEvent handles DELETE /api/history/{id} and returns the
// recomputed leaderboard.
func (h *HistoryHandler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_event"
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	entries, err := h.deps.DeleteEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

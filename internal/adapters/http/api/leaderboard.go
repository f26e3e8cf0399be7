package api

import (
	"context"
	"net/http"

	"github.com/okian/liao/internal/domain/model"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Teams(ctx context.Context) ([]model.Team, error)
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
	LeaderboardChart(ctx context.Context) ([]byte, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetTeams handles GET /api/teams.
func (h *LeaderboardHandler) HandleGetTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_teams"
	teams, err := h.deps.Teams(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleGetLeaderboard handles GET /api/leaderboard.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	entries, err := h.deps.Leaderboard(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGetChart handles GET /api/leaderboard/chart.png.
func (h *LeaderboardHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	png, err := h.deps.LeaderboardChart(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

package handlers

import (
	"net/http"

	"prediction-league/interfaces"

	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

// LeaderboardHandler serves computed standings
type LeaderboardHandler struct {
	base
	league interfaces.LeagueService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(r *render.Render, v *validator.Validate, league interfaces.LeagueService) *LeaderboardHandler {
	return &LeaderboardHandler{
		base:   newBase(r, v, "LeaderboardHandler"),
		league: league,
	}
}

// Leaderboard returns the ranked entries
func (h *LeaderboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.league.Leaderboard(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.render.JSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

// Weekly returns each user's points per week
func (h *LeaderboardHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	series, err := h.league.WeeklySeries(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.render.JSON(w, http.StatusOK, series)
}

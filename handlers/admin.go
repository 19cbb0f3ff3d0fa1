package handlers

import (
	"io"
	"net/http"
	"strings"

	"prediction-league/interfaces"
	"prediction-league/models"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

// AdminHandler serves the admin-only league management routes
type AdminHandler struct {
	base
	league interfaces.LeagueService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(r *render.Render, v *validator.Validate, league interfaces.LeagueService) *AdminHandler {
	return &AdminHandler{
		base:   newBase(r, v, "AdminHandler"),
		league: league,
	}
}

type addPlayerRequest struct {
	User string `json:"user" validate:"required,max=254"`
	Pwd  string `json:"pwd" validate:"required,min=4"`
	Name string `json:"name" validate:"max=100"`
}

type resultRequest struct {
	HomeGoals models.Goals `json:"hg"`
	AwayGoals models.Goals `json:"ag"`
}

type regenerateRequest struct {
	Teams []string `json:"teams" validate:"omitempty,min=2,dive,required,max=100"`
	Weeks int      `json:"weeks" validate:"gte=0,lte=1000"`
}

type importRequest struct {
	CSV string `json:"csv" validate:"required"`
}

// AddPlayer registers or replaces a player
func (h *AdminHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := h.decodeJSON(r, w, &req); err != nil {
		h.writeError(w, err)
		return
	}

	player, err := h.league.AddPlayer(r.Context(), req.User, req.Pwd, req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOK(w, map[string]any{"user": models.NormalizeEmail(req.User), "name": player.Name})
}

// RemovePlayer deletes a player's credentials
func (h *AdminHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	if err := h.league.RemovePlayer(r.Context(), user); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOK(w, nil)
}

// SetResult stores or clears a match result
func (h *AdminHandler) SetResult(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	week, err := pathInt(vars, "week")
	if err != nil {
		h.writeError(w, err)
		return
	}
	match, err := pathInt(vars, "match")
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req resultRequest
	if err := h.decodeJSON(r, w, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.league.SetResult(r.Context(), week, match, req.HomeGoals, req.AwayGoals); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOK(w, map[string]any{"key": models.ResultKey(week, match)})
}

// RegenerateSchedule rebuilds the schedule from the teams
func (h *AdminHandler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if err := h.decodeJSON(r, w, &req); err != nil {
		h.writeError(w, err)
		return
	}

	schedule, err := h.league.RegenerateSchedule(r.Context(), req.Teams, req.Weeks)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOK(w, map[string]any{"fixtures": len(schedule), "schedule": schedule})
}

// ImportSchedule replaces the schedule from CSV. The body is either the CSV
// text itself or JSON of the form {"csv": "..."}.
func (h *AdminHandler) ImportSchedule(w http.ResponseWriter, r *http.Request) {
	var text string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req importRequest
		if err := h.decodeJSON(r, w, &req); err != nil {
			h.writeError(w, err)
			return
		}
		text = req.CSV
	} else {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.writeError(w, &models.ValidationError{Field: "body", Reason: err.Error()})
			return
		}
		text = string(body)
	}

	schedule, err := h.league.ImportSchedule(r.Context(), text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOK(w, map[string]any{"imported": len(schedule)})
}

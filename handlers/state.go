package handlers

import (
	"net/http"

	"prediction-league/interfaces"
	"prediction-league/middleware"
	"prediction-league/models"

	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

// StateHandler serves the whole league document
type StateHandler struct {
	base
	league interfaces.LeagueService
	auth   interfaces.AuthService
}

// NewStateHandler creates a new state handler
func NewStateHandler(r *render.Render, v *validator.Validate, league interfaces.LeagueService, auth interfaces.AuthService) *StateHandler {
	return &StateHandler{
		base:   newBase(r, v, "StateHandler"),
		league: league,
		auth:   auth,
	}
}

type saveStateRequest struct {
	Data     *models.LeagueDocument `json:"data" validate:"required"`
	Version  *int64                 `json:"version" validate:"omitempty,gte=0"`
	Password string                 `json:"password"`
}

// GetState returns the league document; the ETag header carries its version.
// Player passwords are only included for admins.
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	doc, version, err := h.league.GetState(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !middleware.IsAdmin(r) {
		doc = doc.Redacted()
	}
	w.Header().Set("ETag", formatETag(version))
	h.render.JSON(w, http.StatusOK, doc)
}

// SaveState replaces the league document. The expected version comes from the
// body or an If-Match header; without either the write is unconditional.
func (h *StateHandler) SaveState(w http.ResponseWriter, r *http.Request) {
	var req saveStateRequest
	if err := h.decodeJSON(r, w, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if !middleware.IsAdmin(r) {
		if err := h.auth.CheckAdminPassword(req.Password); err != nil {
			h.render.JSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
	}

	expected := models.AnyVersion
	if req.Version != nil {
		expected = *req.Version
	} else if ifMatch := r.Header.Get("If-Match"); ifMatch != "" {
		v, ok := parseETag(ifMatch)
		if !ok {
			h.writeError(w, &models.ValidationError{Field: "If-Match", Reason: "not a document version"})
			return
		}
		expected = v
	}

	version, err := h.league.SaveState(r.Context(), req.Data, expected)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Infof("League %s saved by admin (version %d)", h.league.LeagueID(), version)
	w.Header().Set("ETag", formatETag(version))
	h.writeOK(w, map[string]any{"version": version})
}

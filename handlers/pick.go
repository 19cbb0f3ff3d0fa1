package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"prediction-league/interfaces"
	"prediction-league/middleware"
	"prediction-league/models"
	"prediction-league/services"

	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

// PickHandler records, submits and deletes predictions
type PickHandler struct {
	base
	league interfaces.LeagueService
	auth   interfaces.AuthService
}

// NewPickHandler creates a new pick handler
func NewPickHandler(r *render.Render, v *validator.Validate, league interfaces.LeagueService, auth interfaces.AuthService) *PickHandler {
	return &PickHandler{
		base:   newBase(r, v, "PickHandler"),
		league: league,
		auth:   auth,
	}
}

type pickRequest struct {
	Delete        bool        `json:"delete"`
	Submit        bool        `json:"submit"`
	Email         string      `json:"email" validate:"required,max=254"`
	Name          string      `json:"name" validate:"max=100"`
	Week          int         `json:"week" validate:"required,gt=0"`
	MatchNumber   *int        `json:"matchNumber" validate:"omitempty,gt=0"`
	Pick          models.Sign `json:"pick" validate:"omitempty,oneof=1 X 2"`
	SubmittedAt   string      `json:"submittedAt"`
	AdminPassword string      `json:"adminPassword"`
}

// HandlePick serves POST /api/pick. A body with delete set removes picks and
// needs admin rights; otherwise it records a pick, a submission, or both.
func (h *PickHandler) HandlePick(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := h.decodeJSON(r, w, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if req.Delete {
		h.deletePicks(w, r, req)
		return
	}

	email := models.NormalizeEmail(req.Email)
	if claims := middleware.GetClaimsFromContext(r); claims != nil && claims.Role == services.RolePlayer && claims.Username != email {
		h.writeError(w, fmt.Errorf("%w: %s", models.ErrForbidden, email))
		return
	}

	in := services.PickInput{
		Email:       email,
		Name:        req.Name,
		Week:        req.Week,
		Pick:        req.Pick,
		Submit:      req.Submit,
		SubmittedAt: req.SubmittedAt,
	}
	if req.MatchNumber != nil {
		in.MatchNumber = *req.MatchNumber
	}
	if err := h.league.RecordPick(r.Context(), in); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOK(w, nil)
}

func (h *PickHandler) deletePicks(w http.ResponseWriter, r *http.Request, req pickRequest) {
	if !middleware.IsAdmin(r) {
		if err := h.auth.CheckAdminPassword(req.AdminPassword); err != nil {
			if errors.Is(err, models.ErrAdminUnavailable) {
				h.writeError(w, err)
				return
			}
			h.render.JSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
	}

	match := 0
	if req.MatchNumber != nil {
		match = *req.MatchNumber
	}
	if err := h.league.DeletePicks(r.Context(), req.Email, req.Week, match); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeOK(w, nil)
}

package handlers

import (
	"net/http"

	"prediction-league/interfaces"

	"github.com/go-playground/validator/v10"
	"github.com/unrolled/render"
)

// AuthHandler handles admin and player logins
type AuthHandler struct {
	base
	auth   interfaces.AuthService
	league interfaces.LeagueService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(r *render.Render, v *validator.Validate, auth interfaces.AuthService, league interfaces.LeagueService) *AuthHandler {
	return &AuthHandler{
		base:   newBase(r, v, "AuthHandler"),
		auth:   auth,
		league: league,
	}
}

type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type playerLoginRequest struct {
	Username string `json:"username" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

// Status reports whether an admin password is configured
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.render.JSON(w, http.StatusOK, map[string]bool{"hasAdminPassword": h.auth.HasAdminPassword()})
}

// AdminLogin exchanges the admin password for an admin token
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := h.decodeJSON(r, w, &req); err != nil {
		h.render.JSON(w, http.StatusBadRequest, map[string]string{"error": "Missing password"})
		return
	}

	token, err := h.auth.AdminLogin(req.Password)
	if err != nil {
		h.logger.Warnf("Admin login failed: %v", err)
		h.writeError(w, err)
		return
	}
	h.logger.Info("Admin logged in")
	h.writeOK(w, map[string]any{"token": token})
}

// PlayerLogin checks a player's credentials and returns a player token
func (h *AuthHandler) PlayerLogin(w http.ResponseWriter, r *http.Request) {
	var req playerLoginRequest
	if err := h.decodeJSON(r, w, &req); err != nil {
		h.writeError(w, err)
		return
	}

	players, err := h.league.Players(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	token, name, err := h.auth.PlayerLogin(players, req.Username, req.Password)
	if err != nil {
		h.logger.Warnf("Player login failed for %s: %v", req.Username, err)
		h.writeError(w, err)
		return
	}
	h.logger.Infof("Player %s logged in", req.Username)
	h.writeOK(w, map[string]any{"token": token, "name": name})
}

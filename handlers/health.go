package handlers

import (
	"net/http"

	"prediction-league/interfaces"

	"github.com/unrolled/render"
)

// HealthInfo is the configuration summary reported by the health endpoint
type HealthInfo struct {
	StoreDriver     string
	LeagueID        string
	AdminConfigured bool
	JWTConfigured   bool
	SeedFile        string
	LockSubmitted   bool
}

// HealthHandler reports configuration flags and store connectivity
type HealthHandler struct {
	render *render.Render
	league interfaces.LeagueService
	store  any
	info   HealthInfo
}

// NewHealthHandler creates a new health handler. store may implement
// interfaces.DocumentCounter to report how many leagues it holds.
func NewHealthHandler(r *render.Render, league interfaces.LeagueService, store any, info HealthInfo) *HealthHandler {
	return &HealthHandler{render: r, league: league, store: store, info: info}
}

type healthDB struct {
	Driver    string  `json:"driver"`
	Connected bool    `json:"connected"`
	RowCount  *int64  `json:"rowCount"`
	Error     *string `json:"error"`
}

// Health always answers 200; failures are reported in the body
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	db := healthDB{Driver: h.info.StoreDriver}
	if err := h.league.Ping(r.Context()); err != nil {
		msg := err.Error()
		db.Error = &msg
	} else {
		db.Connected = true
		if counter, ok := h.store.(interfaces.DocumentCounter); ok {
			if n, err := counter.Count(r.Context()); err == nil {
				db.RowCount = &n
			} else {
				msg := err.Error()
				db.Error = &msg
			}
		}
	}

	h.render.JSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"env": map[string]any{
			"STORE_DRIVER":         h.info.StoreDriver,
			"ADMIN_PASSWORD":       h.info.AdminConfigured,
			"JWT_SECRET":           h.info.JWTConfigured,
			"LEAGUE_ID":            h.info.LeagueID,
			"LEAGUE_SEED_FILE":     h.info.SeedFile != "",
			"LOCK_SUBMITTED_WEEKS": h.info.LockSubmitted,
		},
		"db": db,
	})
}

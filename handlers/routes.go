package handlers

import (
	"net/http"
	"reflect"
	"strings"

	"prediction-league/interfaces"
	"prediction-league/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

// RouterDeps are the services the API is built from
type RouterDeps struct {
	League interfaces.LeagueService
	Auth   interfaces.AuthService
	Store  any
	Health HealthInfo
}

// NewValidator returns a validator that reports JSON field names
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewRouter wires every API route
func NewRouter(deps RouterDeps) *mux.Router {
	rnd := render.New()
	v := NewValidator()
	authMiddleware := middleware.NewAuthMiddleware(deps.Auth, rnd)

	stateHandler := NewStateHandler(rnd, v, deps.League, deps.Auth)
	pickHandler := NewPickHandler(rnd, v, deps.League, deps.Auth)
	authHandler := NewAuthHandler(rnd, v, deps.Auth, deps.League)
	adminHandler := NewAdminHandler(rnd, v, deps.League)
	leaderboardHandler := NewLeaderboardHandler(rnd, v, deps.League)
	healthHandler := NewHealthHandler(rnd, deps.League, deps.Store, deps.Health)

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	// Public and optionally authenticated routes
	public := api.NewRoute().Subrouter()
	public.Use(authMiddleware.OptionalAuth)
	public.HandleFunc("/state", stateHandler.GetState).Methods("GET")
	public.HandleFunc("/state", stateHandler.SaveState).Methods("POST")
	public.HandleFunc("/pick", pickHandler.HandlePick).Methods("POST")
	public.HandleFunc("/auth", authHandler.Status).Methods("GET")
	public.HandleFunc("/auth", authHandler.AdminLogin).Methods("POST")
	public.HandleFunc("/players/login", authHandler.PlayerLogin).Methods("POST")
	public.HandleFunc("/leaderboard", leaderboardHandler.Leaderboard).Methods("GET")
	public.HandleFunc("/leaderboard/weekly", leaderboardHandler.Weekly).Methods("GET")
	public.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware.RequireAdmin)
	admin.HandleFunc("/players", adminHandler.AddPlayer).Methods("POST")
	admin.HandleFunc("/players/{user}", adminHandler.RemovePlayer).Methods("DELETE")
	admin.HandleFunc("/results/{week:[0-9]+}/{match:[0-9]+}", adminHandler.SetResult).Methods("PUT")
	admin.HandleFunc("/schedule/regenerate", adminHandler.RegenerateSchedule).Methods("POST")
	admin.HandleFunc("/schedule/import", adminHandler.ImportSchedule).Methods("POST")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rnd.JSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	return r
}

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/machi-events/eventfinder/internal/api/recovery"
	"github.com/machi-events/eventfinder/internal/api/respond"
	"github.com/machi-events/eventfinder/internal/auth"
	"github.com/machi-events/eventfinder/internal/services"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Users     *services.UserService
	Favorites *services.FavoriteService
	Districts *services.DistrictService
	Events    *services.EventService
	Gate      *auth.Gate
	Health    *HealthHandler
	Log       zerolog.Logger
}

// NewRouter wires HTTP routes to handlers.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(
		hlog.NewHandler(d.Log),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.AccessHandler(accessLog),
		recovery.Middleware,
	)
	root.NotFoundHandler = hlog.NewHandler(d.Log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteNotFound(w, "route not found")
	}))
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Auth
	authH := NewAuthHandler(d.Users, d.Gate)
	root.HandleFunc("/api/auth/register", authH.Register).Methods("POST")
	root.HandleFunc("/api/auth/login", authH.Login).Methods("POST")
	root.HandleFunc("/api/auth/logout", authH.Logout).Methods("POST")
	root.Handle("/api/auth/me", d.Gate.RequireUser(http.HandlerFunc(authH.Me))).Methods("GET")

	// Districts
	districts := NewDistrictHandler(d.Districts)
	root.HandleFunc("/api/districts", districts.ListDistricts).Methods("GET")
	root.HandleFunc("/api/districts/{value}", districts.GetDistrict).Methods("GET")

	// Events
	events := NewEventHandler(d.Events)
	root.HandleFunc("/api/events", events.SearchEvents).Methods("GET")
	root.HandleFunc("/api/events/{id}", events.GetEvent).Methods("GET")

	// Favorites (session required)
	favorites := NewFavoriteHandler(d.Favorites)
	fav := root.PathPrefix("/api/favorites").Subrouter()
	fav.Use(d.Gate.RequireUser)
	fav.HandleFunc("", favorites.ListFavorites).Methods("GET")
	fav.HandleFunc("/check/{eventId}", favorites.CheckFavorite).Methods("GET")
	fav.HandleFunc("/{eventId}", favorites.AddFavorite).Methods("POST")
	fav.HandleFunc("/{eventId}", favorites.RemoveFavorite).Methods("DELETE")

	// Health
	health := d.Health
	if health == nil {
		health = NewHealthHandler(nil, nil)
	}
	root.HandleFunc("/api/health", health.CheckHealth).Methods("GET")
	return root
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	ev := hlog.FromRequest(r).Info()
	if status >= http.StatusInternalServerError {
		ev = hlog.FromRequest(r).Warn()
	}
	ev.Str("method", r.Method).
		Str("url", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

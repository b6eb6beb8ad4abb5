package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/machi-events/eventfinder/internal/api/respond"
	"github.com/machi-events/eventfinder/internal/api/validate"
	"github.com/machi-events/eventfinder/internal/auth"
	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/services"
)

// FavoriteHandler serves the favorites routes. Every route sits behind
// Gate.RequireUser, so a user is always present in the context.
type FavoriteHandler struct {
	svc *services.FavoriteService
}

func NewFavoriteHandler(svc *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

// userAndEvent pulls the session user and the {eventId} path variable.
// It writes the error response itself and returns ok=false on failure.
func userAndEvent(w http.ResponseWriter, r *http.Request) (*model.User, string, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "not authenticated")
		return nil, "", false
	}
	eventID := mux.Vars(r)["eventId"]
	if err := validate.EventID(eventID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return nil, "", false
	}
	return u, eventID, true
}

func (h *FavoriteHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "not authenticated")
		return
	}
	events, err := h.svc.List(r.Context(), u.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteList(w, "favorites", events)
}

func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	u, eventID, ok := userAndEvent(w, r)
	if !ok {
		return
	}
	fav, err := h.svc.Add(r.Context(), u.ID, eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, fav)
}

func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	u, eventID, ok := userAndEvent(w, r)
	if !ok {
		return
	}
	if err := h.svc.Remove(r.Context(), u.ID, eventID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "removed from favorites"})
}

func (h *FavoriteHandler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	u, eventID, ok := userAndEvent(w, r)
	if !ok {
		return
	}
	is, err := h.svc.IsFavorite(r.Context(), u.ID, eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"isFavorite": is})
}

package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/machi-events/eventfinder/internal/api/respond"
	"github.com/machi-events/eventfinder/internal/api/validate"
	"github.com/machi-events/eventfinder/internal/services"
)

type EventHandler struct {
	svc *services.EventService
}

func NewEventHandler(svc *services.EventService) *EventHandler { return &EventHandler{svc: svc} }

// SearchEvents handles GET /api/events?dateFrom&dateTo&district.
func (h *EventHandler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("dateFrom"), q.Get("dateTo")
	if err := validate.DateRange(from, to); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	events, err := h.svc.Search(r.Context(), from, to, q.Get("district"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteList(w, "events", events)
}

// GetEvent handles GET /api/events/{id}.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := validate.EventID(id); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	ev, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ev)
}

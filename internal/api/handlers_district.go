package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/machi-events/eventfinder/internal/api/respond"
	"github.com/machi-events/eventfinder/internal/services"
)

type DistrictHandler struct {
	svc *services.DistrictService
}

func NewDistrictHandler(svc *services.DistrictService) *DistrictHandler {
	return &DistrictHandler{svc: svc}
}

func (h *DistrictHandler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteList(w, "districts", list)
}

func (h *DistrictHandler) GetDistrict(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), mux.Vars(r)["value"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, d)
}

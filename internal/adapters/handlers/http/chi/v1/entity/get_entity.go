package entity

import (
	"net/http"
)

// GetEntityV1 returns one entity
func (h *HandlerV1) GetEntityV1(w http.ResponseWriter, r *http.Request) {

	kind, err := kindParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := idParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entity, err := h.entityService.Get(r.Context(), kind, id)
	if err != nil {
		h.writeError(w, "error getting entity", err)
		return
	}

	h.writeEntity(w, http.StatusOK, entity)
}

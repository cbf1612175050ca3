package entity

import (
	"net/http"
	"restaurant-menu/internal/core/port"
)

// CreateEntityV1 creates an entity of the kind named in the path from a JSON body
func (h *HandlerV1) CreateEntityV1(w http.ResponseWriter, r *http.Request) {

	kind, err := kindParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	fields, err := decodeDocument(r.Body)
	if err != nil {
		h.logger.Error("error decoding create entity request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entity, err := h.entityService.Create(r.Context(), port.CreateRequest{
		Kind:     kind,
		Fields:   fields,
		Actor:    r.Header.Get(ActorHeader),
		Timezone: timezoneOf(fields),
	})
	if err != nil {
		h.writeError(w, "error creating entity", err)
		return
	}

	h.writeEntity(w, http.StatusCreated, entity)
}

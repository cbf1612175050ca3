package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ActorHeader carries the id of the authenticated caller
const ActorHeader = "X-Actor-ID"

// HandlerV1 is the handler for v1 entity routes
type HandlerV1 struct {
	entityService port.EntityService
	logger        *slog.Logger
}

// NewEntityHandlerV1 creates HandlerV1
func NewEntityHandlerV1(service port.EntityService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		entityService: service,
		logger:        logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{kind}", h.ListEntitiesV1)
	router.Get("/{kind}/count", h.CountEntitiesV1)
	router.Post("/{kind}", h.CreateEntityV1)
	router.Get("/{kind}/{id}", h.GetEntityV1)
	router.Patch("/{kind}/{id}", h.UpdateEntityV1)

	return router
}

func kindParam(r *http.Request) (domain.EntityKind, error) {
	return domain.ParseEntityKind(chi.URLParam(r, "kind"))
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid entity id: %w", err)
	}
	return id, nil
}

// decodeDocument reads a JSON object keeping numbers as json.Number
func decodeDocument(r io.Reader) (domain.Document, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var doc domain.Document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Document{}, nil
		}
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	if doc == nil {
		doc = domain.Document{}
	}
	return doc, nil
}

func timezoneOf(doc domain.Document) string {
	timezone, _ := doc["timezone"].(string)
	return timezone
}

func (h *HandlerV1) writeEntity(w http.ResponseWriter, status int, entity *domain.Entity) {
	h.writeJSON(w, status, entity.View())
}

func (h *HandlerV1) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}

func (h *HandlerV1) writeError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrEntityNotFound):
		http.Error(w, "entity not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrUnknownProvider),
		errors.Is(err, domain.ErrValidationMismatch),
		errors.Is(err, domain.ErrMalformedCode):
		h.logger.Warn(msg, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotAcceptable):
		h.logger.Warn(msg, "error", err)
		http.Error(w, err.Error(), http.StatusNotAcceptable)
	case errors.Is(err, domain.ErrCodeConflict), errors.Is(err, domain.ErrAlreadyExists):
		h.logger.Warn(msg, "error", err)
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrUploadFailed):
		h.logger.Error(msg, "error", err)
		http.Error(w, "file upload failed", http.StatusBadGateway)
	default:
		h.logger.Error(msg, "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}
}

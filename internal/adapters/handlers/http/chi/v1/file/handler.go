package file

import (
	"log/slog"
	"os"
	"restaurant-menu/internal/core/port"

	"github.com/go-chi/chi/v5"
)

// LocalFiles reads back files stored on the local disk
type LocalFiles interface {
	Open(key string) (*os.File, error)
}

// HandlerV1 is the handler for v1 file routes
type HandlerV1 struct {
	router port.UploadRouter
	local  LocalFiles
	logger *slog.Logger
}

// NewFileHandlerV1 creates HandlerV1. local may be nil when the local
// provider is disabled.
func NewFileHandlerV1(router port.UploadRouter, local LocalFiles, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		router: router,
		local:  local,
		logger: logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/upload", h.UploadFilesV1)

	return router
}

package file

import (
	"errors"
	"net/http"
	"restaurant-menu/internal/adapters/storage/local"
	"restaurant-menu/internal/core/domain"

	"github.com/go-chi/chi/v5"
)

// ServeLocalV1 streams a file stored by the local provider
func (h *HandlerV1) ServeLocalV1(w http.ResponseWriter, r *http.Request) {

	if h.local == nil {
		http.NotFound(w, r)
		return
	}

	key := chi.URLParam(r, "key")
	f, err := h.local.Open(key)
	switch {
	case errors.Is(err, domain.ErrEntityNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, local.ErrInvalidKey):
		http.Error(w, "invalid file key", http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("error opening local file", "key", key, "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Error("error reading local file", "key", key, "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

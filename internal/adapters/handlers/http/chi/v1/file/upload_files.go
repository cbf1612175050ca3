package file

import (
	"encoding/json"
	"errors"
	"net/http"
	"restaurant-menu/internal/core/domain"
)

const maxMultipartMemory = 32 << 20

// V1UploadFilesResponse is the response to upload files
type V1UploadFilesResponse struct {
	Files []domain.StorageDescriptor `json:"files"`
}

// UploadFilesV1 stores every file of the multipart "files" field and returns
// where each one landed, in request order
func (h *HandlerV1) UploadFilesV1(w http.ResponseWriter, r *http.Request) {

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	provider, err := domain.ParseProvider(r.FormValue("provider"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	files, err := ReadFormFiles(r.MultipartForm.File["files"])
	if err != nil {
		h.logger.Error("error reading upload files request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(files) == 0 {
		http.Error(w, "provide at least one file", http.StatusBadRequest)
		return
	}

	descriptors, err := h.router.UploadMany(r.Context(), files, provider)
	switch {
	case errors.Is(err, domain.ErrUnknownProvider):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrUploadFailed):
		h.logger.Error("error uploading files", "error", err)
		http.Error(w, "file upload failed", http.StatusBadGateway)
		return
	case err != nil:
		h.logger.Error("error uploading files", "error", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(V1UploadFilesResponse{Files: descriptors}); err != nil {
			h.logger.Error("error encoding response", "error", err)
		}
	}
}

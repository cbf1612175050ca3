package entity

import (
	"fmt"
	"mime"
	"net/http"
	"restaurant-menu/internal/adapters/handlers/http/chi/v1/file"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"strings"
)

const (
	maxMultipartMemory = 32 << 20

	formData      = "data"
	formProvider  = "provider"
	formThumbnail = "thumbnail"
	formPictures  = "pictures"
	formVideos    = "videos"
)

// UpdateEntityV1 applies a partial update. The body is either a JSON patch or
// a multipart form holding the patch in its data field next to thumbnail,
// pictures and videos files.
func (h *HandlerV1) UpdateEntityV1(w http.ResponseWriter, r *http.Request) {

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

	req := port.UpdateRequest{
		Kind:  kind,
		ID:    id,
		Actor: r.Header.Get(ActorHeader),
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err = readMultipartUpdate(r, &req)
	} else {
		req.Patch, err = decodeDocument(r.Body)
	}
	if err != nil {
		h.logger.Error("error decoding update entity request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Timezone = timezoneOf(req.Patch)

	entity, err := h.entityService.Update(r.Context(), req)
	if err != nil {
		h.writeError(w, "error updating entity", err)
		return
	}

	h.writeEntity(w, http.StatusOK, entity)
}

func readMultipartUpdate(r *http.Request, req *port.UpdateRequest) error {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	patch, err := decodeDocument(strings.NewReader(r.FormValue(formData)))
	if err != nil {
		return err
	}
	req.Patch = patch

	provider := r.FormValue(formProvider)
	if provider == "" {
		provider = r.URL.Query().Get(formProvider)
	}
	req.Provider, err = domain.ParseProvider(provider)
	if err != nil {
		return err
	}

	thumbnails, err := file.ReadFormFiles(r.MultipartForm.File[formThumbnail])
	if err != nil {
		return err
	}
	if len(thumbnails) > 0 {
		req.Files.Thumbnail = &thumbnails[0]
	}
	if req.Files.Pictures, err = file.ReadFormFiles(r.MultipartForm.File[formPictures]); err != nil {
		return err
	}
	if req.Files.Videos, err = file.ReadFormFiles(r.MultipartForm.File[formVideos]); err != nil {
		return err
	}
	return nil
}

package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"strconv"
	"strings"
)

// V1Pagination describes the page returned by a listing
type V1Pagination struct {
	Total int64 `json:"total"`
	Limit int   `json:"limit"`
	Skip  int   `json:"skip"`
}

// V1ListEntitiesResponse is the response to list entities
type V1ListEntitiesResponse struct {
	Data       []domain.Document `json:"data"`
	Pagination *V1Pagination     `json:"pagination,omitempty"`
}

// V1CountEntitiesResponse is the response to count entities
type V1CountEntitiesResponse struct {
	Count int64 `json:"count"`
}

// ListEntitiesV1 lists the entities of the kind named in the path.
// Query parameters: filter (JSON object), sort (JSON object of 1/-1),
// limit, skip, noCondition and pagination.
func (h *HandlerV1) ListEntitiesV1(w http.ResponseWriter, r *http.Request) {

	req, err := listRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.entityService.List(r.Context(), req)
	if err != nil {
		h.writeError(w, "error listing entities", err)
		return
	}

	response := V1ListEntitiesResponse{Data: make([]domain.Document, len(page.Entities))}
	for i, entity := range page.Entities {
		response.Data[i] = entity.View()
	}
	if page.Total != nil {
		response.Pagination = &V1Pagination{Total: *page.Total, Limit: page.Limit, Skip: page.Skip}
	}

	h.writeJSON(w, http.StatusOK, response)
}

// CountEntitiesV1 counts the entities of the kind named in the path
func (h *HandlerV1) CountEntitiesV1(w http.ResponseWriter, r *http.Request) {

	req, err := listRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	total, err := h.entityService.Count(r.Context(), req)
	if err != nil {
		h.writeError(w, "error counting entities", err)
		return
	}

	h.writeJSON(w, http.StatusOK, V1CountEntitiesResponse{Count: total})
}

func listRequest(r *http.Request) (port.ListRequest, error) {
	kind, err := kindParam(r)
	if err != nil {
		return port.ListRequest{}, err
	}
	values := r.URL.Query()

	req := port.ListRequest{
		Kind:        kind,
		NoCondition: values.Get("noCondition") == "true",
		Pagination:  values.Get("pagination") == "true",
	}

	if raw := values.Get("filter"); raw != "" {
		if req.Filter, err = decodeDocument(strings.NewReader(raw)); err != nil {
			return port.ListRequest{}, fmt.Errorf("invalid filter: %w", err)
		}
	}
	if req.Sort, err = parseSort(values.Get("sort")); err != nil {
		return port.ListRequest{}, err
	}
	if req.Limit, err = intParam(values, "limit"); err != nil {
		return port.ListRequest{}, err
	}
	if req.Skip, err = intParam(values, "skip"); err != nil {
		return port.ListRequest{}, err
	}
	return req, nil
}

func intParam(values url.Values, name string) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

// parseSort reads a JSON object of key to direction, keeping key order.
// A direction is 1, -1, "asc" or "desc".
func parseSort(raw string) ([]domain.SortField, error) {
	if raw == "" {
		return nil, nil
	}
	errInvalid := errors.New("invalid sort: expected an object of 1 or -1")

	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	if token, err := decoder.Token(); err != nil || token != json.Delim('{') {
		return nil, errInvalid
	}

	var fields []domain.SortField
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, errInvalid
		}
		key, _ := token.(string)
		var direction any
		if err := decoder.Decode(&direction); err != nil || key == "" {
			return nil, errInvalid
		}

		var descending bool
		switch strings.ToLower(fmt.Sprint(direction)) {
		case "1", "asc":
		case "-1", "desc":
			descending = true
		default:
			return nil, errInvalid
		}
		fields = append(fields, domain.SortField{Key: key, Descending: descending})
	}
	return fields, nil
}

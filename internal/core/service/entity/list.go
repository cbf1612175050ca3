package entity

import (
	"context"
	"fmt"
	"maps"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
)

// DefaultListLimit is the page size of a listing without limit
const DefaultListLimit = 10

// List returns one page of the entities of a kind matching req
func (s *entityService) List(ctx context.Context, req port.ListRequest) (*domain.EntityPage, error) {
	if _, err := lookup(req.Kind); err != nil {
		return nil, err
	}

	query := domain.EntityQuery{
		Filter: searchFilter(req),
		Sort:   req.Sort,
		Limit:  req.Limit,
		Skip:   max(req.Skip, 0),
	}
	if query.Limit <= 0 {
		query.Limit = DefaultListLimit
	}

	entities, err := s.repo.List(ctx, req.Kind, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", req.Kind, err)
	}
	page := &domain.EntityPage{
		Entities: entities,
		Limit:    query.Limit,
		Skip:     query.Skip,
	}

	if req.Pagination {
		total, err := s.repo.Count(ctx, req.Kind, query.Filter)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", req.Kind, err)
		}
		page.Total = &total
	}
	return page, nil
}

// Count returns the number of entities of a kind matching req
func (s *entityService) Count(ctx context.Context, req port.ListRequest) (int64, error) {
	if _, err := lookup(req.Kind); err != nil {
		return 0, err
	}
	total, err := s.repo.Count(ctx, req.Kind, searchFilter(req))
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", req.Kind, err)
	}
	return total, nil
}

func searchFilter(req port.ListRequest) domain.Document {
	filter := domain.Document{}
	if !req.NoCondition {
		filter[fieldIsActive] = true
		filter[fieldIsDeleted] = false
	}
	maps.Copy(filter, req.Filter)
	return filter
}

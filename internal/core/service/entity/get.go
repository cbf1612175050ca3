package entity

import (
	"context"
	"restaurant-menu/internal/core/domain"

	"github.com/google/uuid"
)

// Get returns a stored entity
func (s *entityService) Get(ctx context.Context, kind domain.EntityKind, id uuid.UUID) (*domain.Entity, error) {
	if _, err := lookup(kind); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, kind, id)
}

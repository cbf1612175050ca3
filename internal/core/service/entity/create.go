package entity

import (
	"context"
	"errors"
	"fmt"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	slugAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz1234567890"
	slugLength         = 8
	initialProfileRate = 25
)

// Create builds a new entity from req, allocating its domain code when the
// kind has one
func (s *entityService) Create(ctx context.Context, req port.CreateRequest) (*domain.Entity, error) {
	def, err := lookup(req.Kind)
	if err != nil {
		return nil, err
	}

	fields := def.sanitize(req.Kind, req.Fields)
	for key, value := range def.defaults {
		if _, ok := fields[key]; !ok {
			fields[key] = value
		}
	}

	if err := s.prepareCreate(req.Kind, fields); err != nil {
		return nil, err
	}
	assignIdentities(def.schema, fields)

	now := s.stamp(req.Timezone)
	entity := domain.Entity{
		ID:        uuid.New(),
		Kind:      req.Kind,
		Fields:    fields,
		CreatedAt: now,
		CreatedBy: req.Actor,
		UpdatedAt: now,
		UpdatedBy: req.Actor,
	}

	if err := s.persistNew(ctx, def, &entity); err != nil {
		return nil, err
	}

	s.logger.Info("entity created", "kind", entity.Kind, "id", entity.ID, "code", entity.Code)

	s.afterCreate(ctx, entity, req)

	return &entity, nil
}

// persistNew stores entity. A code already taken by a concurrent create is
// re-allocated and the insert retried.
func (s *entityService) persistNew(ctx context.Context, def definition, entity *domain.Entity) error {
	operation := func() error {
		if def.prefix != "" {
			code, err := s.allocator.Next(ctx, entity.Kind, def.prefix)
			if err != nil {
				return backoff.Permanent(err)
			}
			entity.Code = code
		}

		err := s.repo.Create(ctx, *entity)
		if errors.Is(err, domain.ErrCodeConflict) && def.prefix != "" {
			if s.metrics != nil {
				s.metrics.IncCodeConflict(def.prefix)
			}
			s.logger.Warn("domain code already taken, retrying", "kind", entity.Kind, "code", entity.Code)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(b, s.createAttempts-1), ctx)

	if err := backoff.Retry(operation, retry); err != nil {
		return fmt.Errorf("failed to create %s: %w", entity.Kind, err)
	}
	return nil
}

func (s *entityService) prepareCreate(kind domain.EntityKind, fields domain.Document) error {
	switch kind {
	case domain.EntityKindRestaurant:
		if name, ok := fields[fieldName].(string); ok && name != "" {
			fields[fieldNameSlug] = slug.Make(name)
		}
		id, err := gonanoid.Generate(slugAlphabet, slugLength)
		if err != nil {
			return fmt.Errorf("failed to generate slug: %w", err)
		}
		fields[fieldSlug] = id
		fields[fieldProfile] = initialProfileRate
		normalizeLocation(fields)
	case domain.EntityKindOrder:
		normalizeLocation(fields)
	}
	return nil
}

// afterCreate runs the side effects of a persisted create. Their failures are
// logged: the entity is stored and a retried create would duplicate it.
func (s *entityService) afterCreate(ctx context.Context, entity domain.Entity, req port.CreateRequest) {
	switch entity.Kind {
	case domain.EntityKindRestaurant:
		// the creator joins the restaurant as its owner
		_, err := s.Create(ctx, port.CreateRequest{
			Kind: domain.EntityKindEmployee,
			Fields: domain.Document{
				"user":            req.Actor,
				fieldRestaurant:   entity.ID.String(),
				fieldStatus:       EmployeeStatusJoined,
				"role":            "BRANCH_MANAGER",
				"isAdmin":         true,
				"isOwner":         true,
				"isBranchManager": true,
			},
			Actor:    req.Actor,
			Timezone: req.Timezone,
		})
		if err != nil {
			s.logger.Error("failed to register restaurant owner", "id", entity.ID, "code", entity.Code, "error", err)
		}
		s.publish(ctx, entity, domain.EventTypeCreated, "")
	case domain.EntityKindOrder:
		audience := "admin"
		if restaurant, ok := entity.Fields[fieldRestaurant].(string); ok && restaurant != "" {
			audience = "admin-" + restaurant
		}
		s.publish(ctx, entity, domain.EventTypeCreated, audience)
	default:
		s.publish(ctx, entity, domain.EventTypeCreated, "")
	}
}

func (s *entityService) publish(ctx context.Context, entity domain.Entity, eventType domain.EventType, audience string) {
	if s.publisher == nil {
		return
	}
	event := domain.EntityEvent{
		Type:       eventType,
		Kind:       entity.Kind,
		EntityID:   entity.ID,
		Code:       entity.Code,
		Audience:   audience,
		Actor:      entity.UpdatedBy,
		OccurredAt: entity.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "subject", event.Subject(), "id", entity.ID, "error", err)
	}
}

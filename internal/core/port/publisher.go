package port

import (
	"context"
	"restaurant-menu/internal/core/domain"
)

// EventPublisher is an interface to define an event publisher (nats, ...)
type EventPublisher interface {
	Publish(ctx context.Context, event domain.EntityEvent) error
}

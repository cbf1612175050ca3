package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType is a type that represents the type of an entity event
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeUpdated   EventType = "updated"
	EventTypeConfirmed EventType = "confirmed"
)

// EntityEvent is emitted after an entity was persisted
type EntityEvent struct {
	Type       EventType  `json:"type"`
	Kind       EntityKind `json:"kind"`
	EntityID   uuid.UUID  `json:"entityId"`
	Code       string     `json:"code,omitempty"`
	Audience   string     `json:"audience,omitempty"`
	Actor      string     `json:"actor,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// Subject returns the routing subject of the event, e.g. order.confirmed
func (e EntityEvent) Subject() string {
	return string(e.Kind) + "." + string(e.Type)
}

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is the untyped body of a stored entity or of a partial update
type Document = map[string]any

// EntityKind represents the type of a stored entity
type EntityKind string

const (
	EntityKindRestaurant EntityKind = "restaurant"
	EntityKindMenu       EntityKind = "menu"
	EntityKindCategory   EntityKind = "category"
	EntityKindOrder      EntityKind = "order"
	EntityKindEmployee   EntityKind = "employee"
)

// ParseEntityKind validates an entity kind name
func ParseEntityKind(name string) (EntityKind, error) {
	k := EntityKind(name)
	switch k {
	case EntityKindRestaurant, EntityKindMenu, EntityKindCategory, EntityKindOrder, EntityKindEmployee:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, name)
	}
}

// CodeField returns the document key exposing the domain code of the kind,
// empty for kinds without one
func (k EntityKind) CodeField() string {
	switch k {
	case EntityKindRestaurant:
		return "restaurantId"
	case EntityKindOrder:
		return "orderId"
	default:
		return ""
	}
}

// Entity is a stored document with its audit metadata
type Entity struct {
	ID        uuid.UUID
	Kind      EntityKind
	Code      string
	Fields    Document
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
}

// View returns the entity as one flat document, metadata included
func (e Entity) View() Document {
	view := make(Document, len(e.Fields)+6)
	for k, v := range e.Fields {
		view[k] = v
	}
	view["id"] = e.ID.String()
	if field := e.Kind.CodeField(); field != "" && e.Code != "" {
		view[field] = e.Code
	}
	view["createdAt"] = e.CreatedAt
	view["createdBy"] = e.CreatedBy
	view["updatedAt"] = e.UpdatedAt
	view["updatedBy"] = e.UpdatedBy
	return view
}

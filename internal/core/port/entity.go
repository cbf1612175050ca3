package port

import (
	"context"
	"restaurant-menu/internal/core/domain"

	"github.com/google/uuid"
)

// EntityRepository is an interface to define entity persistence
type EntityRepository interface {
	FindByID(ctx context.Context, kind domain.EntityKind, id uuid.UUID) (*domain.Entity, error)
	// FindLatestCode returns the code of the most recently created entity of
	// kind whose code starts with prefix, nil when there is none
	FindLatestCode(ctx context.Context, kind domain.EntityKind, prefix string) (*string, error)
	Create(ctx context.Context, entity domain.Entity) error
	Save(ctx context.Context, entity domain.Entity) error
	List(ctx context.Context, kind domain.EntityKind, query domain.EntityQuery) ([]domain.Entity, error)
	Count(ctx context.Context, kind domain.EntityKind, filter domain.Document) (int64, error)
}

// CreateRequest is the input of an entity creation
type CreateRequest struct {
	Kind     domain.EntityKind
	Fields   domain.Document
	Actor    string
	Timezone string
}

// UpdateFiles holds the files attached to an update, keyed by field
type UpdateFiles struct {
	Thumbnail *domain.UploadFile
	Pictures  []domain.UploadFile
	Videos    []domain.UploadFile
}

// Empty reports whether no file is attached
func (f UpdateFiles) Empty() bool {
	return f.Thumbnail == nil && len(f.Pictures) == 0 && len(f.Videos) == 0
}

// UpdateRequest is the input of an entity update
type UpdateRequest struct {
	Kind     domain.EntityKind
	ID       uuid.UUID
	Patch    domain.Document
	Files    UpdateFiles
	Provider domain.Provider
	Actor    string
	Timezone string
}

// ListRequest is the input of an entity listing. Unless NoCondition is set
// only active, non deleted entities match; Filter is applied on top.
type ListRequest struct {
	Kind        domain.EntityKind
	Filter      domain.Document
	NoCondition bool
	Sort        []domain.SortField
	Limit       int
	Skip        int
	Pagination  bool
}

// EntityService is an interface to define entity operations
type EntityService interface {
	Create(ctx context.Context, req CreateRequest) (*domain.Entity, error)
	Update(ctx context.Context, req UpdateRequest) (*domain.Entity, error)
	Get(ctx context.Context, kind domain.EntityKind, id uuid.UUID) (*domain.Entity, error)
	List(ctx context.Context, req ListRequest) (*domain.EntityPage, error)
	Count(ctx context.Context, req ListRequest) (int64, error)
}

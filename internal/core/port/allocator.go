package port

import (
	"context"
	"restaurant-menu/internal/core/domain"
)

// CodeAllocator is an interface to compute the next domain code of a prefix
type CodeAllocator interface {
	Next(ctx context.Context, kind domain.EntityKind, prefix string) (string, error)
}

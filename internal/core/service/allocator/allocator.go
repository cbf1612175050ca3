package allocator

import (
	"context"
	"fmt"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"restaurant-menu/internal/core/sequence"
)

type latestCodeAllocator struct {
	repo port.EntityRepository
}

// NewLatestCodeAllocator creates an allocator deriving the next code from the
// most recently created entity. Two concurrent calls may return the same code,
// the store's unique index rejects the second insert.
func NewLatestCodeAllocator(repo port.EntityRepository) port.CodeAllocator {
	return &latestCodeAllocator{repo: repo}
}

// Next returns the code following the latest stored one
func (a *latestCodeAllocator) Next(ctx context.Context, kind domain.EntityKind, prefix string) (string, error) {
	last, err := a.repo.FindLatestCode(ctx, kind, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to read latest %s code: %w", kind, err)
	}
	return sequence.Allocate(prefix, last)
}

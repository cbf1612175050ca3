package allocator

import (
	"context"
	"restaurant-menu/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockAllocator is a mock implementation of CodeAllocator
type MockAllocator struct {
	mock.Mock
}

func NewMockAllocator() *MockAllocator {
	return &MockAllocator{}
}

func (m *MockAllocator) Next(ctx context.Context, kind domain.EntityKind, prefix string) (string, error) {
	args := m.Called(ctx, kind, prefix)
	return args.String(0), args.Error(1)
}

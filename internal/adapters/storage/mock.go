package storage

import (
	"context"
	"restaurant-menu/internal/core/port"

	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of StorageProvider
type MockProvider struct {
	mock.Mock
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Put(ctx context.Context, object port.PutObject) (string, error) {
	args := m.Called(ctx, object)
	return args.String(0), args.Error(1)
}

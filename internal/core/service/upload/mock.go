package upload

import (
	"context"
	"restaurant-menu/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockRouter is a mock implementation of UploadRouter
type MockRouter struct {
	mock.Mock
}

func NewMockRouter() *MockRouter {
	return &MockRouter{}
}

func (m *MockRouter) Upload(ctx context.Context, file domain.UploadFile, override domain.Provider) (domain.StorageDescriptor, error) {
	args := m.Called(ctx, file, override)
	return args.Get(0).(domain.StorageDescriptor), args.Error(1)
}

func (m *MockRouter) UploadMany(ctx context.Context, files []domain.UploadFile, override domain.Provider) ([]domain.StorageDescriptor, error) {
	args := m.Called(ctx, files, override)
	return args.Get(0).([]domain.StorageDescriptor), args.Error(1)
}

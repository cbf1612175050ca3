package entity

import (
	"context"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEntityService is a mock implementation of EntityService
type MockEntityService struct {
	mock.Mock
}

func NewMockEntityService() *MockEntityService {
	return &MockEntityService{}
}

func (m *MockEntityService) Create(ctx context.Context, req port.CreateRequest) (*domain.Entity, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *MockEntityService) Update(ctx context.Context, req port.UpdateRequest) (*domain.Entity, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *MockEntityService) Get(ctx context.Context, kind domain.EntityKind, id uuid.UUID) (*domain.Entity, error) {
	args := m.Called(ctx, kind, id)
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *MockEntityService) List(ctx context.Context, req port.ListRequest) (*domain.EntityPage, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*domain.EntityPage), args.Error(1)
}

func (m *MockEntityService) Count(ctx context.Context, req port.ListRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

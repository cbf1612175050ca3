package repository

import (
	"context"
	"restaurant-menu/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockEntityRepository struct {
	mock.Mock
}

func NewMockEntityRepository() *MockEntityRepository {
	return &MockEntityRepository{}
}

func (m *MockEntityRepository) FindByID(ctx context.Context, kind domain.EntityKind, id uuid.UUID) (*domain.Entity, error) {
	args := m.Called(ctx, kind, id)
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *MockEntityRepository) FindLatestCode(ctx context.Context, kind domain.EntityKind, prefix string) (*string, error) {
	args := m.Called(ctx, kind, prefix)
	return args.Get(0).(*string), args.Error(1)
}

func (m *MockEntityRepository) Create(ctx context.Context, entity domain.Entity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockEntityRepository) Save(ctx context.Context, entity domain.Entity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockEntityRepository) List(ctx context.Context, kind domain.EntityKind, query domain.EntityQuery) ([]domain.Entity, error) {
	args := m.Called(ctx, kind, query)
	return args.Get(0).([]domain.Entity), args.Error(1)
}

func (m *MockEntityRepository) Count(ctx context.Context, kind domain.EntityKind, filter domain.Document) (int64, error) {
	args := m.Called(ctx, kind, filter)
	return args.Get(0).(int64), args.Error(1)
}

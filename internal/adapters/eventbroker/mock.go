package eventbroker

import (
	"context"
	"restaurant-menu/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.EntityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

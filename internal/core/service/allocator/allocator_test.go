package allocator_test

import (
	"context"
	"restaurant-menu/internal/adapters/repository"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/service/allocator"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext(t *testing.T) {
	ctx := context.Background()

	t.Run("first code of a prefix", func(t *testing.T) {
		//Arrange
		mockRepo := repository.NewMockEntityRepository()
		mockRepo.On("FindLatestCode", ctx, domain.EntityKindRestaurant, "RES").Return((*string)(nil), nil)
		alloc := allocator.NewLatestCodeAllocator(mockRepo)

		//Act
		code, err := alloc.Next(ctx, domain.EntityKindRestaurant, "RES")

		//Assert
		require.NoError(t, err)
		assert.Equal(t, "RES00000001", code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("follows the latest code", func(t *testing.T) {
		last := "ORD00000041"
		mockRepo := repository.NewMockEntityRepository()
		mockRepo.On("FindLatestCode", ctx, domain.EntityKindOrder, "ORD").Return(&last, nil)
		alloc := allocator.NewLatestCodeAllocator(mockRepo)

		code, err := alloc.Next(ctx, domain.EntityKindOrder, "ORD")

		require.NoError(t, err)
		assert.Equal(t, "ORD00000042", code)
	})

	t.Run("concurrent reads of the same latest code collide", func(t *testing.T) {
		last := "RES00000007"
		mockRepo := repository.NewMockEntityRepository()
		mockRepo.On("FindLatestCode", ctx, domain.EntityKindRestaurant, "RES").Return(&last, nil)
		alloc := allocator.NewLatestCodeAllocator(mockRepo)

		first, err := alloc.Next(ctx, domain.EntityKindRestaurant, "RES")
		require.NoError(t, err)
		second, err := alloc.Next(ctx, domain.EntityKindRestaurant, "RES")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("repository failure", func(t *testing.T) {
		mockRepo := repository.NewMockEntityRepository()
		mockRepo.On("FindLatestCode", ctx, domain.EntityKindRestaurant, "RES").Return((*string)(nil), assert.AnError)
		alloc := allocator.NewLatestCodeAllocator(mockRepo)

		_, err := alloc.Next(ctx, domain.EntityKindRestaurant, "RES")

		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("malformed latest code", func(t *testing.T) {
		last := "RESabc"
		mockRepo := repository.NewMockEntityRepository()
		mockRepo.On("FindLatestCode", ctx, domain.EntityKindRestaurant, "RES").Return(&last, nil)
		alloc := allocator.NewLatestCodeAllocator(mockRepo)

		_, err := alloc.Next(ctx, domain.EntityKindRestaurant, "RES")

		require.ErrorIs(t, err, domain.ErrMalformedCode)
	})
}

package entity_test

import (
	"context"
	"io"
	"log/slog"
	"restaurant-menu/internal/adapters/eventbroker"
	"restaurant-menu/internal/adapters/repository"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"restaurant-menu/internal/core/service/allocator"
	"restaurant-menu/internal/core/service/entity"
	"restaurant-menu/internal/core/service/upload"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newService(repo port.EntityRepository, router port.UploadRouter, alloc port.CodeAllocator, opts ...entity.Option) port.EntityService {
	opts = append([]entity.Option{
		entity.WithClock(func() time.Time { return fixedNow }),
		entity.WithCreateRetry(3, time.Millisecond),
	}, opts...)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return entity.NewEntityService(repo, router, alloc, logger, opts...)
}

func ofKind(kind domain.EntityKind) any {
	return mock.MatchedBy(func(e domain.Entity) bool { return e.Kind == kind })
}

func withCode(code string) any {
	return mock.MatchedBy(func(e domain.Entity) bool { return e.Code == code })
}

func TestCreate_restaurant(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockAlloc.On("Next", ctx, domain.EntityKindRestaurant, "RES").Return("RES00000001", nil)
	mockRepo.On("Create", ctx, ofKind(domain.EntityKindRestaurant)).Return(nil)
	mockRepo.On("Create", ctx, ofKind(domain.EntityKindEmployee)).Return(nil)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc)

	//Act
	created, err := service.Create(ctx, port.CreateRequest{
		Kind: domain.EntityKindRestaurant,
		Fields: domain.Document{
			"name":     "Le Petit Bistro",
			"location": domain.Document{"lat": 46.05, "lng": 14.5},
			"socials":  []any{domain.Document{"name": "facebook", "link": "https://fb.com/bistro"}},
		},
		Actor: "user-1",
	})

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "RES00000001", created.Code)
	assert.Equal(t, "le-petit-bistro", created.Fields["nameSlug"])
	assert.Len(t, created.Fields["slug"], 8)
	assert.Equal(t, 25, created.Fields["profilePercentage"])
	assert.Equal(t, 2, created.Fields["tableCount"])
	assert.Equal(t, true, created.Fields["isActive"])
	assert.Equal(t, domain.Document{
		"lat":         46.05,
		"lng":         14.5,
		"type":        "Point",
		"coordinates": []any{14.5, 46.05},
	}, created.Fields["location"])
	socials := created.Fields["socials"].([]any)
	assert.NotEmpty(t, socials[0].(domain.Document)["id"])
	assert.Equal(t, "user-1", created.CreatedBy)
	assert.Equal(t, "user-1", created.UpdatedBy)
	assert.Equal(t, fixedNow, created.CreatedAt)
	mockRepo.AssertExpectations(t)
	mockAlloc.AssertExpectations(t)
}

func TestCreate_restaurantRegistersOwner(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockAlloc.On("Next", ctx, domain.EntityKindRestaurant, "RES").Return("RES00000001", nil)
	mockRepo.On("Create", ctx, ofKind(domain.EntityKindRestaurant)).Return(nil)
	var owner domain.Entity
	mockRepo.On("Create", ctx, ofKind(domain.EntityKindEmployee)).
		Run(func(args mock.Arguments) { owner = args.Get(1).(domain.Entity) }).
		Return(nil)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc)

	//Act
	created, err := service.Create(ctx, port.CreateRequest{
		Kind:   domain.EntityKindRestaurant,
		Fields: domain.Document{"name": "Bistro"},
		Actor:  "user-1",
	})

	//Assert
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), owner.Fields["restaurant"])
	assert.Equal(t, "user-1", owner.Fields["user"])
	assert.Equal(t, "BRANCH_MANAGER", owner.Fields["role"])
	assert.Equal(t, true, owner.Fields["isOwner"])
	assert.Empty(t, owner.Code)
}

func TestCreate_ownerRegistrationFailureKeepsRestaurant(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockAlloc.On("Next", ctx, domain.EntityKindRestaurant, "RES").Return("RES00000001", nil)
	mockRepo.On("Create", ctx, ofKind(domain.EntityKindRestaurant)).Return(nil).Once()
	mockRepo.On("Create", ctx, ofKind(domain.EntityKindEmployee)).Return(assert.AnError)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc)

	//Act
	created, err := service.Create(ctx, port.CreateRequest{
		Kind:   domain.EntityKindRestaurant,
		Fields: domain.Document{"name": "Bistro"},
		Actor:  "user-1",
	})

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "RES00000001", created.Code)
	mockRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestCreate_reservedKeysAreIgnored(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockAlloc.On("Next", ctx, domain.EntityKindOrder, "ORD").Return("ORD00000005", nil)
	mockRepo.On("Create", ctx, ofKind(domain.EntityKindOrder)).Return(nil)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc)

	//Act
	created, err := service.Create(ctx, port.CreateRequest{
		Kind: domain.EntityKindOrder,
		Fields: domain.Document{
			"orderId":   "ORD99999999",
			"id":        "forged",
			"createdBy": "someone-else",
			"timezone":  "Europe/Ljubljana",
			"status":    "CONFIRM",
		},
		Actor: "user-1",
	})

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "ORD00000005", created.Code)
	assert.Equal(t, "user-1", created.CreatedBy)
	assert.NotContains(t, created.Fields, "orderId")
	assert.NotContains(t, created.Fields, "id")
	assert.NotContains(t, created.Fields, "createdBy")
	assert.NotContains(t, created.Fields, "timezone")
	assert.Equal(t, "CONFIRM", created.Fields["status"])
	assert.Equal(t, "PENDING", created.Fields["paymentStatus"])
}

func TestCreate_codeConflictIsRetried(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockAlloc.On("Next", ctx, domain.EntityKindOrder, "ORD").Return("ORD00000001", nil).Once()
	mockAlloc.On("Next", ctx, domain.EntityKindOrder, "ORD").Return("ORD00000002", nil).Once()
	mockRepo.On("Create", ctx, withCode("ORD00000001")).Return(domain.ErrCodeConflict)
	mockRepo.On("Create", ctx, withCode("ORD00000002")).Return(nil)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc)

	//Act
	created, err := service.Create(ctx, port.CreateRequest{Kind: domain.EntityKindOrder, Actor: "user-1"})

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "ORD00000002", created.Code)
	mockAlloc.AssertNumberOfCalls(t, "Next", 2)
	mockRepo.AssertExpectations(t)
}

func TestCreate_codeConflictExhaustsAttempts(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockAlloc.On("Next", ctx, domain.EntityKindOrder, "ORD").Return("ORD00000001", nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(domain.ErrCodeConflict)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc)

	//Act
	_, err := service.Create(ctx, port.CreateRequest{Kind: domain.EntityKindOrder})

	//Assert
	require.ErrorIs(t, err, domain.ErrCodeConflict)
	mockAlloc.AssertNumberOfCalls(t, "Next", 3)
	mockRepo.AssertNumberOfCalls(t, "Create", 3)
}

func TestCreate_repositoryFailureIsNotRetried(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockAlloc.On("Next", ctx, domain.EntityKindOrder, "ORD").Return("ORD00000001", nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(assert.AnError)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc)

	//Act
	_, err := service.Create(ctx, port.CreateRequest{Kind: domain.EntityKindOrder})

	//Assert
	require.ErrorIs(t, err, assert.AnError)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestCreate_allocatorFailure(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockAlloc.On("Next", ctx, domain.EntityKindOrder, "ORD").Return("", domain.ErrCodeSpaceExhausted)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc)

	//Act
	_, err := service.Create(ctx, port.CreateRequest{Kind: domain.EntityKindOrder})

	//Assert
	require.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockAlloc.AssertNumberOfCalls(t, "Next", 1)
}

func TestCreate_kindWithoutCode(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockRepo.On("Create", ctx, ofKind(domain.EntityKindMenu)).Return(nil)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc)

	//Act
	created, err := service.Create(ctx, port.CreateRequest{
		Kind:   domain.EntityKindMenu,
		Fields: domain.Document{"item": "Soup", "price": 4.5},
	})

	//Assert
	require.NoError(t, err)
	assert.Empty(t, created.Code)
	assert.Equal(t, "Soup", created.Fields["item"])
	mockAlloc.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_unknownKind(t *testing.T) {
	service := newService(repository.NewMockEntityRepository(), upload.NewMockRouter(), allocator.NewMockAllocator())

	_, err := service.Create(context.Background(), port.CreateRequest{Kind: "invoice"})

	require.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestCreate_timezone(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockRepo.On("Create", ctx, mock.Anything).Return(nil)
	service := newService(mockRepo, upload.NewMockRouter(), allocator.NewMockAllocator())

	//Act
	valid, err := service.Create(ctx, port.CreateRequest{Kind: domain.EntityKindCategory, Timezone: "Asia/Dhaka"})
	require.NoError(t, err)
	invalid, err := service.Create(ctx, port.CreateRequest{Kind: domain.EntityKindCategory, Timezone: "Mars/Olympus"})
	require.NoError(t, err)

	//Assert
	assert.Equal(t, "Asia/Dhaka", valid.CreatedAt.Location().String())
	assert.True(t, valid.CreatedAt.Equal(fixedNow))
	assert.Equal(t, fixedNow, invalid.CreatedAt)
}

func TestCreate_orderPublishesEvent(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockAlloc := allocator.NewMockAllocator()
	mockPublisher := eventbroker.NewMockPublisher()
	mockAlloc.On("Next", ctx, domain.EntityKindOrder, "ORD").Return("ORD00000003", nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockPublisher.On("Publish", ctx, mock.MatchedBy(func(e domain.EntityEvent) bool {
		return e.Type == domain.EventTypeCreated && e.Code == "ORD00000003" && e.Audience == "admin-r-42"
	})).Return(nil)
	service := newService(mockRepo, upload.NewMockRouter(), mockAlloc, entity.WithPublisher(mockPublisher))

	//Act
	_, err := service.Create(ctx, port.CreateRequest{
		Kind:   domain.EntityKindOrder,
		Fields: domain.Document{"restaurant": "r-42"},
	})

	//Assert
	require.NoError(t, err)
	mockPublisher.AssertExpectations(t)
}

func TestCreate_publishFailureDoesNotFailCreate(t *testing.T) {

	//Arrange
	ctx := context.Background()
	mockRepo := repository.NewMockEntityRepository()
	mockPublisher := eventbroker.NewMockPublisher()
	mockRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockPublisher.On("Publish", ctx, mock.Anything).Return(assert.AnError)
	service := newService(mockRepo, upload.NewMockRouter(), allocator.NewMockAllocator(), entity.WithPublisher(mockPublisher))

	//Act
	created, err := service.Create(ctx, port.CreateRequest{Kind: domain.EntityKindCategory})

	//Assert
	require.NoError(t, err)
	assert.NotNil(t, created)
	mockPublisher.AssertExpectations(t)
}

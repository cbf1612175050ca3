package nats_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	nats2 "restaurant-menu/internal/adapters/eventbroker/nats"
	"restaurant-menu/internal/config"
	"restaurant-menu/internal/core/domain"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupNATSContainer(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "nats:2.10-alpine",
		ExposedPorts: []string{"4222/tcp"},
		Cmd:          []string{"-js"},
		WaitingFor:   wait.ForLog("Server is ready"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "4222")
	require.NoError(t, err)

	cleanup := func() {
		_ = container.Terminate(ctx)
	}

	return "nats://" + host + ":" + mappedPort.Port(), cleanup
}

func testConfig(url string) config.NATSConfig {
	return config.NATSConfig{
		URL:           url,
		ClientName:    "test",
		StreamName:    "TEST_EVENTS",
		SubjectPrefix: "restaurant",
	}
}

func TestPublisher_Publish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	// Arrange
	natsURL, cleanup := setupNATSContainer(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := nats2.NewNATSPublisher(ctx, testConfig(natsURL), logger)
	require.NoError(t, err)
	defer publisher.Close()

	event := domain.EntityEvent{
		Type:       domain.EventTypeConfirmed,
		Kind:       domain.EntityKindOrder,
		EntityID:   uuid.New(),
		Code:       "ORD00000001",
		Audience:   "admin",
		Actor:      "user-1",
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	nc, err := nats.Connect(natsURL)
	require.NoError(t, err)
	defer nc.Close()
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	// Act
	err = publisher.Publish(ctx, event)
	require.NoError(t, err)

	// Assert
	stream, err := js.Stream(ctx, "TEST_EVENTS")
	require.NoError(t, err)
	msg, err := stream.GetLastMsgForSubject(ctx, "restaurant.order.confirmed")
	require.NoError(t, err)

	var received domain.EntityEvent
	require.NoError(t, json.Unmarshal(msg.Data, &received))
	assert.Equal(t, event, received)
}

func TestPublisher_DuplicateEventIsDeduplicated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	// Arrange
	natsURL, cleanup := setupNATSContainer(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := nats2.NewNATSPublisher(ctx, testConfig(natsURL), logger)
	require.NoError(t, err)
	defer publisher.Close()

	event := domain.EntityEvent{
		Type:       domain.EventTypeCreated,
		Kind:       domain.EntityKindRestaurant,
		EntityID:   uuid.New(),
		OccurredAt: time.Now(),
	}

	// Act
	require.NoError(t, publisher.Publish(ctx, event))
	require.NoError(t, publisher.Publish(ctx, event))

	// Assert
	nc, err := nats.Connect(natsURL)
	require.NoError(t, err)
	defer nc.Close()
	js, err := jetstream.New(nc)
	require.NoError(t, err)
	stream, err := js.Stream(ctx, "TEST_EVENTS")
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
}

func TestNewNATSPublisher_unreachable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := nats2.NewNATSPublisher(context.Background(), testConfig("nats://127.0.0.1:1"), logger)

	assert.Error(t, err)
}

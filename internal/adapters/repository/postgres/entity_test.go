package postgres_test

import (
	"context"
	"encoding/json"
	"restaurant-menu/internal/adapters/repository/postgres"
	"restaurant-menu/internal/core/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newEntity(kind domain.EntityKind, code string, at time.Time) domain.Entity {
	return domain.Entity{
		ID:        uuid.New(),
		Kind:      kind,
		Code:      code,
		Fields:    domain.Document{"name": "Bistro", "tableCount": 2},
		CreatedAt: at,
		CreatedBy: "owner",
		UpdatedAt: at,
		UpdatedBy: "owner",
	}
}

func TestSqlEntityRepository_CreateAndFind(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := postgres.NewSqlEntityRepository(dbConnection)

	t.Run("nominal", func(t *testing.T) {
		truncate()
		entity := newEntity(domain.EntityKindRestaurant, "RES00000001", createdAt)
		entity.Fields["pictures"] = []any{domain.Document{"id": "p1", "uri": "https://cdn/p1.png"}}
		require.NoError(t, repo.Create(ctx, entity))

		found, err := repo.FindByID(ctx, domain.EntityKindRestaurant, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.ID, found.ID)
		assert.Equal(t, "RES00000001", found.Code)
		assert.Equal(t, "Bistro", found.Fields["name"])
		assert.Equal(t, json.Number("2"), found.Fields["tableCount"])
		assert.Equal(t, []any{map[string]any{"id": "p1", "uri": "https://cdn/p1.png"}}, found.Fields["pictures"])
		assert.True(t, createdAt.Equal(found.CreatedAt))
		assert.Equal(t, "owner", found.CreatedBy)
	})

	t.Run("not found", func(t *testing.T) {
		truncate()
		_, err := repo.FindByID(ctx, domain.EntityKindRestaurant, uuid.New())
		require.ErrorIs(t, err, domain.ErrEntityNotFound)
	})

	t.Run("wrong kind", func(t *testing.T) {
		truncate()
		entity := newEntity(domain.EntityKindMenu, "", createdAt)
		require.NoError(t, repo.Create(ctx, entity))

		_, err := repo.FindByID(ctx, domain.EntityKindCategory, entity.ID)
		require.ErrorIs(t, err, domain.ErrEntityNotFound)
	})

	t.Run("code already taken", func(t *testing.T) {
		truncate()
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindOrder, "ORD00000001", createdAt)))

		err := repo.Create(ctx, newEntity(domain.EntityKindOrder, "ORD00000001", createdAt))
		require.ErrorIs(t, err, domain.ErrCodeConflict)
	})

	t.Run("same code on another kind", func(t *testing.T) {
		truncate()
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindOrder, "X00000001", createdAt)))
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindRestaurant, "X00000001", createdAt)))
	})

	t.Run("entities without code", func(t *testing.T) {
		truncate()
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindEmployee, "", createdAt)))
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindEmployee, "", createdAt)))
	})

	t.Run("duplicate id", func(t *testing.T) {
		truncate()
		entity := newEntity(domain.EntityKindMenu, "", createdAt)
		require.NoError(t, repo.Create(ctx, entity))

		err := repo.Create(ctx, entity)
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	})
}

func TestSqlEntityRepository_Save(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := postgres.NewSqlEntityRepository(dbConnection)

	t.Run("nominal", func(t *testing.T) {
		truncate()
		entity := newEntity(domain.EntityKindRestaurant, "RES00000001", createdAt)
		require.NoError(t, repo.Create(ctx, entity))

		entity.Fields = domain.Document{"name": "Grand Bistro"}
		entity.UpdatedAt = createdAt.Add(time.Hour)
		entity.UpdatedBy = "editor"
		require.NoError(t, repo.Save(ctx, entity))

		found, err := repo.FindByID(ctx, domain.EntityKindRestaurant, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Document{"name": "Grand Bistro"}, found.Fields)
		assert.Equal(t, "editor", found.UpdatedBy)
		assert.True(t, entity.UpdatedAt.Equal(found.UpdatedAt))
		assert.True(t, createdAt.Equal(found.CreatedAt))
		assert.Equal(t, "owner", found.CreatedBy)
		assert.Equal(t, "RES00000001", found.Code)
	})

	t.Run("not found", func(t *testing.T) {
		truncate()
		err := repo.Save(ctx, newEntity(domain.EntityKindRestaurant, "", createdAt))
		require.ErrorIs(t, err, domain.ErrEntityNotFound)
	})
}

func TestSqlEntityRepository_FindLatestCode(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := postgres.NewSqlEntityRepository(dbConnection)

	t.Run("no entity", func(t *testing.T) {
		truncate()
		code, err := repo.FindLatestCode(ctx, domain.EntityKindOrder, "ORD")
		require.NoError(t, err)
		assert.Nil(t, code)
	})

	t.Run("latest created wins", func(t *testing.T) {
		truncate()
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindOrder, "ORD00000007", createdAt)))
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindOrder, "ORD00000003", createdAt.Add(time.Minute))))
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindRestaurant, "RES00000042", createdAt.Add(time.Hour))))

		code, err := repo.FindLatestCode(ctx, domain.EntityKindOrder, "ORD")
		require.NoError(t, err)
		require.NotNil(t, code)
		assert.Equal(t, "ORD00000003", *code)
	})

	t.Run("insertion order breaks ties", func(t *testing.T) {
		truncate()
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindOrder, "ORD00000001", createdAt)))
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindOrder, "ORD00000002", createdAt)))

		code, err := repo.FindLatestCode(ctx, domain.EntityKindOrder, "ORD")
		require.NoError(t, err)
		require.NotNil(t, code)
		assert.Equal(t, "ORD00000002", *code)
	})

	t.Run("entities without code are skipped", func(t *testing.T) {
		truncate()
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindOrder, "ORD00000005", createdAt)))
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindOrder, "", createdAt.Add(time.Minute))))

		code, err := repo.FindLatestCode(ctx, domain.EntityKindOrder, "ORD")
		require.NoError(t, err)
		require.NotNil(t, code)
		assert.Equal(t, "ORD00000005", *code)
	})
}

func TestSqlEntityRepository_List(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()

	repo := postgres.NewSqlEntityRepository(dbConnection)

	seed := func(t *testing.T) {
		t.Helper()
		truncate()
		first := newEntity(domain.EntityKindRestaurant, "RES00000001", createdAt)
		first.Fields = domain.Document{"name": "Bistro", "isActive": true, "isDeleted": false, "location": domain.Document{"city": "Ljubljana"}}
		second := newEntity(domain.EntityKindRestaurant, "RES00000002", createdAt.Add(time.Minute))
		second.Fields = domain.Document{"name": "Atelje", "isActive": true, "isDeleted": false, "location": domain.Document{"city": "Maribor"}}
		third := newEntity(domain.EntityKindRestaurant, "RES00000003", createdAt.Add(2*time.Minute))
		third.Fields = domain.Document{"name": "Cantina", "isActive": false, "isDeleted": true}
		for _, e := range []domain.Entity{first, second, third} {
			require.NoError(t, repo.Create(ctx, e))
		}
		require.NoError(t, repo.Create(ctx, newEntity(domain.EntityKindMenu, "", createdAt)))
	}

	codes := func(entities []domain.Entity) []string {
		out := make([]string, len(entities))
		for i, e := range entities {
			out[i] = e.Code
		}
		return out
	}

	t.Run("newest first by default", func(t *testing.T) {
		seed(t)

		entities, err := repo.List(ctx, domain.EntityKindRestaurant, domain.EntityQuery{Filter: domain.Document{}})

		require.NoError(t, err)
		assert.Equal(t, []string{"RES00000003", "RES00000002", "RES00000001"}, codes(entities))
	})

	t.Run("containment filter", func(t *testing.T) {
		seed(t)

		entities, err := repo.List(ctx, domain.EntityKindRestaurant, domain.EntityQuery{
			Filter: domain.Document{"isActive": true, "isDeleted": false},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"RES00000002", "RES00000001"}, codes(entities))
	})

	t.Run("nested filter", func(t *testing.T) {
		seed(t)

		entities, err := repo.List(ctx, domain.EntityKindRestaurant, domain.EntityQuery{
			Filter: domain.Document{"location": domain.Document{"city": "Maribor"}},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"RES00000002"}, codes(entities))
	})

	t.Run("code field filter", func(t *testing.T) {
		seed(t)

		entities, err := repo.List(ctx, domain.EntityKindRestaurant, domain.EntityQuery{
			Filter: domain.Document{"restaurantId": "RES00000001"},
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"RES00000001"}, codes(entities))
	})

	t.Run("sort limit and skip", func(t *testing.T) {
		seed(t)

		entities, err := repo.List(ctx, domain.EntityKindRestaurant, domain.EntityQuery{
			Sort:  []domain.SortField{{Key: "name"}},
			Limit: 2,
			Skip:  1,
		})

		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, "Bistro", entities[0].Fields["name"])
		assert.Equal(t, "Cantina", entities[1].Fields["name"])
	})

	t.Run("count", func(t *testing.T) {
		seed(t)

		total, err := repo.Count(ctx, domain.EntityKindRestaurant, domain.Document{"isActive": true, "isDeleted": false})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)

		total, err = repo.Count(ctx, domain.EntityKindRestaurant, domain.Document{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})
}

package repository

import (
	"context"
	"testing"

	"bistro/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDishRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedDishes(t, pool, testDishes())

	repo := NewDishRepository(pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("Existing dish", func(t *testing.T) {
		dish, err := repo.GetByID(ctx, "D001")

		require.NoError(t, err)
		require.NotNil(t, dish)
		assert.Equal(t, "Tomato Soup", dish.Name)
		assert.True(t, dish.Price.Equal(decimal.RequireFromString("4.50")))
		assert.Equal(t, 120, dish.Calories)
		assert.Equal(t, []string{"tomato", "basil"}, dish.Ingredients)
		assert.True(t, dish.Available)
	})

	t.Run("Disabled dish is returned", func(t *testing.T) {
		dish, err := repo.GetByID(ctx, "D003")

		require.NoError(t, err)
		require.NotNil(t, dish)
		assert.False(t, dish.Available)
	})

	t.Run("Missing dish returns nil", func(t *testing.T) {
		dish, err := repo.GetByID(ctx, "D999")

		require.NoError(t, err)
		assert.Nil(t, dish)
	})
}

func TestDishRepository_GetByIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedDishes(t, pool, testDishes())

	repo := NewDishRepository(pool, zerolog.Nop())
	ctx := context.Background()

	t.Run("Multiple dishes", func(t *testing.T) {
		dishes, err := repo.GetByIDs(ctx, []string{"D001", "D002"})

		require.NoError(t, err)
		require.Len(t, dishes, 2)
		// Ordered by name
		assert.Equal(t, "D002", dishes[0].ID)
		assert.Equal(t, "D001", dishes[1].ID)
	})

	t.Run("Unknown IDs are skipped", func(t *testing.T) {
		dishes, err := repo.GetByIDs(ctx, []string{"D001", "D999"})

		require.NoError(t, err)
		require.Len(t, dishes, 1)
		assert.Equal(t, "D001", dishes[0].ID)
	})

	t.Run("Empty input", func(t *testing.T) {
		dishes, err := repo.GetByIDs(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, dishes)
	})
}

func TestDishRepository_Upsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDishRepository(pool, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testDishes()))

	t.Run("Insert", func(t *testing.T) {
		dish, err := repo.GetByID(ctx, "D002")

		require.NoError(t, err)
		require.NotNil(t, dish)
		assert.Equal(t, "Caesar Salad", dish.Name)
	})

	t.Run("Update on conflict", func(t *testing.T) {
		err := repo.Upsert(ctx, []model.Dish{
			{ID: "D002", Name: "Caesar Salad", Price: decimal.RequireFromString("8.50"), Calories: 310, Ingredients: []string{"romaine", "parmesan"}, Available: false},
		})
		require.NoError(t, err)

		dish, err := repo.GetByID(ctx, "D002")
		require.NoError(t, err)
		require.NotNil(t, dish)
		assert.True(t, dish.Price.Equal(decimal.RequireFromString("8.50")))
		assert.False(t, dish.Available)
	})

	t.Run("Empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, nil))
	})
}

package repository

import (
	"context"
	"testing"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	// Get connection string
	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Create connection pool
	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	// Create schema
	createSchema(t, pool)

	// Cleanup function
	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// createSchema creates the necessary database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS dishes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
			calories INTEGER NOT NULL DEFAULT 0 CHECK (calories >= 0),
			ingredients TEXT[] NOT NULL DEFAULT '{}',
			available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			login TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL DEFAULT 'CUSTOMER',
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			bonus_balance DECIMAL(10,2) NOT NULL DEFAULT 0 CHECK (bonus_balance >= 0),
			mail TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			card_number TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			state TEXT NOT NULL,
			payment_type TEXT NOT NULL,
			bonuses_in_payment DECIMAL(10,2) NOT NULL DEFAULT 0 CHECK (bonuses_in_payment >= 0),
			final_price DECIMAL(10,2) NOT NULL DEFAULT 0 CHECK (final_price >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE UNIQUE INDEX IF NOT EXISTS one_basket_per_customer
			ON orders(user_id) WHERE state = 'BASKET';
		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_orders_listing ON orders(created_at DESC, id DESC);

		CREATE TABLE IF NOT EXISTS order_line_items (
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			dish_id TEXT NOT NULL REFERENCES dishes(id),
			amount_grams INTEGER NOT NULL CHECK (amount_grams > 0),
			price DECIMAL(10,2) NOT NULL CHECK (price >= 0),
			PRIMARY KEY (order_id, dish_id)
		);
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}

// seedDishes inserts test dishes into the database.
func seedDishes(t *testing.T, pool *pgxpool.Pool, dishes []model.Dish) {
	ctx := context.Background()

	query := `
		INSERT INTO dishes (id, name, price, calories, ingredients, available)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, d := range dishes {
		_, err := pool.Exec(ctx, query, d.ID, d.Name, d.Price, d.Calories, d.Ingredients, d.Available)
		require.NoError(t, err)
	}
}

// seedUser inserts a test user and returns its ID.
func seedUser(t *testing.T, pool *pgxpool.Pool, login string, balance decimal.Decimal) uuid.UUID {
	ctx := context.Background()

	id := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, login, bonus_balance) VALUES ($1, $2, $3)`,
		id, login, balance,
	)
	require.NoError(t, err)

	return id
}

// testDishes is a small catalogue used across repository tests.
func testDishes() []model.Dish {
	return []model.Dish{
		{ID: "D001", Name: "Tomato Soup", Price: decimal.RequireFromString("4.50"), Calories: 120, Ingredients: []string{"tomato", "basil"}, Available: true},
		{ID: "D002", Name: "Caesar Salad", Price: decimal.RequireFromString("7.90"), Calories: 310, Ingredients: []string{"romaine", "parmesan"}, Available: true},
		{ID: "D003", Name: "Seasonal Special", Price: decimal.RequireFromString("13.00"), Calories: 540, Ingredients: []string{}, Available: false},
	}
}

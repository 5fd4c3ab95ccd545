package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	dbConfig := config.DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		// Try with connection string directly
		poolConfig, parseErr := pgxpool.ParseConfig(connStr)
		if parseErr != nil {
			t.Fatalf("failed to parse connection string: %v", parseErr)
		}
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			t.Fatalf("failed to create connection pool: %v", err)
		}
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS dishes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price DECIMAL(10, 2) NOT NULL CHECK (price >= 0),
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
			bonus_balance DECIMAL(10, 2) NOT NULL DEFAULT 0 CHECK (bonus_balance >= 0),
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
			bonuses_in_payment DECIMAL(10, 2) NOT NULL DEFAULT 0 CHECK (bonuses_in_payment >= 0),
			final_price DECIMAL(10, 2) NOT NULL DEFAULT 0 CHECK (final_price >= 0),
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
			price DECIMAL(10, 2) NOT NULL CHECK (price >= 0),
			PRIMARY KEY (order_id, dish_id)
		);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedDishes inserts the test dish catalogue into the database.
func SeedDishes(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	dishes := []model.Dish{
		{ID: "D001", Name: "Tomato Soup", Price: decimal.RequireFromString("4.50"), Calories: 120, Ingredients: []string{"tomato", "basil"}, Available: true},
		{ID: "D002", Name: "Caesar Salad", Price: decimal.RequireFromString("7.90"), Calories: 310, Ingredients: []string{"romaine", "parmesan"}, Available: true},
		{ID: "D003", Name: "Carbonara", Price: decimal.RequireFromString("11.90"), Calories: 640, Ingredients: []string{"pasta", "egg", "pancetta"}, Available: true},
		{ID: "D004", Name: "Seasonal Special", Price: decimal.RequireFromString("13.00"), Calories: 540, Ingredients: []string{}, Available: false},
	}

	for _, d := range dishes {
		_, err := pool.Exec(ctx,
			"INSERT INTO dishes (id, name, price, calories, ingredients, available) VALUES ($1, $2, $3, $4, $5, $6)",
			d.ID, d.Name, d.Price, d.Calories, d.Ingredients, d.Available,
		)
		if err != nil {
			t.Fatalf("failed to seed dish %s: %v", d.ID, err)
		}
	}
}

// SeedUser inserts a test user and returns its ID.
func SeedUser(t *testing.T, pool *pgxpool.Pool, login string, balance decimal.Decimal) uuid.UUID {
	t.Helper()

	ctx := context.Background()

	id := uuid.New()
	_, err := pool.Exec(ctx,
		"INSERT INTO users (id, login, bonus_balance) VALUES ($1, $2, $3)",
		id, login, balance,
	)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", login, err)
	}

	return id
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_line_items", "orders", "users", "dishes"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

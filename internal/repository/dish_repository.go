package repository

import (
	"context"
	"fmt"

	"bistro/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// dishRepository implements the DishRepository interface using PostgreSQL.
type dishRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDishRepository creates a new PostgreSQL-backed dish repository.
func NewDishRepository(pool *pgxpool.Pool, logger zerolog.Logger) DishRepository {
	return &dishRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "dish").Logger(),
	}
}

// GetByID retrieves a single dish by its ID.
func (r *dishRepository) GetByID(ctx context.Context, id string) (*model.Dish, error) {
	query := `
		SELECT id, name, price, calories, ingredients, available, created_at
		FROM dishes
		WHERE id = $1
	`

	var d model.Dish
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.Price, &d.Calories, &d.Ingredients, &d.Available, &d.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("dish_id", id).Msg("dish not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("dish_id", id).Msg("failed to query dish")
		return nil, fmt.Errorf("failed to query dish: %w", err)
	}

	return &d, nil
}

// GetByIDs retrieves multiple dishes by their IDs.
func (r *dishRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Dish, error) {
	if len(ids) == 0 {
		return []model.Dish{}, nil
	}

	query := `
		SELECT id, name, price, calories, ingredients, available, created_at
		FROM dishes
		WHERE id = ANY($1)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query dishes by IDs")
		return nil, fmt.Errorf("failed to query dishes by IDs: %w", err)
	}
	defer rows.Close()

	var dishes []model.Dish
	for rows.Next() {
		var d model.Dish
		err := rows.Scan(&d.ID, &d.Name, &d.Price, &d.Calories, &d.Ingredients, &d.Available, &d.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan dish row")
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		dishes = append(dishes, d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating dish rows")
		return nil, fmt.Errorf("error iterating dishes: %w", err)
	}

	return dishes, nil
}

// Upsert inserts or updates catalogue dishes in a single batch.
func (r *dishRepository) Upsert(ctx context.Context, dishes []model.Dish) error {
	if len(dishes) == 0 {
		return nil
	}

	query := `
		INSERT INTO dishes (id, name, price, calories, ingredients, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			calories = EXCLUDED.calories,
			ingredients = EXCLUDED.ingredients,
			available = EXCLUDED.available
	`

	batch := &pgx.Batch{}
	for _, d := range dishes {
		batch.Queue(query, d.ID, d.Name, d.Price, d.Calories, d.Ingredients, d.Available)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range dishes {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Str("dish_id", dishes[i].ID).Msg("failed to upsert dish")
			return fmt.Errorf("failed to upsert dish %s: %w", dishes[i].ID, err)
		}
	}

	r.logger.Info().Int("count", len(dishes)).Msg("dish catalogue upserted")

	return nil
}

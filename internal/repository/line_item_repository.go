package repository

import (
	"context"
	"fmt"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// rowQuerier is the subset of pgx shared by the pool and a transaction,
// letting one scan loop serve both paths.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// lineItemRepository implements the LineItemRepository interface using
// PostgreSQL.
type lineItemRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewLineItemRepository creates a new PostgreSQL-backed line item repository.
func NewLineItemRepository(pool *pgxpool.Pool, logger zerolog.Logger) LineItemRepository {
	return &lineItemRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "line_item").Logger(),
	}
}

// Upsert inserts the line or replaces its amount and price snapshot when
// the dish is already present in the order. The (order_id, dish_id)
// primary key makes duplicate dish additions collapse into updates.
func (r *lineItemRepository) Upsert(ctx context.Context, item model.LineItem) error {
	query := `
		INSERT INTO order_line_items (order_id, dish_id, amount_grams, price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, dish_id)
		DO UPDATE SET amount_grams = EXCLUDED.amount_grams, price = EXCLUDED.price
	`

	_, err := r.pool.Exec(ctx, query, item.OrderID, item.DishID, item.AmountGrams, item.Price)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", item.OrderID.String()).
			Str("dish_id", item.DishID).
			Msg("failed to upsert line item")
		return fmt.Errorf("failed to upsert line item: %w", err)
	}

	r.logger.Debug().
		Str("order_id", item.OrderID.String()).
		Str("dish_id", item.DishID).
		Int("amount_grams", item.AmountGrams).
		Msg("line item upserted")

	return nil
}

// Delete removes a line. Deleting an absent line is not an error.
func (r *lineItemRepository) Delete(ctx context.Context, orderID uuid.UUID, dishID string) error {
	query := `
		DELETE FROM order_line_items
		WHERE order_id = $1 AND dish_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, orderID, dishID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("dish_id", dishID).
			Msg("failed to delete line item")
		return fmt.Errorf("failed to delete line item: %w", err)
	}

	r.logger.Debug().
		Str("order_id", orderID.String()).
		Str("dish_id", dishID).
		Int64("rows", tag.RowsAffected()).
		Msg("line item delete executed")

	return nil
}

// CountByOrder returns the number of lines in an order.
func (r *lineItemRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM order_line_items
		WHERE order_id = $1
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, orderID).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to count line items")
		return 0, fmt.Errorf("failed to count line items: %w", err)
	}

	return count, nil
}

// ListByOrder returns all lines of an order.
func (r *lineItemRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.LineItem, error) {
	return r.list(ctx, r.pool, orderID)
}

// ListByOrderTx returns all lines of an order inside the provided
// transaction.
func (r *lineItemRepository) ListByOrderTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.LineItem, error) {
	return r.list(ctx, tx, orderID)
}

func (r *lineItemRepository) list(ctx context.Context, q rowQuerier, orderID uuid.UUID) ([]model.LineItem, error) {
	query := `
		SELECT order_id, dish_id, amount_grams, price
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY dish_id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query line items")
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []model.LineItem
	for rows.Next() {
		var item model.LineItem
		err := rows.Scan(&item.OrderID, &item.DishID, &item.AmountGrams, &item.Price)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan line item row")
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating line item rows")
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

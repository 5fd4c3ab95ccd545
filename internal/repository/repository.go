package repository

import (
	"context"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DishRepository defines access to the dish catalogue. The order engine
// only reads dishes; writes come from the menu importer.
type DishRepository interface {
	// GetByID retrieves a single dish by its ID. Returns (nil, nil) when
	// the dish does not exist.
	GetByID(ctx context.Context, id string) (*model.Dish, error)

	// GetByIDs retrieves multiple dishes by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Dish, error)

	// Upsert inserts or updates catalogue dishes in a single batch.
	Upsert(ctx context.Context, dishes []model.Dish) error
}

// LineItemRepository defines data access for order line items, keyed by
// (order_id, dish_id).
type LineItemRepository interface {
	// Upsert inserts the line or, when the dish is already in the order,
	// replaces its amount and price snapshot atomically.
	Upsert(ctx context.Context, item model.LineItem) error

	// Delete removes a line. Deleting an absent line is not an error.
	Delete(ctx context.Context, orderID uuid.UUID, dishID string) error

	// CountByOrder returns the number of lines in an order.
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	// ListByOrder returns all lines of an order.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.LineItem, error)

	// ListByOrderTx is ListByOrder inside the provided transaction, used
	// by the submit commit to re-read lines under the same snapshot it
	// writes in.
	ListByOrderTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.LineItem, error)
}

// OrderRepository defines data access for orders, including the
// windowed admin listings.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateBasket inserts an empty BASKET order for the user. The
	// one-basket-per-customer unique index decides races: the loser
	// receives model.ErrBasketConflict and should re-fetch.
	CreateBasket(ctx context.Context, userID uuid.UUID) (*model.Order, error)

	// GetByID retrieves an order by its ID. Returns (nil, nil) when the
	// order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetBasketByUser retrieves the user's BASKET order, (nil, nil) when
	// there is none.
	GetBasketByUser(ctx context.Context, userID uuid.UUID) (*model.Order, error)

	// FinalizeTx conditionally transitions the order BASKET -> SUBMITTED
	// within tx, storing the redeemed bonuses, final price and payment
	// type. Returns model.ErrOrderNotMutable when the order is no longer
	// a basket.
	FinalizeTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, paymentType model.PaymentType, bonuses, finalPrice decimal.Decimal) error

	// Count returns the number of orders matching the filter, joined
	// against their owning users.
	Count(ctx context.Context, filter model.ListingFilter) (int64, error)

	// CountByUser returns the number of orders owned by one user.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// FindWithUsers returns rows [minPos, maxPos) of the filtered
	// listing joined with users, newest orders first, ties broken by
	// order ID so sequential windows never skip or repeat rows.
	FindWithUsers(ctx context.Context, minPos, maxPos int64, filter model.ListingFilter) ([]model.OrderWithUser, error)

	// FindByUser returns rows [minPos, maxPos) of one user's orders in
	// the same stable ordering.
	FindByUser(ctx context.Context, userID uuid.UUID, minPos, maxPos int64, filter model.OrderFilter) ([]model.Order, error)
}

// UserRepository defines the user access the order engine needs.
type UserRepository interface {
	// GetByID retrieves a user by ID. Returns (nil, nil) when the user
	// does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// DebitBonusTx subtracts amount from the user's bonus balance within
	// tx, guarded by a balance-sufficiency condition in the UPDATE
	// itself. Returns model.ErrInsufficientBalance when the guard fails.
	DebitBonusTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error
}

package service

import (
	"context"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BasketService manages the customer's single mutable basket and its
// line items.
type BasketService interface {
	// GetOrCreateBasket returns the customer's BASKET order, creating an
	// empty one if none exists. At most one basket per customer can ever
	// be returned; the uniqueness is enforced by the repository.
	GetOrCreateBasket(ctx context.Context, customerID uuid.UUID) (*model.Order, error)

	// AddOrUpdateLine inserts or updates the dish line in the order,
	// snapshotting the dish's current catalogue price.
	AddOrUpdateLine(ctx context.Context, orderID uuid.UUID, dishID string, amountGrams int) (*model.LineItem, error)

	// RemoveLine removes the dish line. Removing an absent line is not
	// an error.
	RemoveLine(ctx context.Context, orderID uuid.UUID, dishID string) error

	// CountLines returns the number of lines in the order.
	CountLines(ctx context.Context, orderID uuid.UUID) (int64, error)

	// ListLines returns the order's lines together with the referenced
	// dishes keyed by dish ID.
	ListLines(ctx context.Context, orderID uuid.UUID) ([]model.LineItem, map[string]model.Dish, error)
}

// PricingService derives prices and bonus quotes from persisted state.
// The arithmetic itself lives in pure functions (GrossPrice, ApplyBonus)
// so it can be exercised without a repository.
type PricingService interface {
	// NewTotal prices the order's current lines and clamps the requested
	// bonus amount against the owner's balance and the gross price. The
	// quote carries the clamped amount so callers can surface it.
	NewTotal(ctx context.Context, orderID uuid.UUID, requestedBonus decimal.Decimal) (model.Quote, error)

	// FinalPrice re-derives the order's price strictly from persisted
	// lines and its stored bonus redemption. Audit path; not the live
	// basket price.
	FinalPrice(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
}

// CheckoutService finalizes baskets.
type CheckoutService interface {
	// Submit transitions the order BASKET -> SUBMITTED, debiting the
	// clamped bonus amount and freezing the final price in one atomic
	// commit. Returns the finalized order.
	Submit(ctx context.Context, orderID uuid.UUID, requestedBonus decimal.Decimal, paymentType model.PaymentType) (*model.Order, error)
}

// ListingService serves bounded, filtered windows over orders and users
// for staff dashboards.
type ListingService interface {
	// GetOrder retrieves one order by ID.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)

	// CountOrders returns the total number of orders matching the filter.
	CountOrders(ctx context.Context, filter model.ListingFilter) (int64, error)

	// CountUserOrders returns the total number of one user's orders.
	CountUserOrders(ctx context.Context, userID uuid.UUID) (int64, error)

	// FindOrdersWithUsers returns positions [minPos, maxPos) of the
	// filtered joined listing in stable newest-first order.
	FindOrdersWithUsers(ctx context.Context, minPos, maxPos int64, filter model.ListingFilter) ([]model.OrderWithUser, error)

	// FindUserOrders returns positions [minPos, maxPos) of one user's
	// orders in the same stable ordering.
	FindUserOrders(ctx context.Context, userID uuid.UUID, minPos, maxPos int64, filter model.OrderFilter) ([]model.Order, error)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// basketService implements BasketService.
type basketService struct {
	orderRepo repository.OrderRepository
	lineRepo  repository.LineItemRepository
	dishRepo  repository.DishRepository
	userRepo  repository.UserRepository
	logger    zerolog.Logger
}

// NewBasketService creates a new basket service.
func NewBasketService(
	orderRepo repository.OrderRepository,
	lineRepo repository.LineItemRepository,
	dishRepo repository.DishRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) BasketService {
	return &basketService{
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		dishRepo:  dishRepo,
		userRepo:  userRepo,
		logger:    logger.With().Str("service", "basket").Logger(),
	}
}

// GetOrCreateBasket returns the customer's open basket, creating one
// when none exists. The repository's unique index decides concurrent
// creation races; the loser recovers by fetching the winner's basket.
func (s *basketService) GetOrCreateBasket(ctx context.Context, customerID uuid.UUID) (*model.Order, error) {
	user, err := s.userRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	basket, err := s.orderRepo.GetBasketByUser(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load basket: %w", err)
	}
	if basket != nil {
		return basket, nil
	}

	basket, err = s.orderRepo.CreateBasket(ctx, customerID)
	if errors.Is(err, model.ErrBasketConflict) {
		// A concurrent request inserted the basket first; use theirs.
		basket, err = s.orderRepo.GetBasketByUser(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load basket after conflict: %w", err)
		}
		if basket == nil {
			return nil, model.ErrBasketConflict
		}
		return basket, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create basket: %w", err)
	}

	s.logger.Info().
		Str("order_id", basket.ID.String()).
		Str("customer_id", customerID.String()).
		Msg("basket created")

	return basket, nil
}

// AddOrUpdateLine inserts or updates the dish line in the order,
// snapshotting the dish's current catalogue price.
func (s *basketService) AddOrUpdateLine(ctx context.Context, orderID uuid.UUID, dishID string, amountGrams int) (*model.LineItem, error) {
	if amountGrams <= 0 {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("dish_id", dishID).
			Int("amount_grams", amountGrams).
			Msg("invalid line amount")
		return nil, model.ErrInvalidQuantity
	}

	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	dish, err := s.dishRepo.GetByID(ctx, dishID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dish: %w", err)
	}
	if dish == nil || !dish.Available {
		return nil, model.ErrDishNotFound
	}

	item := model.LineItem{
		OrderID:     order.ID,
		DishID:      dish.ID,
		AmountGrams: amountGrams,
		Price:       dish.Price,
	}

	if err := s.lineRepo.Upsert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to store line item: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("dish_id", dish.ID).
		Int("amount_grams", amountGrams).
		Msg("line item stored")

	return &item, nil
}

// RemoveLine removes the dish line from the order. Idempotent.
func (s *basketService) RemoveLine(ctx context.Context, orderID uuid.UUID, dishID string) error {
	if _, err := s.mutableOrder(ctx, orderID); err != nil {
		return err
	}

	if err := s.lineRepo.Delete(ctx, orderID, dishID); err != nil {
		return fmt.Errorf("failed to remove line item: %w", err)
	}

	return nil
}

// CountLines returns the number of lines in the order.
func (s *basketService) CountLines(ctx context.Context, orderID uuid.UUID) (int64, error) {
	count, err := s.lineRepo.CountByOrder(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to count line items: %w", err)
	}
	return count, nil
}

// ListLines returns the order's lines together with the referenced
// dishes keyed by dish ID.
func (s *basketService) ListLines(ctx context.Context, orderID uuid.UUID) ([]model.LineItem, map[string]model.Dish, error) {
	lines, err := s.lineRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load line items: %w", err)
	}

	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.DishID
	}

	dishes, err := s.dishRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dishes: %w", err)
	}

	dishMap := make(map[string]model.Dish, len(dishes))
	for _, d := range dishes {
		dishMap[d.ID] = d
	}

	return lines, dishMap, nil
}

// mutableOrder loads the order and checks it still accepts line changes.
func (s *basketService) mutableOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if !order.IsMutable() {
		return nil, model.ErrOrderNotMutable
	}
	return order, nil
}

package service

import (
	"context"
	"fmt"

	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// listingService implements ListingService.
type listingService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewListingService creates a new listing service.
func NewListingService(orderRepo repository.OrderRepository, logger zerolog.Logger) ListingService {
	return &listingService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "listing").Logger(),
	}
}

// GetOrder retrieves one order by ID.
func (s *listingService) GetOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// CountOrders returns the total number of orders matching the filter.
func (s *listingService) CountOrders(ctx context.Context, filter model.ListingFilter) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}

	count, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// CountUserOrders returns the total number of one user's orders.
func (s *listingService) CountUserOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.orderRepo.CountByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count user orders: %w", err)
	}
	return count, nil
}

// FindOrdersWithUsers returns positions [minPos, maxPos) of the filtered
// joined listing.
func (s *listingService) FindOrdersWithUsers(ctx context.Context, minPos, maxPos int64, filter model.ListingFilter) ([]model.OrderWithUser, error) {
	if err := validateWindow(minPos, maxPos); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if minPos == maxPos {
		return []model.OrderWithUser{}, nil
	}

	rows, err := s.orderRepo.FindWithUsers(ctx, minPos, maxPos, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	s.logger.Debug().
		Int64("min_pos", minPos).
		Int64("max_pos", maxPos).
		Int("rows", len(rows)).
		Msg("order listing window served")

	return rows, nil
}

// FindUserOrders returns positions [minPos, maxPos) of one user's orders.
func (s *listingService) FindUserOrders(ctx context.Context, userID uuid.UUID, minPos, maxPos int64, filter model.OrderFilter) ([]model.Order, error) {
	if err := validateWindow(minPos, maxPos); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if minPos == maxPos {
		return []model.Order{}, nil
	}

	orders, err := s.orderRepo.FindByUser(ctx, userID, minPos, maxPos, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}

	return orders, nil
}

// validateWindow checks the half-open position interval.
func validateWindow(minPos, maxPos int64) error {
	if minPos < 0 || maxPos < 0 || minPos > maxPos {
		return model.ErrInvalidRange
	}
	return nil
}

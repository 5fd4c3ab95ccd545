package service

import (
	"context"
	"fmt"

	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// portionGrams is the serving size catalogue prices are quoted for.
// Line amounts are in grams, so a line's cost is price * grams / 100.
const portionGrams = 100

// minorUnitPlaces is the currency's minor-unit precision.
const minorUnitPlaces = 2

// GrossPrice sums the lines' snapshot prices weighted by amount.
// Intermediate sums stay unrounded; rounding to the minor unit happens
// once, on the result.
func GrossPrice(lines []model.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Price.Mul(decimal.NewFromInt(int64(line.AmountGrams))))
	}
	return sum.Div(decimal.NewFromInt(portionGrams)).Round(minorUnitPlaces)
}

// ApplyBonus clamps the requested bonus amount to what the user can
// actually redeem: min(requested, balance, gross). A request exceeding
// the balance or the price is reduced, not rejected; only a negative
// request is an error. The returned total is gross minus the applied
// amount and is never negative.
func ApplyBonus(gross, balance, requested decimal.Decimal) (applied, total decimal.Decimal, err error) {
	if requested.IsNegative() {
		return decimal.Zero, decimal.Zero, model.ErrInvalidBonusAmount
	}

	applied = requested
	if applied.GreaterThan(balance) {
		applied = balance
	}
	if applied.GreaterThan(gross) {
		applied = gross
	}

	return applied, gross.Sub(applied), nil
}

// pricingService implements PricingService on top of the repositories.
type pricingService struct {
	orderRepo repository.OrderRepository
	lineRepo  repository.LineItemRepository
	userRepo  repository.UserRepository
	logger    zerolog.Logger
}

// NewPricingService creates a new pricing service.
func NewPricingService(
	orderRepo repository.OrderRepository,
	lineRepo repository.LineItemRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) PricingService {
	return &pricingService{
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		userRepo:  userRepo,
		logger:    logger.With().Str("service", "pricing").Logger(),
	}
}

// NewTotal prices the order's current lines and clamps the requested
// bonus amount against the owner's balance.
func (s *pricingService) NewTotal(ctx context.Context, orderID uuid.UUID, requestedBonus decimal.Decimal) (model.Quote, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return model.Quote{}, model.ErrOrderNotFound
	}

	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return model.Quote{}, model.ErrUserNotFound
	}

	lines, err := s.lineRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return model.Quote{}, fmt.Errorf("failed to load line items: %w", err)
	}

	gross := GrossPrice(lines)
	applied, total, err := ApplyBonus(gross, user.BonusBalance, requestedBonus)
	if err != nil {
		return model.Quote{}, err
	}

	s.logger.Debug().
		Str("order_id", orderID.String()).
		Str("gross", gross.String()).
		Str("requested_bonus", requestedBonus.String()).
		Str("applied_bonus", applied.String()).
		Msg("order quoted")

	return model.Quote{Gross: gross, AppliedBonus: applied, Total: total}, nil
}

// FinalPrice re-derives the order's price from persisted lines and its
// stored bonus redemption.
func (s *pricingService) FinalPrice(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return decimal.Zero, model.ErrOrderNotFound
	}

	lines, err := s.lineRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load line items: %w", err)
	}

	return GrossPrice(lines).Sub(order.BonusesInPayment), nil
}

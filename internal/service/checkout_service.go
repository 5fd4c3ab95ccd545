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

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo repository.OrderRepository
	lineRepo  repository.LineItemRepository
	userRepo  repository.UserRepository
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	lineRepo repository.LineItemRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		userRepo:  userRepo,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// Submit finalizes the basket: it re-reads the line items inside a
// transaction, recomputes the price there (a price computed in an
// earlier request could miss a concurrently added line), debits the
// clamped bonus amount and transitions the state. Debit and transition
// either both commit or neither does.
func (s *checkoutService) Submit(ctx context.Context, orderID uuid.UUID, requestedBonus decimal.Decimal, paymentType model.PaymentType) (*model.Order, error) {
	if !paymentType.Valid() {
		return nil, model.ErrInvalidPaymentType
	}
	if requestedBonus.IsNegative() {
		return nil, model.ErrInvalidBonusAmount
	}

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

	user, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	// Ensure the transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	lines, err := s.lineRepo.ListByOrderTx(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	if len(lines) == 0 {
		err = model.ErrEmptyOrder
		return nil, err
	}

	gross := GrossPrice(lines)
	applied, total, err := ApplyBonus(gross, user.BonusBalance, requestedBonus)
	if err != nil {
		return nil, err
	}

	if err = s.userRepo.DebitBonusTx(ctx, tx, user.ID, applied); err != nil {
		return nil, err
	}

	if err = s.orderRepo.FinalizeTx(ctx, tx, orderID, paymentType, applied, total); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	order.State = model.OrderStateSubmitted
	order.PaymentType = paymentType
	order.BonusesInPayment = applied
	order.FinalPrice = total

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", user.ID.String()).
		Str("gross", gross.String()).
		Str("applied_bonus", applied.String()).
		Str("final_price", total.String()).
		Str("payment_type", string(paymentType)).
		Msg("order submitted")

	return order, nil
}

package service

import (
	"context"
	"testing"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutFixture() (*MockOrderRepository, *MockLineItemRepository, *MockUserRepository, CheckoutService) {
	orderRepo := new(MockOrderRepository)
	lineRepo := new(MockLineItemRepository)
	userRepo := new(MockUserRepository)
	svc := NewCheckoutService(orderRepo, lineRepo, userRepo, zerolog.Nop())
	return orderRepo, lineRepo, userRepo, svc
}

func TestCheckoutService_Submit_Success(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	userID := uuid.New()

	order := &model.Order{ID: orderID, UserID: userID, State: model.OrderStateBasket}
	user := &model.User{ID: userID, BonusBalance: dec("30.00")}
	lines := []model.LineItem{
		{OrderID: orderID, DishID: "D001", AmountGrams: 200, Price: dec("25.00")},
	}

	orderRepo, lineRepo, userRepo, svc := newCheckoutFixture()
	mockTx := new(MockTx)

	orderRepo.On("GetByID", ctx, orderID).Return(order, nil)
	userRepo.On("GetByID", ctx, userID).Return(user, nil)
	orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	lineRepo.On("ListByOrderTx", ctx, mockTx, orderID).Return(lines, nil)
	userRepo.On("DebitBonusTx", ctx, mockTx, userID, dec("30.00")).Return(nil)
	orderRepo.On("FinalizeTx", ctx, mockTx, orderID, model.PaymentTypeCard, dec("30.00"), dec("20.00")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	// Requested 1000.00 against balance 30.00 and gross 50.00: the
	// clamped amount, not the request, is debited and stored.
	result, err := svc.Submit(ctx, orderID, dec("1000.00"), model.PaymentTypeCard)

	require.NoError(t, err)
	assert.Equal(t, model.OrderStateSubmitted, result.State)
	assert.Equal(t, model.PaymentTypeCard, result.PaymentType)
	assert.True(t, result.BonusesInPayment.Equal(dec("30.00")))
	assert.True(t, result.FinalPrice.Equal(dec("20.00")))
	assert.True(t, mockTx.committed)
	assert.False(t, mockTx.rolledBack)

	orderRepo.AssertExpectations(t)
	lineRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestCheckoutService_Submit_EmptyOrder(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	userID := uuid.New()

	order := &model.Order{ID: orderID, UserID: userID, State: model.OrderStateBasket}
	user := &model.User{ID: userID, BonusBalance: dec("30.00")}

	orderRepo, lineRepo, userRepo, svc := newCheckoutFixture()
	mockTx := new(MockTx)

	orderRepo.On("GetByID", ctx, orderID).Return(order, nil)
	userRepo.On("GetByID", ctx, userID).Return(user, nil)
	orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	lineRepo.On("ListByOrderTx", ctx, mockTx, orderID).Return([]model.LineItem{}, nil)
	mockTx.On("Rollback", ctx).Return(nil)

	_, err := svc.Submit(ctx, orderID, dec("0"), model.PaymentTypeCash)

	assert.ErrorIs(t, err, model.ErrEmptyOrder)
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
	userRepo.AssertNotCalled(t, "DebitBonusTx")
	orderRepo.AssertNotCalled(t, "FinalizeTx")
}

func TestCheckoutService_Submit_DebitGuardFails(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	userID := uuid.New()

	order := &model.Order{ID: orderID, UserID: userID, State: model.OrderStateBasket}
	user := &model.User{ID: userID, BonusBalance: dec("30.00")}
	lines := []model.LineItem{
		{OrderID: orderID, DishID: "D001", AmountGrams: 100, Price: dec("50.00")},
	}

	orderRepo, lineRepo, userRepo, svc := newCheckoutFixture()
	mockTx := new(MockTx)

	orderRepo.On("GetByID", ctx, orderID).Return(order, nil)
	userRepo.On("GetByID", ctx, userID).Return(user, nil)
	orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	lineRepo.On("ListByOrderTx", ctx, mockTx, orderID).Return(lines, nil)
	// Balance drained by a concurrent submit between the read and the tx.
	userRepo.On("DebitBonusTx", ctx, mockTx, userID, dec("30.00")).Return(model.ErrInsufficientBalance)
	mockTx.On("Rollback", ctx).Return(nil)

	_, err := svc.Submit(ctx, orderID, dec("30.00"), model.PaymentTypeCash)

	assert.ErrorIs(t, err, model.ErrInsufficientBalance)
	assert.True(t, mockTx.rolledBack, "failed debit must not leave the transaction open")
	assert.False(t, mockTx.committed)
	orderRepo.AssertNotCalled(t, "FinalizeTx")
}

func TestCheckoutService_Submit_ConcurrentSubmitLoses(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	userID := uuid.New()

	order := &model.Order{ID: orderID, UserID: userID, State: model.OrderStateBasket}
	user := &model.User{ID: userID, BonusBalance: dec("10.00")}
	lines := []model.LineItem{
		{OrderID: orderID, DishID: "D001", AmountGrams: 100, Price: dec("20.00")},
	}

	orderRepo, lineRepo, userRepo, svc := newCheckoutFixture()
	mockTx := new(MockTx)

	orderRepo.On("GetByID", ctx, orderID).Return(order, nil)
	userRepo.On("GetByID", ctx, userID).Return(user, nil)
	orderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	lineRepo.On("ListByOrderTx", ctx, mockTx, orderID).Return(lines, nil)
	userRepo.On("DebitBonusTx", ctx, mockTx, userID, dec("10.00")).Return(nil)
	// Another request submitted the order first; the conditional update
	// matches zero rows and the whole commit, debit included, rolls back.
	orderRepo.On("FinalizeTx", ctx, mockTx, orderID, model.PaymentTypeCash, dec("10.00"), dec("10.00")).Return(model.ErrOrderNotMutable)
	mockTx.On("Rollback", ctx).Return(nil)

	_, err := svc.Submit(ctx, orderID, dec("10.00"), model.PaymentTypeCash)

	assert.ErrorIs(t, err, model.ErrOrderNotMutable)
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
}

func TestCheckoutService_Submit_Validation(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	orderRepo, _, _, svc := newCheckoutFixture()

	t.Run("Unknown payment type", func(t *testing.T) {
		_, err := svc.Submit(ctx, orderID, dec("0"), model.PaymentType("IOU"))
		assert.ErrorIs(t, err, model.ErrInvalidPaymentType)
	})

	t.Run("Negative bonus request", func(t *testing.T) {
		_, err := svc.Submit(ctx, orderID, dec("-5.00"), model.PaymentTypeCash)
		assert.ErrorIs(t, err, model.ErrInvalidBonusAmount)
	})

	orderRepo.AssertNotCalled(t, "BeginTx")
}

func TestCheckoutService_Submit_NotMutable(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	order := &model.Order{ID: orderID, UserID: uuid.New(), State: model.OrderStateCompleted}

	orderRepo, _, userRepo, svc := newCheckoutFixture()
	orderRepo.On("GetByID", ctx, orderID).Return(order, nil)

	_, err := svc.Submit(ctx, orderID, dec("0"), model.PaymentTypeCash)

	assert.ErrorIs(t, err, model.ErrOrderNotMutable)
	userRepo.AssertNotCalled(t, "GetByID")
	orderRepo.AssertNotCalled(t, "BeginTx")
}

func TestCheckoutService_Submit_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	orderRepo, _, _, svc := newCheckoutFixture()
	orderRepo.On("GetByID", ctx, orderID).Return(nil, nil)

	_, err := svc.Submit(ctx, orderID, dec("0"), model.PaymentTypeCash)

	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

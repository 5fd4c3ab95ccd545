package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderState is the lifecycle state of an order.
type OrderState string

const (
	OrderStateBasket     OrderState = "BASKET"
	OrderStateSubmitted  OrderState = "SUBMITTED"
	OrderStateInProgress OrderState = "IN_PROGRESS"
	OrderStateCompleted  OrderState = "COMPLETED"
	OrderStateCancelled  OrderState = "CANCELLED"
)

// Valid reports whether s is a member of the closed state set.
func (s OrderState) Valid() bool {
	switch s {
	case OrderStateBasket, OrderStateSubmitted, OrderStateInProgress,
		OrderStateCompleted, OrderStateCancelled:
		return true
	}
	return false
}

// PaymentType is how the customer pays the final price.
type PaymentType string

const (
	PaymentTypeCash   PaymentType = "CASH"
	PaymentTypeCard   PaymentType = "CARD"
	PaymentTypeOnline PaymentType = "ONLINE"
)

// Valid reports whether p is a member of the closed payment-type set.
func (p PaymentType) Valid() bool {
	switch p {
	case PaymentTypeCash, PaymentTypeCard, PaymentTypeOnline:
		return true
	}
	return false
}

// Order is the aggregate root for a customer's purchase. While State is
// BASKET the order is a freely mutable cart and FinalPrice is undefined
// (zero-valued, never read). BonusesInPayment and FinalPrice are written
// exactly once, at submission.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"userId" db:"user_id"`
	State            OrderState      `json:"state" db:"state"`
	PaymentType      PaymentType     `json:"paymentType" db:"payment_type"`
	BonusesInPayment decimal.Decimal `json:"bonusesInPayment" db:"bonuses_in_payment"`
	FinalPrice       decimal.Decimal `json:"finalPrice" db:"final_price"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
}

// IsMutable reports whether line items may still be changed.
func (o *Order) IsMutable() bool {
	return o.State == OrderStateBasket
}

// LineItem is one dish within one order. Price is the per-portion price
// snapshotted from the catalogue when the line was inserted; it is never
// re-read, so historical orders keep the price they were quoted.
type LineItem struct {
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	DishID      string          `json:"dishId" db:"dish_id"`
	AmountGrams int             `json:"amountGrams" db:"amount_grams"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// OrderWithUser is one row of the joined administrative listing.
type OrderWithUser struct {
	Order Order `json:"order"`
	User  User  `json:"user"`
}

// Quote is the priced view of an order before or at submission.
// AppliedBonus is the amount actually redeemable, after clamping the
// requested amount against the user's balance and the gross price;
// callers surface it rather than echoing the request.
type Quote struct {
	Gross        decimal.Decimal `json:"gross"`
	AppliedBonus decimal.Decimal `json:"appliedBonus"`
	Total        decimal.Decimal `json:"total"`
}

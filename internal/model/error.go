package model

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind string

const (
	ErrKindValidation ErrorKind = "validation"
	ErrKindNotFound   ErrorKind = "not_found"
	ErrKindConflict   ErrorKind = "conflict"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInvalidBonusAmount  = "INVALID_BONUS_AMOUNT"
	ErrCodeInvalidRange        = "INVALID_RANGE"
	ErrCodeInvalidFilter       = "INVALID_FILTER"
	ErrCodeInvalidPaymentType  = "INVALID_PAYMENT_TYPE"
	ErrCodeEmptyOrder          = "EMPTY_ORDER"
	ErrCodeDishNotFound        = "DISH_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeOrderNotMutable     = "ORDER_NOT_MUTABLE"
	ErrCodeBasketConflict      = "BASKET_CONFLICT"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a typed business-rule failure. Kind drives the HTTP
// status mapping in the handlers; Code is stable for API clients.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error.
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Common domain errors. Infrastructure failures are not enumerated here;
// they propagate as wrapped errors and map to a retryable 5xx.
var (
	ErrInvalidQuantity    = NewDomainError(ErrKindValidation, ErrCodeInvalidQuantity, "Amount in grams must be greater than zero")
	ErrInvalidBonusAmount = NewDomainError(ErrKindValidation, ErrCodeInvalidBonusAmount, "Requested bonus amount must not be negative")
	ErrInvalidRange       = NewDomainError(ErrKindValidation, ErrCodeInvalidRange, "Pagination range must be non-negative with minPos <= maxPos")
	ErrInvalidFilter      = NewDomainError(ErrKindValidation, ErrCodeInvalidFilter, "Filter contains a value outside its allowed set")
	ErrInvalidPaymentType = NewDomainError(ErrKindValidation, ErrCodeInvalidPaymentType, "Unknown payment type")
	ErrEmptyOrder         = NewDomainError(ErrKindValidation, ErrCodeEmptyOrder, "Order has no line items")

	ErrDishNotFound  = NewDomainError(ErrKindNotFound, ErrCodeDishNotFound, "Dish not found")
	ErrOrderNotFound = NewDomainError(ErrKindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound  = NewDomainError(ErrKindNotFound, ErrCodeUserNotFound, "User not found")

	ErrOrderNotMutable = NewDomainError(ErrKindConflict, ErrCodeOrderNotMutable, "Order is not in a mutable state")
	ErrBasketConflict  = NewDomainError(ErrKindConflict, ErrCodeBasketConflict, "Another basket was created concurrently")
	// Raised only by the repository debit guard inside the submit
	// commit; the pricing engine clamps requests instead of rejecting
	// them, so a caller sees this only after a concurrent balance change.
	ErrInsufficientBalance = NewDomainError(ErrKindConflict, ErrCodeInsufficientBalance, "Bonus balance changed concurrently")
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

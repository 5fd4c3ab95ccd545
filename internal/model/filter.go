package model

import "github.com/shopspring/decimal"

// OrderFilter narrows order listings. All fields are optional; a nil or
// empty field applies no predicate.
type OrderFilter struct {
	States       []OrderState
	PaymentTypes []PaymentType
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
}

// UserFilter narrows the user side of the joined listing. String fields
// are substring matches; their syntax is validated upstream.
type UserFilter struct {
	Statuses   []UserStatus
	Roles      []UserRole
	Login      string
	Mail       string
	Phone      string
	CardNumber string
}

// ListingFilter combines both sides for the joined admin view.
type ListingFilter struct {
	Order OrderFilter
	User  UserFilter
}

// Validate checks that every enumerated member belongs to its closed set.
func (f OrderFilter) Validate() error {
	for _, s := range f.States {
		if !s.Valid() {
			return ErrInvalidFilter
		}
	}
	for _, p := range f.PaymentTypes {
		if !p.Valid() {
			return ErrInvalidFilter
		}
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return ErrInvalidFilter
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return ErrInvalidFilter
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return ErrInvalidFilter
	}
	return nil
}

// Validate checks that every enumerated member belongs to its closed set.
func (f UserFilter) Validate() error {
	for _, s := range f.Statuses {
		if !s.Valid() {
			return ErrInvalidFilter
		}
	}
	for _, r := range f.Roles {
		if !r.Valid() {
			return ErrInvalidFilter
		}
	}
	return nil
}

// Validate checks both sides of the filter.
func (f ListingFilter) Validate() error {
	if err := f.Order.Validate(); err != nil {
		return err
	}
	return f.User.Validate()
}

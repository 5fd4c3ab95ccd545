package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRole is the closed set of account roles.
type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleStaff    UserRole = "STAFF"
	UserRoleAdmin    UserRole = "ADMIN"
)

// Valid reports whether r is a member of the closed role set.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleCustomer, UserRoleStaff, UserRoleAdmin:
		return true
	}
	return false
}

// UserStatus is the closed set of account statuses.
type UserStatus string

const (
	UserStatusActive      UserStatus = "ACTIVE"
	UserStatusBlocked     UserStatus = "BLOCKED"
	UserStatusUnconfirmed UserStatus = "UNCONFIRMED"
)

// Valid reports whether s is a member of the closed status set.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusBlocked, UserStatusUnconfirmed:
		return true
	}
	return false
}

// User is an account holder. BonusBalance is the sole source of truth
// for how much the user may redeem against an order; it is debited only
// through the atomic submit commit.
type User struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Login        string          `json:"login" db:"login"`
	Role         UserRole        `json:"role" db:"role"`
	Status       UserStatus      `json:"status" db:"status"`
	BonusBalance decimal.Decimal `json:"bonusBalance" db:"bonus_balance"`
	Mail         string          `json:"mail" db:"mail"`
	Phone        string          `json:"phone" db:"phone"`
	CardNumber   string          `json:"cardNumber" db:"card_number"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

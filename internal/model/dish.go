package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dish represents a catalogue item offered by the establishment.
// The order engine treats dishes as read-only; catalogue management
// lives elsewhere.
type Dish struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Calories    int             `json:"calories" db:"calories"`
	Ingredients []string        `json:"ingredients" db:"ingredients"`
	Available   bool            `json:"available" db:"available"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

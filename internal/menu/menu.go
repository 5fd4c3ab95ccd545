package menu

import (
	"context"

	"github.com/shopspring/decimal"
)

// Document is a menu export as produced by the point-of-sale system.
type Document struct {
	Dishes []Entry `json:"dishes"`
}

// Entry is a single dish in a menu document.
type Entry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Calories    int             `json:"calories"`
	Ingredients []string        `json:"ingredients"`
	// Available is optional in the document; absent means available.
	Available *bool `json:"available"`
}

// Loader defines the interface for loading menu documents.
type Loader interface {
	// Load reads a menu document. Files ending in .gz are decompressed
	// before decoding.
	Load(ctx context.Context, path string) (*Document, error)
}

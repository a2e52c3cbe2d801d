// Package models - catalog.go defines the Category and Product models that make up
// the storefront catalog. Prices are fixed-point decimals, never floats.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products for storefront navigation.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Product is a catalog entry. Name is unique across the catalog because the
// legacy frozen item lists identify products by name.
type Product struct {
	ID          string          `db:"id" json:"id"`
	CategoryID  *string         `db:"category_id" json:"category_id,omitempty"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description,omitempty"`
	PhotoURL    string          `db:"photo_url" json:"photo_url,omitempty"`
	Unit        string          `db:"unit" json:"unit"`
	Price       decimal.Decimal `db:"price" json:"price"`
	MinOrder    decimal.Decimal `db:"min_order" json:"min_order"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

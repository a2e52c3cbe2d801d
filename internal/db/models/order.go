// Package models - order.go defines the Order aggregate and its two item
// representations: relational OrderItem rows (the live, editable form) and the
// frozen LegacyItem list stored as JSON on the order row at submit time.
package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusPending   = "pending" // B2C flat orders are created directly in this state
)

// Order represents both B2B collaborative orders and B2C flat orders.
// For B2B orders OrganizationID is set and CustomerID is nil; for B2C flat
// orders the reverse holds.
type Order struct {
	ID             string          `json:"id"`
	OrganizationID *string         `json:"organization_id,omitempty"`
	BuyerID        *string         `json:"buyer_id,omitempty"` // set at submit for B2B drafts
	CustomerID     *string         `json:"customer_id,omitempty"` // the B2C orderer
	Status         string          `json:"status"`
	Items          json.RawMessage `json:"items,omitempty"` // frozen legacy item list; nil while draft
	Total          decimal.Decimal `json:"total"`
	Comment        string          `json:"comment,omitempty"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderItem is a single relational line item on a draft order. ProductName and
// UnitPrice are snapshots taken when the line was added; the product row itself
// may change afterwards.
type OrderItem struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	EmployeeID  string          `json:"employee_id"` // the user who added the line
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Comment     string          `json:"comment,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LegacyItem is one entry of the frozen item list written to orders.items at
// submit time. Prices here are immutable once written.
type LegacyItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

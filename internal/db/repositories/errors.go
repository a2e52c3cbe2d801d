// errors.go defines the sentinel errors transactional repository methods return
// so callers can distinguish business outcomes from database failures.
package repositories

import "errors"

var (
	// ErrNotDraft is returned by order mutations when the order row exists but
	// has already left the draft status.
	ErrNotDraft = errors.New("order is not in draft status")

	// ErrProductMissing is returned when a line item references a product that
	// does not exist in the catalog.
	ErrProductMissing = errors.New("product does not exist")

	// ErrItemMissing is returned when a line item does not exist on the order.
	ErrItemMissing = errors.New("order item does not exist")

	// ErrItemNotOwned is returned when removal was restricted to the caller's
	// own items and the item belongs to someone else.
	ErrItemNotOwned = errors.New("order item belongs to another user")

	// ErrEmptyOrder is returned when a draft with no line items is submitted.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrAlreadyMember is returned by invite consumption when the user already
	// belongs to an organization.
	ErrAlreadyMember = errors.New("user already belongs to an organization")

	// ErrProductInUse is returned when a product delete is blocked by order
	// lines that still reference it.
	ErrProductInUse = errors.New("product is referenced by existing orders")
)

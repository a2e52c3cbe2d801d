// Package orders implements the collaborative order aggregate: draft creation,
// concurrent line-item editing, buyer-gated submission, and the read-side
// projection that reconciles relational line items with the frozen legacy item
// list. All authorization decisions for order access live here, not in the
// HTTP handlers.
package orders

import "errors"

// Error kinds surfaced to callers. Handlers map these onto HTTP status codes;
// everything not wrapping one of them is treated as an internal error.
var (
	// ErrValidation marks malformed or out-of-range input, e.g. a non-positive
	// quantity or an empty draft being submitted.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a missing order, item, or product.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an actor lacking the role or organization membership
	// for the operation. Cross-organization access is always ErrForbidden,
	// never ErrNotFound, so order existence does not leak across tenants.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState marks an operation that is not legal for the order's
	// current status, e.g. mutating a submitted order.
	ErrInvalidState = errors.New("invalid state")
)

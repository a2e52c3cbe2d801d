package orders

import "github.com/freshgreens/ordering-backend/internal/db/models"

// transitions is the complete state machine for orders. Drafts move forward to
// submitted exactly once; submitted and pending orders are terminal.
var transitions = map[string][]string{
	models.StatusDraft:     {models.StatusSubmitted},
	models.StatusSubmitted: {},
	models.StatusPending:   {},
}

// CanTransition reports whether an order may move from one status to another.
// Every status check in the aggregate goes through this table rather than
// comparing status strings at call sites.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsMutable reports whether line items may still be added or removed.
func IsMutable(status string) bool {
	return status == models.StatusDraft
}

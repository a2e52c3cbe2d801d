package orders

import "github.com/freshgreens/ordering-backend/internal/db/models"

// Membership is the actor identity every order operation is authorized
// against. It is constructed fresh per request from the user row and never
// cached, so a role or organization change takes effect on the next request.
type Membership struct {
	UserID         string
	OrganizationID string
	Role           string
}

// MembershipOf derives the membership view from a user row. ok is false when
// the user does not belong to any organization.
func MembershipOf(user *models.User) (Membership, bool) {
	if user == nil || user.OrganizationID == nil {
		return Membership{}, false
	}
	return Membership{
		UserID:         user.ID,
		OrganizationID: *user.OrganizationID,
		Role:           user.Role,
	}, true
}

// IsBuyer reports whether the actor holds the buyer role.
func (m Membership) IsBuyer() bool {
	return m.Role == models.RoleBuyer
}

// IsEmployee reports whether the actor holds the employee role.
func (m Membership) IsEmployee() bool {
	return m.Role == models.RoleEmployee
}

// belongsTo reports whether the order is owned by the actor's organization.
// Storefront orders carry no organization and are never visible here.
func (m Membership) belongsTo(order *models.Order) bool {
	return order.OrganizationID != nil && *order.OrganizationID == m.OrganizationID
}

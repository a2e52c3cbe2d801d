// Package models - user.go defines the User model for storefront and B2B accounts
// authenticated via Telegram, along with their organization membership fields.
package models

import "time"

// Membership roles. A user with an organization but no recognised role is
// treated as having no B2B privileges.
const (
	RoleBuyer    = "buyer"
	RoleEmployee = "employee"
)

// User represents a user in the system. TelegramID is nil for accounts created
// through channels other than the Telegram Mini-App.
type User struct {
	ID             string     `json:"id"`
	TelegramID     *int64     `json:"telegram_id,omitempty"`
	Username       string     `json:"username,omitempty"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Role           string     `json:"role,omitempty"`            // "buyer", "employee", or ""
	OrganizationID *string    `json:"organization_id,omitempty"` // nil until the user joins an organization
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsBuyer reports whether the user holds the buyer role in an organization.
func (u *User) IsBuyer() bool {
	return u.OrganizationID != nil && u.Role == RoleBuyer
}

// IsEmployee reports whether the user holds the employee role in an organization.
func (u *User) IsEmployee() bool {
	return u.OrganizationID != nil && u.Role == RoleEmployee
}

// DisplayName returns the best human-readable name available for the user.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return u.ID
	}
}

// Package models - invite.go defines the Invite model: a single-use, expiring token
// that admits exactly one user into an organization as an employee.
package models

import "time"

// Invite represents an organization join token. A token is valid when it has
// not been used and has not passed its expiry.
type Invite struct {
	ID             string     `db:"id" json:"id"`
	OrganizationID string     `db:"organization_id" json:"organization_id"`
	Token          string     `db:"token" json:"token"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	UsedAt         *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// IsValid reports whether the invite can still be consumed at the given instant.
func (i *Invite) IsValid(now time.Time) bool {
	if i.UsedAt != nil {
		return false
	}
	if i.ExpiresAt != nil && !i.ExpiresAt.After(now) {
		return false
	}
	return true
}

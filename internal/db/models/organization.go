// Package models - organization.go defines the Organization model representing a B2B
// customer company with its legal requisites.
package models

import "time"

// Organization represents a B2B customer company
type Organization struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`       // Human-readable trade name
	LegalName     string    `json:"legal_name"` // Registered legal entity name
	INN           string    `json:"inn"`        // Tax identification number
	KPP           string    `json:"kpp,omitempty"`
	OGRN          string    `json:"ogrn,omitempty"`
	AddressLegal  string    `json:"address_legal,omitempty"`
	AddressActual string    `json:"address_actual,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	CreatedBy     *string   `json:"created_by,omitempty"` // User who registered the organization
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// organization_repository.go implements OrganizationRepository, providing database queries
// for organization registration, requisites updates, and listing.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freshgreens/ordering-backend/internal/db/models"
)

// OrganizationRepository handles database operations for organizations
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

const organizationColumns = `id, name, legal_name, inn, kpp, ogrn, address_legal, address_actual, phone, email, comment, created_by, created_at, updated_at`

func scanOrganization(row *sql.Row) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.LegalName,
		&org.INN,
		&org.KPP,
		&org.OGRN,
		&org.AddressLegal,
		&org.AddressActual,
		&org.Phone,
		&org.Email,
		&org.Comment,
		&org.CreatedBy,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return org, nil
}

// GetByID retrieves an organization by ID
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE id = $1
	`

	org, err := scanOrganization(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}

	return org, nil
}

// GetByINN retrieves an organization by its tax identification number
func (r *OrganizationRepository) GetByINN(ctx context.Context, inn string) (*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		WHERE inn = $1
	`

	org, err := scanOrganization(r.db.QueryRowContext(ctx, query, inn))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get organization by inn: %w", err)
	}

	return org, nil
}

// Create inserts a new organization and fills in the generated fields
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (name, legal_name, inn, kpp, ogrn, address_legal, address_actual, phone, email, comment, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		org.Name,
		org.LegalName,
		org.INN,
		org.KPP,
		org.OGRN,
		org.AddressLegal,
		org.AddressActual,
		org.Phone,
		org.Email,
		org.Comment,
		org.CreatedBy,
	).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}

	return nil
}

// Update updates an organization's requisites
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, legal_name = $3, inn = $4, kpp = $5, ogrn = $6,
		    address_legal = $7, address_actual = $8, phone = $9, email = $10,
		    comment = $11, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		org.ID,
		org.Name,
		org.LegalName,
		org.INN,
		org.KPP,
		org.OGRN,
		org.AddressLegal,
		org.AddressActual,
		org.Phone,
		org.Email,
		org.Comment,
	)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}

	return nil
}

// Delete deletes an organization (cascades to invites and orders)
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM organizations WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}

// List retrieves a paginated list of organizations
func (r *OrganizationRepository) List(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	query := `
		SELECT ` + organizationColumns + `
		FROM organizations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]*models.Organization, 0)
	for rows.Next() {
		org := &models.Organization{}
		err := rows.Scan(
			&org.ID,
			&org.Name,
			&org.LegalName,
			&org.INN,
			&org.KPP,
			&org.OGRN,
			&org.AddressLegal,
			&org.AddressActual,
			&org.Phone,
			&org.Email,
			&org.Comment,
			&org.CreatedBy,
			&org.CreatedAt,
			&org.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	return orgs, rows.Err()
}

// Count returns the total number of organizations
func (r *OrganizationRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM organizations`
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count organizations: %w", err)
	}

	return count, nil
}

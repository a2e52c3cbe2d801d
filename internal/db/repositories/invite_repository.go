// invite_repository.go implements InviteRepository, providing database queries for
// issuing, consuming, and sweeping organization join invites. Consumption is a
// single transaction so an invite can never admit more than one user.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/freshgreens/ordering-backend/internal/db/models"
)

// InviteRepository handles database operations for organization invites
type InviteRepository struct {
	db *sqlx.DB
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db *sqlx.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

// Create inserts a new invite and fills in the generated fields
func (r *InviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	query := `
		INSERT INTO invites (organization_id, token, created_by, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		invite.OrganizationID,
		invite.Token,
		invite.CreatedBy,
		invite.ExpiresAt,
	).Scan(&invite.ID, &invite.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	return nil
}

// GetByToken retrieves an invite by its token
func (r *InviteRepository) GetByToken(ctx context.Context, token string) (*models.Invite, error) {
	query := `
		SELECT id, organization_id, token, created_by, expires_at, used_at, created_at
		FROM invites
		WHERE token = $1
	`

	invite := &models.Invite{}
	err := r.db.GetContext(ctx, invite, query, token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	return invite, nil
}

// ListByOrganization retrieves all invites issued by an organization, newest first
func (r *InviteRepository) ListByOrganization(ctx context.Context, orgID string) ([]*models.Invite, error) {
	query := `
		SELECT id, organization_id, token, created_by, expires_at, used_at, created_at
		FROM invites
		WHERE organization_id = $1
		ORDER BY created_at DESC
	`

	invites := make([]*models.Invite, 0)
	if err := r.db.SelectContext(ctx, &invites, query, orgID); err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}

	return invites, nil
}

// Consume marks the invite used and attaches the user to its organization as an
// employee, all in one transaction. It returns (nil, nil) when the token does
// not exist, is already used, or has expired, and ErrAlreadyMember when the
// user already belongs to an organization. The used_at guard in the UPDATE is
// what makes concurrent consumption of the same token safe: exactly one
// transaction sees the row.
func (r *InviteRepository) Consume(ctx context.Context, token, userID string) (*models.Invite, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE invites
		SET used_at = NOW()
		WHERE token = $1
		  AND used_at IS NULL
		  AND (expires_at IS NULL OR expires_at > NOW())
		RETURNING id, organization_id, token, created_by, expires_at, used_at, created_at
	`

	invite := &models.Invite{}
	err = tx.GetContext(ctx, invite, query, token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found, used, or expired
		}
		return nil, fmt.Errorf("failed to consume invite: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE users
		SET organization_id = $2, role = $3, updated_at = NOW()
		WHERE id = $1 AND organization_id IS NULL
	`, userID, invite.OrganizationID, models.RoleEmployee)
	if err != nil {
		return nil, fmt.Errorf("failed to attach user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to attach user: %w", err)
	}
	if affected == 0 {
		return nil, ErrAlreadyMember
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit invite consumption: %w", err)
	}

	return invite, nil
}

// DeleteExpired removes unused invites whose expiry has passed and returns how
// many were swept.
func (r *InviteRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM invites
		WHERE used_at IS NULL
		  AND expires_at IS NOT NULL
		  AND expires_at < NOW()
	`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invites: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invites: %w", err)
	}

	return affected, nil
}

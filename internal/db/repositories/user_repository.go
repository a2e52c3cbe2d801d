// Package repositories implements the data access layer (repository pattern) for the ordering backend.
// Each repository type encapsulates all database queries for a domain entity.
// Handlers never issue SQL directly. All database access goes through this
// layer, which keeps query logic testable in isolation.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freshgreens/ordering-backend/internal/db/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, telegram_id, username, first_name, last_name, role, organization_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.OrganizationID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetByTelegramID retrieves a user by their Telegram account ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `
		SELECT id, telegram_id, username, first_name, last_name, role, organization_id, created_at, updated_at
		FROM users
		WHERE telegram_id = $1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.OrganizationID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
	}

	return user, nil
}

// UpsertTelegram creates the user on first sign-in or refreshes the profile
// fields Telegram sent on subsequent sign-ins. Role and organization are never
// touched here.
func (r *UserRepository) UpsertTelegram(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
		RETURNING id, telegram_id, username, first_name, last_name, role, organization_id, created_at, updated_at
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, telegramID, username, firstName, lastName).Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.OrganizationID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

// SetMembership assigns the user to an organization with the given role
func (r *UserRepository) SetMembership(ctx context.Context, userID, orgID, role string) error {
	query := `
		UPDATE users
		SET organization_id = $2, role = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, userID, orgID, role)
	if err != nil {
		return fmt.Errorf("failed to set membership: %w", err)
	}

	return nil
}

// ListByOrganization retrieves all members of an organization
func (r *UserRepository) ListByOrganization(ctx context.Context, orgID string) ([]*models.User, error) {
	query := `
		SELECT id, telegram_id, username, first_name, last_name, role, organization_id, created_at, updated_at
		FROM users
		WHERE organization_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.TelegramID,
			&user.Username,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.OrganizationID,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// List retrieves a paginated list of users
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT id, telegram_id, username, first_name, last_name, role, organization_id, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.TelegramID,
			&user.Username,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.OrganizationID,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Count returns the total number of users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var total int
	query := `SELECT COUNT(*) FROM users`
	err := r.db.QueryRowContext(ctx, query).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return total, nil
}

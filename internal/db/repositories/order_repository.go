// order_repository.go implements OrderRepository, providing database queries for the
// order aggregate. Every mutation of a draft runs inside a transaction that
// first locks the order row with SELECT ... FOR UPDATE, so concurrent edits by
// an organization's employees serialize instead of clobbering each other.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/freshgreens/ordering-backend/internal/db/models"
)

// OrderRepository handles database operations for orders and their line items
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, organization_id, buyer_id, customer_id, status, items, total, comment, submitted_at, created_at, updated_at`

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.OrganizationID,
		&order.BuyerID,
		&order.CustomerID,
		&order.Status,
		(*[]byte)(&order.Items),
		&order.Total,
		&order.Comment,
		&order.SubmittedAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID retrieves an order by ID
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// ListByOrganization retrieves an organization's orders, newest first. When
// employeeID is set, draft visibility narrows to orders the employee has added
// at least one item to.
func (r *OrderRepository) ListByOrganization(ctx context.Context, orgID string, employeeID *string) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE organization_id = $1
	`
	args := []interface{}{orgID}
	if employeeID != nil {
		// Drafts stay hidden from employees until they have contributed a
		// line; finished orders are visible to the whole organization.
		query += `
		  AND (status <> 'draft' OR EXISTS (
			SELECT 1 FROM order_items oi
			WHERE oi.order_id = orders.id AND oi.employee_id = $2
		  ))`
		args = append(args, *employeeID)
	}
	query += `
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// ListByCustomer retrieves a customer's storefront orders, newest first
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// OrderFilter controls the admin order listing.
type OrderFilter struct {
	Status     string // empty means all statuses
	SortBy     string // one of orderSortColumns; defaults to created_at
	Descending bool
	Limit      int
	Offset     int
}

// Sortable columns for the admin listing. Anything else falls back to
// created_at, keeping user input out of the ORDER BY clause.
var orderSortColumns = map[string]string{
	"id":         "id",
	"created_at": "created_at",
	"total":      "total",
}

// List retrieves a filtered, sorted, paginated list of orders for the admin panel
func (r *OrderRepository) List(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	sortColumn, ok := orderSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
	`
	args := []interface{}{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`, sortColumn, direction, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// Count returns the number of orders matching the status filter
func (r *OrderRepository) Count(ctx context.Context, status string) (int, error) {
	query := `SELECT COUNT(*) FROM orders`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// ListItems retrieves an order's line items in insertion order
func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, employee_id, product_id, product_name, unit_price, quantity, comment, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.OrderItem, 0)
	for rows.Next() {
		item := &models.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.EmployeeID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.Comment,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// CreateDraft returns the organization's open draft, creating an empty one
// when none exists. The partial unique index on orders keeps this to one open
// draft per organization even under concurrent creates; a loser of the insert
// race reads back the winner's row. Reports whether a new draft was created:
// when an existing draft is returned, order is overwritten with the stored
// row and the caller's buyer_id is not applied.
func (r *OrderRepository) CreateDraft(ctx context.Context, order *models.Order) (bool, error) {
	existing, err := r.openDraft(ctx, *order.OrganizationID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		*order = *existing
		return false, nil
	}

	order.Status = models.StatusDraft
	order.Total = decimal.Zero

	query := `
		INSERT INTO orders (organization_id, buyer_id, status, total, comment)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (organization_id) WHERE status = 'draft' DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		order.OrganizationID,
		order.BuyerID,
		order.Status,
		order.Total,
		order.Comment,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	if err == sql.ErrNoRows {
		// Another member opened a draft between our check and the insert.
		existing, err := r.openDraft(ctx, *order.OrganizationID)
		if err != nil {
			return false, err
		}
		if existing == nil {
			return false, fmt.Errorf("failed to create draft order: conflicting draft disappeared")
		}
		*order = *existing
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create draft order: %w", err)
	}

	return true, nil
}

// openDraft reads the organization's current draft order, if any.
func (r *OrderRepository) openDraft(ctx context.Context, orgID string) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE organization_id = $1 AND status = 'draft'
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orgID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read open draft: %w", err)
	}

	return order, nil
}

// CreateFlat inserts a storefront order already carrying its frozen item list
// and total. Flat orders skip the draft stage entirely.
func (r *OrderRepository) CreateFlat(ctx context.Context, order *models.Order) error {
	order.Status = models.StatusPending

	query := `
		INSERT INTO orders (customer_id, status, items, total, comment, submitted_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, submitted_at, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		order.CustomerID,
		order.Status,
		order.Items,
		order.Total,
		order.Comment,
	).Scan(&order.ID, &order.SubmittedAt, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// AddItem appends a line item to a draft order and recomputes the running
// total. The item's ProductName and UnitPrice snapshots are taken from the
// product row inside the same transaction. Returns (nil, nil) when the order
// does not exist.
func (r *OrderRepository) AddItem(ctx context.Context, orderID string, item *models.OrderItem) (*models.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := r.lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil // Not found
	}
	if order.Status != models.StatusDraft {
		return nil, ErrNotDraft
	}

	err = tx.QueryRowContext(ctx, `SELECT name, price FROM products WHERE id = $1`, item.ProductID).
		Scan(&item.ProductName, &item.UnitPrice)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductMissing
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO order_items (order_id, employee_id, product_id, product_name, unit_price, quantity, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, orderID, item.EmployeeID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.Comment).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order item: %w", err)
	}
	item.OrderID = orderID

	if err := r.refreshTotal(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item add: %w", err)
	}

	return order, nil
}

// RemoveItem deletes a line item from a draft order and recomputes the running
// total. When requireEmployeeID is set, the item must have been added by that
// user. Returns (nil, nil, nil) when the order does not exist.
func (r *OrderRepository) RemoveItem(ctx context.Context, orderID, itemID string, requireEmployeeID *string) (*models.Order, *models.OrderItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := r.lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, nil // Not found
	}
	if order.Status != models.StatusDraft {
		return nil, nil, ErrNotDraft
	}

	item := &models.OrderItem{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, order_id, employee_id, product_id, product_name, unit_price, quantity, comment, created_at
		FROM order_items
		WHERE id = $1 AND order_id = $2
	`, itemID, orderID).Scan(
		&item.ID,
		&item.OrderID,
		&item.EmployeeID,
		&item.ProductID,
		&item.ProductName,
		&item.UnitPrice,
		&item.Quantity,
		&item.Comment,
		&item.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrItemMissing
		}
		return nil, nil, fmt.Errorf("failed to read order item: %w", err)
	}

	if requireEmployeeID != nil && item.EmployeeID != *requireEmployeeID {
		return nil, nil, ErrItemNotOwned
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1`, itemID); err != nil {
		return nil, nil, fmt.Errorf("failed to delete order item: %w", err)
	}

	if err := r.refreshTotal(ctx, tx, order); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit item removal: %w", err)
	}

	return order, item, nil
}

// Submit finalizes a draft: it prices every line item at the catalog's current
// price, freezes the result into the order's JSON item list, and moves the
// order to submitted. After this the order can no longer change. Returns
// (nil, nil) when the order does not exist.
func (r *OrderRepository) Submit(ctx context.Context, orderID, buyerID string) (*models.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := r.lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil // Not found
	}
	if order.Status != models.StatusDraft {
		return nil, ErrNotDraft
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT oi.product_id, oi.quantity, p.price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}

	frozen := make([]models.LegacyItem, 0)
	total := decimal.Zero
	for rows.Next() {
		var li models.LegacyItem
		if err := rows.Scan(&li.ProductID, &li.Quantity, &li.Price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		frozen = append(frozen, li)
		total = total.Add(li.Quantity.Mul(li.Price))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}

	if len(frozen) == 0 {
		return nil, ErrEmptyOrder
	}

	itemsJSON, err := json.Marshal(frozen)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order items: %w", err)
	}
	total = total.Round(2)

	err = tx.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $2, buyer_id = $3, items = $4, total = $5, submitted_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING submitted_at, updated_at
	`, orderID, models.StatusSubmitted, buyerID, itemsJSON, total).
		Scan(&order.SubmittedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit submit: %w", err)
	}

	order.Status = models.StatusSubmitted
	order.BuyerID = &buyerID
	order.Items = itemsJSON
	order.Total = total

	return order, nil
}

// Delete deletes an order (cascades to its line items)
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM orders WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	return nil
}

// lockOrder reads the order row with FOR UPDATE so the caller's transaction
// holds it until commit. Returns (nil, nil) when the order does not exist.
func (r *OrderRepository) lockOrder(ctx context.Context, tx *sql.Tx, orderID string) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	order, err := scanOrder(tx.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	return order, nil
}

// refreshTotal recomputes the draft's running total from its line items priced
// at the catalog's current prices and writes it back to the order row.
func (r *OrderRepository) refreshTotal(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	var total decimal.Decimal
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(oi.quantity * p.price), 0)
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
	`, order.ID).Scan(&total)
	if err != nil {
		return fmt.Errorf("failed to recompute total: %w", err)
	}
	total = total.Round(2)

	err = tx.QueryRowContext(ctx, `
		UPDATE orders SET total = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at
	`, order.ID, total).Scan(&order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update total: %w", err)
	}

	order.Total = total
	return nil
}

// catalog_repository.go implements CatalogRepository, providing database queries for
// categories and products: storefront browsing, admin CRUD, and the bulk upsert
// used by CSV imports.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/freshgreens/ordering-backend/internal/db/models"
)

// CatalogRepository handles database operations for categories and products
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

// ListCategories retrieves all categories ordered for storefront display
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT id, name, sort_order, created_at, updated_at
		FROM categories
		ORDER BY sort_order, name
	`

	categories := make([]*models.Category, 0)
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// GetCategory retrieves a category by ID
func (r *CatalogRepository) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	query := `
		SELECT id, name, sort_order, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	category := &models.Category{}
	err := r.db.GetContext(ctx, category, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// CreateCategory inserts a new category and fills in the generated fields
func (r *CatalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (name, sort_order)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, category.Name, category.SortOrder).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// UpdateCategory updates a category's name and sort position
func (r *CatalogRepository) UpdateCategory(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, sort_order = $3, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	return nil
}

// DeleteCategory deletes a category; its products keep existing with no category
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id string) error {
	query := `DELETE FROM categories WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

const productColumns = `id, category_id, name, description, photo_url, unit, price, min_order, created_at, updated_at`

// ListProducts retrieves products, optionally restricted to one category
func (r *CatalogRepository) ListProducts(ctx context.Context, categoryID *string) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
	`
	args := []interface{}{}
	if categoryID != nil {
		query += ` WHERE category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY name`

	products := make([]*models.Product, 0)
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// GetProduct retrieves a product by ID
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	product := &models.Product{}
	err := r.db.GetContext(ctx, product, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetProductsByIDs retrieves the given products keyed by ID. Missing IDs are
// simply absent from the map.
func (r *CatalogRepository) GetProductsByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	result := make(map[string]*models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+productColumns+`
		FROM products
		WHERE id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build product lookup: %w", err)
	}
	query = r.db.Rebind(query)

	products := make([]*models.Product, 0, len(ids))
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	for _, p := range products {
		result[p.ID] = p
	}

	return result, nil
}

// CreateProduct inserts a new product and fills in the generated fields
func (r *CatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (category_id, name, description, photo_url, unit, price, min_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		product.CategoryID,
		product.Name,
		product.Description,
		product.PhotoURL,
		product.Unit,
		product.Price,
		product.MinOrder,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// UpdateProduct updates all mutable product fields
func (r *CatalogRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET category_id = $2, name = $3, description = $4, photo_url = $5,
		    unit = $6, price = $7, min_order = $8, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.CategoryID,
		product.Name,
		product.Description,
		product.PhotoURL,
		product.Unit,
		product.Price,
		product.MinOrder,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// SetProductPhoto updates only the photo URL after an upload
func (r *CatalogRepository) SetProductPhoto(ctx context.Context, id, photoURL string) error {
	query := `UPDATE products SET photo_url = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, photoURL)
	if err != nil {
		return fmt.Errorf("failed to set product photo: %w", err)
	}

	return nil
}

// DeleteProduct deletes a product. Products referenced by submitted B2B
// orders are protected by the order_items foreign key; that case surfaces as
// ErrProductInUse so the handler can report it instead of a bare failure.
// Storefront orders reference products only through the frozen JSON item
// list, so they never block a delete.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrProductInUse
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// UpsertProductByName inserts the product or, when a product with the same
// name already exists, refreshes its fields in place. CSV imports rely on this
// so re-importing a price list is idempotent.
func (r *CatalogRepository) UpsertProductByName(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (category_id, name, description, photo_url, unit, price, min_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE
		SET category_id = EXCLUDED.category_id,
		    description = EXCLUDED.description,
		    unit = EXCLUDED.unit,
		    price = EXCLUDED.price,
		    min_order = EXCLUDED.min_order,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		product.CategoryID,
		product.Name,
		product.Description,
		product.PhotoURL,
		product.Unit,
		product.Price,
		product.MinOrder,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// catalog.go implements the public catalog endpoints consumed by the Telegram
// mini-app storefront. No authentication: the catalog is browsable before login.
package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/freshgreens/ordering-backend/internal/db/repositories"
)

// CatalogHandlers handles public catalog browsing endpoints
type CatalogHandlers struct {
	catalog *repositories.CatalogRepository
}

// NewCatalogHandlers creates a new CatalogHandlers instance
func NewCatalogHandlers(db *sqlx.DB) *CatalogHandlers {
	return &CatalogHandlers{
		catalog: repositories.NewCatalogRepository(db),
	}
}

// ListCategoriesHandler lists all product categories in sort order
// GET /api/v1/categories
func (h *CatalogHandlers) ListCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := h.catalog.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list categories",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}

// ListProductsHandler lists products, optionally filtered by category
// GET /api/v1/products?category_id=<uuid>
func (h *CatalogHandlers) ListProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var categoryID *string
		if id := c.Query("category_id"); id != "" {
			categoryID = &id
		}

		products, err := h.catalog.ListProducts(c.Request.Context(), categoryID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list products",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

// GetProductHandler retrieves a single product by ID
// GET /api/v1/products/:id
func (h *CatalogHandlers) GetProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve product",
			})
			return
		}
		if product == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

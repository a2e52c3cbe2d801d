// categories.go implements category CRUD for the back-office.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/db/models"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
)

// CategoryHandlers handles category management endpoints
type CategoryHandlers struct {
	catalog *repositories.CatalogRepository
}

// NewCategoryHandlers creates a new CategoryHandlers instance
func NewCategoryHandlers(catalog *repositories.CatalogRepository) *CategoryHandlers {
	return &CategoryHandlers{catalog: catalog}
}

// CategoryRequest is the category create and update request body.
type CategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// ListCategoriesHandler lists all categories
// GET /api/v1/admin/categories
func (h *CategoryHandlers) ListCategoriesHandler() gin.HandlerFunc {
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

// CreateCategoryHandler creates a new category
// POST /api/v1/admin/categories
func (h *CategoryHandlers) CreateCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}

		category := &models.Category{
			Name:      req.Name,
			SortOrder: req.SortOrder,
		}
		if err := h.catalog.CreateCategory(c.Request.Context(), category); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create category",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"category": category})
	}
}

// UpdateCategoryHandler updates a category's name and sort order
// PUT /api/v1/admin/categories/:id
func (h *CategoryHandlers) UpdateCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := h.catalog.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve category",
			})
			return
		}
		if category == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Category not found",
			})
			return
		}

		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}

		category.Name = req.Name
		category.SortOrder = req.SortOrder
		if err := h.catalog.UpdateCategory(c.Request.Context(), category); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update category",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"category": category})
	}
}

// DeleteCategoryHandler removes a category. Products keep existing with a
// detached category reference.
// DELETE /api/v1/admin/categories/:id
func (h *CategoryHandlers) DeleteCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		category, err := h.catalog.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve category",
			})
			return
		}
		if category == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Category not found",
			})
			return
		}

		if err := h.catalog.DeleteCategory(c.Request.Context(), category.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete category",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
	}
}

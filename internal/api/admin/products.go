// products.go implements product CRUD and photo upload for the back-office.
package admin

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/freshgreens/ordering-backend/internal/db/models"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
	"github.com/freshgreens/ordering-backend/internal/storage"
)

// maxPhotoSize caps product photo uploads at 10 MB.
const maxPhotoSize = 10 << 20

// photoURLTTL is the validity window requested for presigned photo URLs.
// The local backend ignores it and returns a stable URL.
const photoURLTTL = 7 * 24 * time.Hour

var allowedPhotoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ProductHandlers handles product management endpoints
type ProductHandlers struct {
	catalog *repositories.CatalogRepository
	storage storage.Storage
}

// NewProductHandlers creates a new ProductHandlers instance
func NewProductHandlers(catalog *repositories.CatalogRepository, backend storage.Storage) *ProductHandlers {
	return &ProductHandlers{
		catalog: catalog,
		storage: backend,
	}
}

// ProductRequest is the product create and update request body.
type ProductRequest struct {
	CategoryID  *string         `json:"category_id"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Unit        string          `json:"unit" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	MinOrder    decimal.Decimal `json:"min_order"`
}

func (r *ProductRequest) validate() string {
	if r.Price.IsNegative() {
		return "price must not be negative"
	}
	if !r.MinOrder.IsPositive() {
		return "min_order must be positive"
	}
	return ""
}

// CreateProductHandler creates a new product
// POST /api/v1/admin/products
func (h *ProductHandlers) CreateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}
		if msg := req.validate(); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		product := &models.Product{
			CategoryID:  req.CategoryID,
			Name:        req.Name,
			Description: req.Description,
			Unit:        req.Unit,
			Price:       req.Price,
			MinOrder:    req.MinOrder,
		}
		if err := h.catalog.CreateProduct(c.Request.Context(), product); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create product",
			})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"product": product})
	}
}

// UpdateProductHandler updates a product
// PUT /api/v1/admin/products/:id
func (h *ProductHandlers) UpdateProductHandler() gin.HandlerFunc {
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

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}
		if msg := req.validate(); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		product.CategoryID = req.CategoryID
		product.Name = req.Name
		product.Description = req.Description
		product.Unit = req.Unit
		product.Price = req.Price
		product.MinOrder = req.MinOrder
		if err := h.catalog.UpdateProduct(c.Request.Context(), product); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update product",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

// DeleteProductHandler removes a product from the catalog. A product still
// referenced by B2B order lines cannot be deleted and answers 409; storefront
// orders only hold frozen snapshots and never block a delete.
// DELETE /api/v1/admin/products/:id
func (h *ProductHandlers) DeleteProductHandler() gin.HandlerFunc {
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

		if err := h.catalog.DeleteProduct(c.Request.Context(), product.ID); err != nil {
			if errors.Is(err, repositories.ErrProductInUse) {
				c.JSON(http.StatusConflict, gin.H{
					"error": "Product is referenced by existing orders and cannot be deleted",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete product",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
	}
}

// UploadPhotoHandler stores a product photo and records its serving URL.
// Photos are keyed by product ID, so uploading again replaces the image.
// POST /api/v1/admin/products/:id/photo (multipart field "photo")
func (h *ProductHandlers) UploadPhotoHandler() gin.HandlerFunc {
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

		fileHeader, err := c.FormFile("photo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "photo file is required",
			})
			return
		}
		if fileHeader.Size > maxPhotoSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "photo must be 10 MB or smaller",
			})
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedPhotoExts[ext] {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "photo must be a jpg, png, or webp image",
			})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to read photo",
			})
			return
		}
		defer file.Close()

		path := storage.PhotoPath(product.ID, ext)
		result, err := h.storage.Upload(c.Request.Context(), path, file, fileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to store photo",
			})
			return
		}

		url, err := h.storage.GetURL(c.Request.Context(), result.Path, photoURLTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to build photo URL",
			})
			return
		}

		if err := h.catalog.SetProductPhoto(c.Request.Context(), product.ID, url); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to save photo URL",
			})
			return
		}
		product.PhotoURL = url

		c.JSON(http.StatusOK, gin.H{
			"product":  product,
			"checksum": result.Checksum,
		})
	}
}

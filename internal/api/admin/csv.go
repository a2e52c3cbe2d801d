// csv.go implements bulk catalog maintenance: importing a product CSV and
// exporting the current catalog in the same format, so the export can be
// edited in a spreadsheet and imported back.
package admin

import (
	"encoding/csv"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/db/models"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
	"github.com/freshgreens/ordering-backend/internal/telemetry"
	"github.com/freshgreens/ordering-backend/internal/validation"
)

// CSVHandlers handles catalog CSV import and export endpoints
type CSVHandlers struct {
	catalog *repositories.CatalogRepository
}

// NewCSVHandlers creates a new CSVHandlers instance
func NewCSVHandlers(catalog *repositories.CatalogRepository) *CSVHandlers {
	return &CSVHandlers{catalog: catalog}
}

// ImportProductsHandler imports products from an uploaded CSV file. Rows are
// upserted by product name; rows that fail validation are reported back with
// their spreadsheet row numbers and skipped.
// POST /api/v1/admin/catalog/import (multipart field "file")
func (h *CSVHandlers) ImportProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "CSV file is required",
			})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to read uploaded file",
			})
			return
		}
		defer file.Close()

		rows, rowErrs, err := validation.ParseProductCSV(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		categories, err := h.categoryIDsByName(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load categories",
			})
			return
		}

		imported := 0
		for _, row := range rows {
			var categoryID *string
			if row.Category != "" {
				id, err := h.ensureCategory(c, categories, row.Category)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error": "Failed to create category " + row.Category,
					})
					return
				}
				categoryID = &id
			}

			product := &models.Product{
				CategoryID:  categoryID,
				Name:        row.Name,
				Description: row.Description,
				Unit:        row.Unit,
				Price:       row.Price,
				MinOrder:    row.MinOrder,
			}
			if err := h.catalog.UpsertProductByName(c.Request.Context(), product); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to import product " + row.Name,
				})
				return
			}
			imported++
		}

		telemetry.CSVImportRowsTotal.WithLabelValues("imported").Add(float64(imported))
		telemetry.CSVImportRowsTotal.WithLabelValues("rejected").Add(float64(len(rowErrs)))
		slog.Info("product CSV imported",
			"imported", imported,
			"rejected", len(rowErrs))

		status := http.StatusOK
		if len(rowErrs) > 0 {
			// Partial success still reports every rejected row.
			status = http.StatusMultiStatus
		}
		c.JSON(status, gin.H{
			"imported": imported,
			"rejected": len(rowErrs),
			"errors":   rowErrs,
		})
	}
}

// ExportProductsHandler streams the catalog as a CSV file in the import format
// GET /api/v1/admin/catalog/export
func (h *CSVHandlers) ExportProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := h.catalog.ListProducts(c.Request.Context(), nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list products",
			})
			return
		}

		categories, err := h.catalog.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list categories",
			})
			return
		}
		names := make(map[string]string, len(categories))
		for _, cat := range categories {
			names[cat.ID] = cat.Name
		}

		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="products.csv"`)
		c.Status(http.StatusOK)

		writer := csv.NewWriter(c.Writer)
		_ = writer.Write(validation.ProductCSVHeader)
		for _, p := range products {
			category := ""
			if p.CategoryID != nil {
				category = names[*p.CategoryID]
			}
			_ = writer.Write([]string{
				p.Name,
				p.Description,
				p.Unit,
				p.Price.String(),
				p.MinOrder.String(),
				category,
			})
		}
		writer.Flush()
	}
}

// categoryIDsByName loads the current category name to ID mapping.
func (h *CSVHandlers) categoryIDsByName(c *gin.Context) (map[string]string, error) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(categories))
	for _, cat := range categories {
		byName[cat.Name] = cat.ID
	}
	return byName, nil
}

// ensureCategory resolves a category name to its ID, creating the category on
// first sight and caching it for the rest of the import.
func (h *CSVHandlers) ensureCategory(c *gin.Context, byName map[string]string, name string) (string, error) {
	if id, ok := byName[name]; ok {
		return id, nil
	}
	category := &models.Category{Name: name}
	if err := h.catalog.CreateCategory(c.Request.Context(), category); err != nil {
		return "", err
	}
	byName[name] = category.ID
	return category.ID, nil
}

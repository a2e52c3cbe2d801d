// orders.go implements admin order management. The listing spans both sales
// channels; the detail view projects relational and frozen item lists into
// one uniform shape so the back-office renders every order the same way.
package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/api/httperr"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
	"github.com/freshgreens/ordering-backend/internal/orders"
)

// OrderHandlers handles admin order endpoints
type OrderHandlers struct {
	svc    *orders.Service
	orders *repositories.OrderRepository
}

// NewOrderHandlers creates a new OrderHandlers instance
func NewOrderHandlers(svc *orders.Service, repo *repositories.OrderRepository) *OrderHandlers {
	return &OrderHandlers{
		svc:    svc,
		orders: repo,
	}
}

// ListOrdersHandler lists orders across both channels with filtering and sorting
// GET /api/v1/admin/orders?status=submitted&sort_by=total&order=desc&page=1&per_page=20
func (h *OrderHandlers) ListOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

		if page < 1 {
			page = 1
		}
		if perPage < 1 || perPage > 100 {
			perPage = 20
		}

		filter := repositories.OrderFilter{
			Status:     c.Query("status"),
			SortBy:     c.DefaultQuery("sort_by", "created_at"),
			Descending: c.DefaultQuery("order", "desc") == "desc",
			Limit:      perPage,
			Offset:     (page - 1) * perPage,
		}

		list, err := h.orders.List(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list orders",
			})
			return
		}

		total, err := h.orders.Count(c.Request.Context(), filter.Status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to count orders",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": list,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// GetOrderHandler retrieves one order with its projected item list
// GET /api/v1/admin/orders/:id
func (h *OrderHandlers) GetOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve order",
			})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}

		items, err := h.svc.Project(c.Request.Context(), order)
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"order": order,
			"items": items,
		})
	}
}

// DeleteOrderHandler removes an order and its line items
// DELETE /api/v1/admin/orders/:id
func (h *OrderHandlers) DeleteOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to retrieve order",
			})
			return
		}
		if order == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}

		if err := h.orders.Delete(c.Request.Context(), order.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete order",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
	}
}

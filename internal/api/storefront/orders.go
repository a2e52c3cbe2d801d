// orders.go implements storefront checkout. A storefront order has no draft
// stage: the cart is posted once, priced at current catalog prices, and the
// item list is frozen immediately.
package storefront

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/freshgreens/ordering-backend/internal/api/httperr"
	"github.com/freshgreens/ordering-backend/internal/middleware"
	"github.com/freshgreens/ordering-backend/internal/orders"
)

// OrderHandlers handles storefront order endpoints
type OrderHandlers struct {
	svc *orders.Service
}

// NewOrderHandlers creates a new OrderHandlers instance
func NewOrderHandlers(svc *orders.Service) *OrderHandlers {
	return &OrderHandlers{svc: svc}
}

// OrderLineRequest is one cart line in a checkout request.
type OrderLineRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateOrderRequest is the checkout request body.
type CreateOrderRequest struct {
	Items   []OrderLineRequest `json:"items" binding:"required"`
	Comment string             `json:"comment"`
}

// CreateOrderHandler places a storefront order from the posted cart
// POST /api/v1/orders
func (h *OrderHandlers) CreateOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.ContextUserID)

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}

		lines := make([]orders.FlatLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, orders.FlatLine{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order, err := h.svc.CreateFlat(c.Request.Context(), userID, lines, req.Comment)
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// MyOrdersHandler lists the signed-in customer's own orders
// GET /api/v1/my-orders
func (h *OrderHandlers) MyOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.ContextUserID)

		list, err := h.svc.ListByCustomer(c.Request.Context(), userID)
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

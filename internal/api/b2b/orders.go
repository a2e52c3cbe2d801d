// orders.go implements the collaborative draft order endpoints. A draft is
// shared by the whole organization: employees add the lines they need, the
// buyer reviews and submits. All authorization and state rules live in the
// orders service; handlers only translate HTTP.
package b2b

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/freshgreens/ordering-backend/internal/api/httperr"
	"github.com/freshgreens/ordering-backend/internal/orders"
)

// OrderHandlers handles B2B draft order endpoints
type OrderHandlers struct {
	svc *orders.Service
}

// NewOrderHandlers creates a new OrderHandlers instance
func NewOrderHandlers(svc *orders.Service) *OrderHandlers {
	return &OrderHandlers{svc: svc}
}

// CreateDraftRequest is the draft creation request body.
type CreateDraftRequest struct {
	Comment string `json:"comment"`
}

// CreateDraftHandler opens a new empty draft for the actor's organization
// POST /api/v1/b2b/orders
func (h *OrderHandlers) CreateDraftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireMembership(c)
		if !ok {
			return
		}

		var req CreateDraftRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		order, err := h.svc.CreateDraft(c.Request.Context(), actor, req.Comment)
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// ListOrdersHandler lists the organization's orders visible to the actor
// GET /api/v1/b2b/orders
func (h *OrderHandlers) ListOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireMembership(c)
		if !ok {
			return
		}

		list, err := h.svc.List(c.Request.Context(), actor)
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

// GetOrderHandler retrieves one order with its line items
// GET /api/v1/b2b/orders/:id
func (h *OrderHandlers) GetOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireMembership(c)
		if !ok {
			return
		}

		order, items, err := h.svc.Get(c.Request.Context(), actor, c.Param("id"))
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

// AddItemRequest is the line item creation request body.
type AddItemRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Comment   string          `json:"comment"`
}

// AddItemHandler appends a line item to a draft
// POST /api/v1/b2b/orders/:id/items
func (h *OrderHandlers) AddItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireMembership(c)
		if !ok {
			return
		}

		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body: " + err.Error(),
			})
			return
		}

		order, item, err := h.svc.AddItem(c.Request.Context(), actor, c.Param("id"), req.ProductID, req.Quantity, req.Comment)
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"order": order,
			"item":  item,
		})
	}
}

// RemoveItemHandler removes a line item from a draft. Buyers may remove any
// line, employees only their own.
// DELETE /api/v1/b2b/orders/:id/items/:item_id
func (h *OrderHandlers) RemoveItemHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireMembership(c)
		if !ok {
			return
		}

		order, err := h.svc.RemoveItem(c.Request.Context(), actor, c.Param("id"), c.Param("item_id"))
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// SubmitOrderHandler submits a draft, freezing its item list and total
// POST /api/v1/b2b/orders/:id/submit
func (h *OrderHandlers) SubmitOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireMembership(c)
		if !ok {
			return
		}

		order, err := h.svc.Submit(c.Request.Context(), actor, c.Param("id"))
		if err != nil {
			httperr.Abort(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// stats.go implements the back-office dashboard. All counters come back in a
// single round-trip so the dashboard stays one query regardless of how many
// tiles it renders.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// StatsHandler handles dashboard statistics requests
type StatsHandler struct {
	db *sqlx.DB
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(database *sqlx.DB) *StatsHandler {
	return &StatsHandler{db: database}
}

// OrderStats breaks orders down by lifecycle state.
type OrderStats struct {
	Total     int64           `json:"total"`
	Drafts    int64           `json:"drafts"`
	Submitted int64           `json:"submitted"`
	Pending   int64           `json:"pending"`
	Revenue   decimal.Decimal `json:"revenue"` // sum of totals over finished orders
}

// CatalogStats counts the catalog surface.
type CatalogStats struct {
	Products   int64 `json:"products"`
	Categories int64 `json:"categories"`
}

// InviteStats tracks the invite funnel.
type InviteStats struct {
	Active int64 `json:"active"`
	Used   int64 `json:"used"`
}

// DashboardStats is the dashboard response.
type DashboardStats struct {
	Orders        OrderStats   `json:"orders"`
	Catalog       CatalogStats `json:"catalog"`
	Users         int64        `json:"users"`
	Organizations int64        `json:"organizations"`
	Invites       InviteStats  `json:"invites"`
}

// dashboardRow is the flat scan target for the single aggregate query.
type dashboardRow struct {
	OrdersTotal     int64           `db:"orders_total"`
	OrdersDraft     int64           `db:"orders_draft"`
	OrdersSubmitted int64           `db:"orders_submitted"`
	OrdersPending   int64           `db:"orders_pending"`
	Revenue         decimal.Decimal `db:"revenue"`
	Products        int64           `db:"products"`
	Categories      int64           `db:"categories"`
	Users           int64           `db:"users"`
	Organizations   int64           `db:"organizations"`
	InvitesActive   int64           `db:"invites_active"`
	InvitesUsed     int64           `db:"invites_used"`
}

const dashboardQuery = `
	SELECT
		(SELECT COUNT(*) FROM orders)                                                      AS orders_total,
		(SELECT COUNT(*) FROM orders WHERE status = 'draft')                               AS orders_draft,
		(SELECT COUNT(*) FROM orders WHERE status = 'submitted')                           AS orders_submitted,
		(SELECT COUNT(*) FROM orders WHERE status = 'pending')                             AS orders_pending,
		(SELECT COALESCE(SUM(total), 0) FROM orders WHERE status IN ('submitted', 'pending')) AS revenue,
		(SELECT COUNT(*) FROM products)                                                    AS products,
		(SELECT COUNT(*) FROM categories)                                                  AS categories,
		(SELECT COUNT(*) FROM users)                                                       AS users,
		(SELECT COUNT(*) FROM organizations)                                               AS organizations,
		(SELECT COUNT(*) FROM invites
		 WHERE used_at IS NULL AND (expires_at IS NULL OR expires_at > NOW()))             AS invites_active,
		(SELECT COUNT(*) FROM invites WHERE used_at IS NOT NULL)                           AS invites_used
`

// DashboardHandler returns aggregate statistics for the back-office dashboard
// GET /api/v1/admin/stats/dashboard
func (h *StatsHandler) DashboardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var row dashboardRow
		if err := h.db.GetContext(c.Request.Context(), &row, dashboardQuery); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load dashboard statistics",
			})
			return
		}

		c.JSON(http.StatusOK, DashboardStats{
			Orders: OrderStats{
				Total:     row.OrdersTotal,
				Drafts:    row.OrdersDraft,
				Submitted: row.OrdersSubmitted,
				Pending:   row.OrdersPending,
				Revenue:   row.Revenue,
			},
			Catalog: CatalogStats{
				Products:   row.Products,
				Categories: row.Categories,
			},
			Users:         row.Users,
			Organizations: row.Organizations,
			Invites: InviteStats{
				Active: row.InvitesActive,
				Used:   row.InvitesUsed,
			},
		})
	}
}

// Package b2b implements the authenticated B2B endpoints: collaborative draft
// orders, organization registration, and employee invites. Every handler here
// runs behind AuthMiddleware, so the user record is always present on the
// context.
package b2b

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/db/models"
	"github.com/freshgreens/ordering-backend/internal/middleware"
	"github.com/freshgreens/ordering-backend/internal/orders"
)

// currentUser returns the authenticated user set by AuthMiddleware.
func currentUser(c *gin.Context) *models.User {
	v, _ := c.Get(middleware.ContextUser)
	user, _ := v.(*models.User)
	return user
}

// requireMembership resolves the actor's organization membership or aborts
// with 403. Users outside any organization have no B2B surface at all.
func requireMembership(c *gin.Context) (orders.Membership, bool) {
	actor, ok := orders.MembershipOf(currentUser(c))
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Organization membership required",
		})
		return orders.Membership{}, false
	}
	return actor, true
}

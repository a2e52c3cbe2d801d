// invites.go implements the employee invite flow: the buyer generates a
// single-use link, shares it out of band, and the recipient joins the
// organization as an employee by consuming the token.
package b2b

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freshgreens/ordering-backend/internal/config"
	"github.com/freshgreens/ordering-backend/internal/db/models"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
	"github.com/freshgreens/ordering-backend/internal/telemetry"
)

// InviteHandlers handles organization invite endpoints
type InviteHandlers struct {
	cfg     *config.Config
	invites *repositories.InviteRepository
}

// NewInviteHandlers creates a new InviteHandlers instance
func NewInviteHandlers(cfg *config.Config, invites *repositories.InviteRepository) *InviteHandlers {
	return &InviteHandlers{
		cfg:     cfg,
		invites: invites,
	}
}

// CreateInviteHandler generates a single-use invite link. Buyer only.
// POST /api/v1/organization/invites
func (h *InviteHandlers) CreateInviteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !user.IsBuyer() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only the buyer can invite employees",
			})
			return
		}

		expiresAt := time.Now().Add(h.cfg.Invites.TTL)
		invite := &models.Invite{
			OrganizationID: *user.OrganizationID,
			Token:          uuid.New().String(),
			CreatedBy:      user.ID,
			ExpiresAt:      &expiresAt,
		}
		if err := h.invites.Create(c.Request.Context(), invite); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create invite",
			})
			return
		}

		telemetry.InvitesIssuedTotal.Inc()
		slog.Info("invite issued",
			"organization_id", invite.OrganizationID,
			"created_by", user.ID,
			"expires_at", expiresAt)

		c.JSON(http.StatusCreated, gin.H{
			"invite": invite,
			"url":    h.cfg.Frontend.JoinURL(invite.Token),
		})
	}
}

// ListInvitesHandler lists the organization's invites. Buyer only.
// GET /api/v1/organization/invites
func (h *InviteHandlers) ListInvitesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !user.IsBuyer() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only the buyer can list invites",
			})
			return
		}

		invites, err := h.invites.ListByOrganization(c.Request.Context(), *user.OrganizationID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list invites",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"invites": invites})
	}
}

// InviteTokenRequest carries the token for validation and join requests.
type InviteTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// ValidateInviteHandler checks whether a token can still be consumed, without
// consuming it. The frontend calls this to render the join screen.
// POST /api/v1/invites/validate
func (h *InviteHandlers) ValidateInviteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InviteTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "token is required",
			})
			return
		}

		invite, err := h.invites.GetByToken(c.Request.Context(), req.Token)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to validate invite",
			})
			return
		}
		if invite == nil || !invite.IsValid(time.Now()) {
			c.JSON(http.StatusOK, gin.H{"valid": false})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"valid":           true,
			"organization_id": invite.OrganizationID,
		})
	}
}

// JoinHandler consumes an invite token, attaching the actor to the inviting
// organization as an employee. Exactly one caller can win a given token.
// POST /api/v1/invites/join
func (h *InviteHandlers) JoinHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)

		var req InviteTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "token is required",
			})
			return
		}

		invite, err := h.invites.Consume(c.Request.Context(), req.Token, user.ID)
		if err == repositories.ErrAlreadyMember {
			c.JSON(http.StatusConflict, gin.H{
				"error": "You already belong to an organization",
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to join organization",
			})
			return
		}
		if invite == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Invite is invalid, expired, or already used",
			})
			return
		}

		telemetry.InvitesConsumedTotal.Inc()
		slog.Info("invite consumed",
			"organization_id", invite.OrganizationID,
			"user_id", user.ID)

		c.JSON(http.StatusOK, gin.H{
			"organization_id": invite.OrganizationID,
			"role":            models.RoleEmployee,
		})
	}
}

// Package admin implements the back-office endpoints: admin login, order
// management, catalog CRUD, CSV import/export, and the dashboard. Everything
// except login runs behind AdminAuthMiddleware.
package admin

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/auth"
	"github.com/freshgreens/ordering-backend/internal/config"
)

// AuthHandlers handles admin authentication endpoints
type AuthHandlers struct {
	cfg *config.Config
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(cfg *config.Config) *AuthHandlers {
	return &AuthHandlers{cfg: cfg}
}

// LoginRequest is the admin login request body.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler verifies admin credentials and issues an admin JWT
// POST /api/v1/admin/login
func (h *AuthHandlers) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "username and password are required",
			})
			return
		}

		err := auth.VerifyAdminCredentials(req.Username, req.Password,
			h.cfg.Auth.Admin.Username, h.cfg.Auth.Admin.PasswordHash)
		if err != nil {
			slog.Warn("admin login rejected", "username", req.Username, "ip", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid username or password",
			})
			return
		}

		token, err := auth.GenerateAdminJWT(req.Username, h.cfg.Auth.TokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to issue token",
			})
			return
		}

		slog.Info("admin logged in", "username", req.Username, "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

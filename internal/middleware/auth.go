// Package middleware provides Gin HTTP middleware for authentication,
// rate limiting, security headers, request IDs, and metrics.
//
// Middleware ordering matters and is enforced in router.go:
//
//	Security → RateLimit → Auth → Handler
//
// Security headers run first so they appear on all responses including errors.
// Rate limiting runs before auth to block brute-force attacks before any DB work.
// Auth populates the user identity that the handlers read from the context.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/auth"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
)

// Context keys set by the auth middleware.
const (
	ContextUser        = "user"
	ContextUserID      = "user_id"
	ContextAdmin       = "admin"
	ContextAdminClaims = "admin_claims"
)

// AuthMiddleware validates the bearer JWT and loads the user it names into
// the request context. Admin tokens are rejected here; the admin surface has
// its own middleware.
func AuthMiddleware(userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			return
		}

		if claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin token is not valid here",
			})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to load user",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "User not found",
			})
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)

		c.Next()
	}
}

// AdminAuthMiddleware validates the bearer JWT and requires the admin role.
// No user row is loaded; the admin credential lives in config, not the
// database.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			return
		}

		if !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}

		c.Set(ContextAdmin, true)
		c.Set(ContextAdminClaims, claims)

		c.Next()
	}
}

// bearerClaims extracts and validates the Authorization header. On failure it
// aborts the request and returns ok=false.
func bearerClaims(c *gin.Context) (*auth.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Missing authorization header",
		})
		return nil, false
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Authorization header must start with 'Bearer '",
		})
		return nil, false
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Authorization token is empty",
		})
		return nil, false
	}

	claims, err := auth.ValidateJWT(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
		})
		return nil, false
	}

	return claims, true
}

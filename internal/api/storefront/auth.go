// auth.go implements Telegram WebApp sign-in. The mini-app posts the raw
// initData string it received from Telegram; the handler verifies the bot
// signature, upserts the user record, and issues a session JWT.
package storefront

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshgreens/ordering-backend/internal/auth"
	"github.com/freshgreens/ordering-backend/internal/config"
	"github.com/freshgreens/ordering-backend/internal/db/repositories"
)

// AuthHandlers handles storefront authentication endpoints
type AuthHandlers struct {
	cfg   *config.Config
	users *repositories.UserRepository
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(cfg *config.Config, users *repositories.UserRepository) *AuthHandlers {
	return &AuthHandlers{
		cfg:   cfg,
		users: users,
	}
}

// TelegramLoginRequest is the sign-in request body.
type TelegramLoginRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

// TelegramLoginHandler verifies Telegram initData and issues a session token
// POST /api/v1/auth/telegram
func (h *AuthHandlers) TelegramLoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TelegramLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "init_data is required",
			})
			return
		}

		tgUser, err := auth.VerifyInitData(req.InitData, h.cfg.Auth.Telegram.BotToken, h.cfg.Auth.Telegram.InitDataMaxAge)
		if err != nil {
			// The distinction between malformed, forged, and stale payloads
			// stays in the logs; the client always sees the same 401.
			slog.Warn("telegram sign-in rejected", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid Telegram authentication data",
			})
			return
		}

		user, err := h.users.UpsertTelegram(c.Request.Context(), tgUser.ID, tgUser.Username, tgUser.FirstName, tgUser.LastName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to sign in",
			})
			return
		}

		token, err := auth.GenerateJWT(user.ID, tgUser.ID, user.Role, h.cfg.Auth.TokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to issue session token",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  user,
		})
	}
}

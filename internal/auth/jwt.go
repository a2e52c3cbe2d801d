// Package auth - jwt.go issues and verifies the HS256 session tokens handed
// out after Telegram or admin login, including startup validation of the
// signing secret.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret     string
	jwtSecretOnce sync.Once
	jwtSecretErr  error
)

// RoleAdmin marks tokens issued through the admin login, as opposed to the
// membership roles carried by Telegram-authenticated users.
const RoleAdmin = "admin"

// tokenIssuer goes into the iss claim of every token we sign.
const tokenIssuer = "ordering-backend"

// Claims is the token payload. TelegramID is zero for admin tokens.
type Claims struct {
	UserID     string `json:"user_id"`
	TelegramID int64  `json:"telegram_id,omitempty"`
	Role       string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token was issued via the admin login.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// isDevMode mirrors the config package's notion of development mode without
// importing it (the config package depends on auth validation at startup).
func isDevMode() bool {
	if v := os.Getenv("DEV_MODE"); v == "true" || v == "1" {
		return true
	}
	return os.Getenv("NODE_ENV") == "development" || os.Getenv("GIN_MODE") == "debug"
}

func generateRandomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read failing means the platform entropy source is broken;
		// a time-derived secret at least keeps local development working.
		return fmt.Sprintf("dev-fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

// ValidateJWTSecret resolves the signing secret once, at startup. Production
// refuses to run without ORD_JWT_SECRET; dev mode falls back to a random
// per-process secret, which means sessions die with the process.
func ValidateJWTSecret() error {
	jwtSecretOnce.Do(func() {
		secret := os.Getenv("ORD_JWT_SECRET")
		switch {
		case secret == "" && isDevMode():
			jwtSecret = generateRandomSecret()
			slog.Warn("ORD_JWT_SECRET not set, using auto-generated development secret; sessions will not survive restarts")
		case secret == "":
			jwtSecretErr = errors.New("ORD_JWT_SECRET environment variable is required in production. " +
				"Generate a secure secret with: openssl rand -hex 32")
		default:
			if len(secret) < 32 {
				slog.Warn("ORD_JWT_SECRET is shorter than the recommended 32 characters")
			}
			jwtSecret = secret
		}
	})
	return jwtSecretErr
}

// GetJWTSecret returns the resolved secret, validating lazily if startup
// never called ValidateJWTSecret. Panics when validation fails, since
// signing tokens with an empty secret would be worse.
func GetJWTSecret() string {
	if jwtSecret == "" {
		if err := ValidateJWTSecret(); err != nil {
			panic(err)
		}
	}
	return jwtSecret
}

// GenerateJWT signs a session token for an authenticated user. A zero
// expiresIn means the default 24 hour session.
func GenerateJWT(userID string, telegramID int64, role string, expiresIn time.Duration) (string, error) {
	if expiresIn == 0 {
		expiresIn = 24 * time.Hour
	}

	now := time.Now()
	claims := &Claims{
		UserID:     userID,
		TelegramID: telegramID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(GetJWTSecret()))
}

// GenerateAdminJWT creates an admin-scoped token for the panel session.
func GenerateAdminJWT(username string, expiresIn time.Duration) (string, error) {
	return GenerateJWT(username, 0, RoleAdmin, expiresIn)
}

// ValidateJWT parses tokenString, checks the signature and expiry, and
// returns the claims.
func ValidateJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(GetJWTSecret()), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

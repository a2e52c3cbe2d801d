package auth

import (
	"os"
	"sync"
	"testing"
	"time"
)

const testSecret = "test-jwt-secret-that-is-32-chars-!"

// resetJWTSecret clears the package-level sync.Once so each scenario can
// resolve a fresh secret. Test-only.
func resetJWTSecret() {
	jwtSecret = ""
	jwtSecretOnce = sync.Once{}
	jwtSecretErr = nil
}

func TestMain(m *testing.M) {
	os.Setenv("ORD_JWT_SECRET", testSecret)
	os.Exit(m.Run())
}

func TestValidateJWTSecret(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name: "secret from env",
			env:  map[string]string{"ORD_JWT_SECRET": "exactly-32-char-secret-for-test!!"},
		},
		{
			name: "production refuses to run without secret",
			env: map[string]string{
				"ORD_JWT_SECRET": "",
				"DEV_MODE":       "",
				"NODE_ENV":       "",
				"GIN_MODE":       "release",
			},
			wantErr: true,
		},
		{
			name: "dev mode generates a throwaway secret",
			env:  map[string]string{"ORD_JWT_SECRET": "", "DEV_MODE": "true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetJWTSecret()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := ValidateJWTSecret()
			if tt.wantErr {
				if err == nil {
					t.Fatal("ValidateJWTSecret() = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateJWTSecret() error: %v", err)
			}
			if GetJWTSecret() == "" {
				t.Error("GetJWTSecret() empty after successful validation")
			}
		})
	}
}

func TestJWTRoundTrip(t *testing.T) {
	resetJWTSecret()
	t.Setenv("ORD_JWT_SECRET", testSecret)

	token, err := GenerateJWT("user-123", 100200300, "buyer", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}

	if claims.UserID != "user-123" || claims.TelegramID != 100200300 || claims.Role != "buyer" {
		t.Errorf("claims = {%q %d %q}, want {user-123 100200300 buyer}",
			claims.UserID, claims.TelegramID, claims.Role)
	}
	if claims.Issuer != "ordering-backend" {
		t.Errorf("Issuer = %q, want ordering-backend", claims.Issuer)
	}
	if claims.Subject != "user-123" {
		t.Errorf("Subject = %q, want user-123", claims.Subject)
	}
	if claims.IsAdmin() {
		t.Error("buyer token must not satisfy IsAdmin")
	}
}

func TestAdminJWT(t *testing.T) {
	resetJWTSecret()
	t.Setenv("ORD_JWT_SECRET", testSecret)

	token, err := GenerateAdminJWT("admin", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminJWT: %v", err)
	}
	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	if !claims.IsAdmin() {
		t.Errorf("Role = %q, want %q", claims.Role, RoleAdmin)
	}
	if claims.TelegramID != 0 {
		t.Errorf("TelegramID = %d, want 0 for admin tokens", claims.TelegramID)
	}
}

func TestJWTDefaultExpiry(t *testing.T) {
	resetJWTSecret()
	t.Setenv("ORD_JWT_SECRET", testSecret)

	token, err := GenerateJWT("uid", 0, "", 0)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Errorf("zero expiresIn gives remaining = %v, want about 24h", remaining)
	}
}

func TestValidateJWT_Rejections(t *testing.T) {
	resetJWTSecret()
	t.Setenv("ORD_JWT_SECRET", testSecret)

	expired, err := GenerateJWT("uid", 0, "", -time.Second)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	for name, token := range map[string]string{
		"expired": expired,
		"garbage": "not.a.valid.token",
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ValidateJWT(token); err == nil {
				t.Errorf("ValidateJWT(%s token) = nil error, want rejection", name)
			}
		})
	}
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	resetJWTSecret()
	t.Setenv("ORD_JWT_SECRET", testSecret)

	token, err := GenerateJWT("uid", 0, "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	resetJWTSecret()
	t.Setenv("ORD_JWT_SECRET", "completely-different-secret-32ch!")
	if _, err := ValidateJWT(token); err == nil {
		t.Error("token signed under the old secret must not validate")
	}

	resetJWTSecret()
	t.Setenv("ORD_JWT_SECRET", testSecret)
}

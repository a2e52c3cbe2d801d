// admin.go checks the admin panel credential configured for the deployment:
// a single username plus a bcrypt password hash. Username comparison is
// constant-time so a probe cannot distinguish wrong-user from wrong-password.
package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned for any admin login failure. The cause is
// deliberately not distinguished.
var ErrBadCredentials = errors.New("invalid username or password")

// VerifyAdminCredentials checks the submitted credential pair against the
// configured username and bcrypt hash.
func VerifyAdminCredentials(username, password, wantUsername, passwordHash string) error {
	if wantUsername == "" || passwordHash == "" {
		return ErrBadCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(wantUsername)) == 1

	// Always run the bcrypt comparison so timing does not reveal whether the
	// username matched.
	passErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if !userOK || passErr != nil {
		return ErrBadCredentials
	}
	return nil
}

// HashPassword produces a bcrypt hash suitable for the admin credential
// config. Used by cmd/hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Package checksum hashes photo content for integrity checks. Uploads record
// a SHA-256 digest and the storage backends verify stored objects against it,
// so the hashing lives in one place instead of being rewired per backend.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// CalculateSHA256 streams reader through SHA-256 and returns the hex digest.
func CalculateSHA256(reader io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, reader); err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifySHA256 reports whether reader's content hashes to expectedChecksum.
func VerifySHA256(reader io.Reader, expectedChecksum string) (bool, error) {
	actual, err := CalculateSHA256(reader)
	if err != nil {
		return false, err
	}
	return actual == expectedChecksum, nil
}

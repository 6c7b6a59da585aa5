package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns the hex SHA-256 of s, used to fingerprint prompts without storing them.
func HashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

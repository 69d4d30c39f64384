package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken returns n random bytes hex encoded, used for password reset links.
func GenerateSecureToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

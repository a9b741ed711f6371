package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSessionSecret creates a random 32-byte secret for CSRF tokens.
func GenerateSessionSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecodeSecret turns a configured secret into key bytes. Base64 secrets
// (as produced by GenerateSessionSecret) are decoded; anything else is used
// verbatim.
func DecodeSecret(secret string) []byte {
	if b, err := base64.StdEncoding.DecodeString(secret); err == nil && len(b) >= 32 {
		return b[:32]
	}
	return []byte(secret)
}

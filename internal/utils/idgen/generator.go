// Package idgen generates opaque public identifiers for API resources.
package idgen

import (
	"crypto/rand"
	"fmt"
)

const charset = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID generates a cryptographically secure ID with the given
// prefix and length, e.g. "conv_8f3k...". Only lowercase alphanumerics are
// used so the IDs are safe in URLs and log lines.
func GenerateSecureID(prefix string, length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	encoded := make([]byte, length)
	for i := 0; i < length; i++ {
		encoded[i] = charset[int(bytes[i])%len(charset)]
	}

	return fmt.Sprintf("%s_%s", prefix, string(encoded)), nil
}

// GenerateConversationID returns a new public conversation identifier.
func GenerateConversationID() (string, error) {
	return GenerateSecureID("conv", 24)
}

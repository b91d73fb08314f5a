package common

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// GenerateAttemptID returns a unique ID for a login attempt
func GenerateAttemptID() string {
	return "login-" + uuid.NewString()[:8]
}

// GenerateState returns a random value for the OAuth state parameter
func GenerateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

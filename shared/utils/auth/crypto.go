package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GenerateRandomToken returns a hex token of the given byte length
// (invitation tokens, session identifiers)
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateSessionID returns a unique session identifier
func GenerateSessionID() (string, error) {
	return GenerateRandomToken(32)
}

// GenerateAPIKey returns a new API key in the form fcms_<prefix><secret>.
// The prefix is stored in clear for lookup; only the full key is hashed.
func GenerateAPIKey() (fullKey string, prefix string, err error) {
	prefix, err = GenerateRandomToken(4)
	if err != nil {
		return "", "", err
	}
	secret, err := GenerateRandomToken(24)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("fcms_%s%s", prefix, secret), prefix, nil
}

// HashPassword hashes a password or API key with bcrypt
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash against a plaintext candidate
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const verificationCodeBytes = 4

// GenerateVerificationCode returns a random code in the format XXXX-XXXX.
// Codes are upper-case hex so they survive being retyped from a chat.
func GenerateVerificationCode() (string, error) {
	bytes := make([]byte, verificationCodeBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encoded := strings.ToUpper(hex.EncodeToString(bytes))
	return fmt.Sprintf("%s-%s", encoded[0:4], encoded[4:8]), nil
}

// NormalizeVerificationCode trims whitespace and upper-cases a user-supplied code.
func NormalizeVerificationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

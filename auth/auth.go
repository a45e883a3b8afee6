// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
)

// ValidateAdminKey checks the provided key against the configured one in
// constant time. An empty configured key never validates.
func ValidateAdminKey(provided, configured string) error {
	if configured == "" || !hmac.Equal([]byte(provided), []byte(configured)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateSessionKey creates a random secure key for a browser session
func GenerateSessionKey() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session key: %w", err)
	}
	// URL-safe base64 without padding, valid as a cookie value
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits), enough to correlate log lines
	return hex.EncodeToString(sum[:8])
}

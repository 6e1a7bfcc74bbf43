// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingAccount      = errors.New("missing account id")
	ErrInvalidAccount      = errors.New("invalid account id")
	ErrInvalidModeratorKey = errors.New("invalid moderator key")
)

// AccountHeader carries the opaque authenticated account identifier.
// Identity is established by an upstream auth layer; this service trusts
// the header and never issues or verifies credentials itself.
const AccountHeader = "X-Account-ID"

// ModeratorHeader carries the HMAC key proving elevated role.
const ModeratorHeader = "X-Moderator-Key"

// AccountFromRequest extracts and validates the caller's account id.
func AccountFromRequest(r *http.Request) (string, error) {
	id := r.Header.Get(AccountHeader)
	if id == "" {
		return "", ErrMissingAccount
	}
	if len(id) > 64 {
		return "", ErrInvalidAccount
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c <= ' ' || c == 0x7f {
			return "", ErrInvalidAccount
		}
	}
	return id, nil
}

// GenerateModeratorKey creates an HMAC-based moderator key for an account
// This is deterministic and verifiable
func GenerateModeratorKey(accountID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(accountID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateModeratorKey checks if the provided key grants the account
// elevated role
func ValidateModeratorKey(accountID, key, salt string) error {
	expected := GenerateModeratorKey(accountID, salt)
	if !hmac.Equal([]byte(key), []byte(expected)) {
		return ErrInvalidModeratorKey
	}
	return nil
}

// IsModerator reports whether the request carries a valid moderator key
// for the given account. Absent or wrong keys simply mean "not elevated".
func IsModerator(r *http.Request, accountID, salt string) bool {
	key := r.Header.Get(ModeratorHeader)
	if key == "" {
		return false
	}
	return ValidateModeratorKey(accountID, key, salt) == nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}

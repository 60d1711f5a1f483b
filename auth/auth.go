// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// UserHeader carries the id of the calling user. The gateway in front of
// the service is trusted to set it.
const UserHeader = "X-User-ID"

var (
	ErrMissingUser = errors.New("missing " + UserHeader + " header")
)

// GenerateID creates a random UUIDv4 string for a database record
func GenerateID() string {
	return uuid.NewString()
}

// IsValidID reports whether id looks like an id produced by GenerateID
func IsValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// CallerID returns the trimmed X-User-ID header or ErrMissingUser
func CallerID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(UserHeader))
	if id == "" {
		return "", ErrMissingUser
	}
	return id, nil
}

// PairKey is the order-independent key of a connection between a and b
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

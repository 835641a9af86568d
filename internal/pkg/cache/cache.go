// Package cache defines the expiring key-value store used for short-lived
// state: OTP tickets, rate-limit windows, and similar session-scoped data.
// Production uses Redis; tests use the in-memory implementation.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is an expiring key-value store.
type Cache interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key. A positive ttl caps the entry's lifetime;
	// zero means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

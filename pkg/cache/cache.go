package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmptyKey is returned when an operation is called with an empty key.
	ErrEmptyKey = errors.New("cache key is empty")

	// ErrBackend wraps failures reported by the underlying storage.
	ErrBackend = errors.New("cache backend failure")
)

// Store is a string key-value cache with per-entry expiry.
type Store interface {
	// Get returns the value stored under key.
	// ok is false when the key is absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key for ttl. A non-positive ttl keeps the entry
	// until it is evicted or deleted.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Package tokenstore defines the short-lived key/value store that holds the
// live session per account and the one-time activation and reset entries.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for absent and expired keys.
	ErrNotFound = errors.New("tokenstore: not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("tokenstore: closed")
)

// Store is a string key/value store with a per-entry TTL. Drivers live under
// tokenstore/drivers.
type Store interface {
	// Put upserts value under key and resets its TTL. A ttl <= 0 stores the
	// entry without expiry.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// TakeOnce atomically reads and deletes key. Among any number of
	// concurrent callers for the same key at most one receives the value;
	// the rest get ErrNotFound.
	TakeOnce(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a live entry is stored under key.
	Exists(ctx context.Context, key string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

// Purger is implemented by drivers that do not expire entries on their own
// and need the housekeeping worker to sweep them.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is not found
var ErrNotFound = errors.New("not found")

// Store defines the interface for a Redis-like key-value store.
// It covers the subset of commands the cache layer relies on; the
// in-memory implementation backs deployments without Redis.
type Store interface {
	// String operations
	Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	SetString(ctx context.Context, key string, value string, ttl ...time.Duration) error
	GetString(ctx context.Context, key string) (string, error)

	// Key operations
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Counter operations
	IncrBy(ctx context.Context, key string, n int64) (int64, error)
	DecrBy(ctx context.Context, key string, n int64) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Cleanup
	Close() error
}

package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates that the requested key does not exist in the
// underlying storage.
var ErrNotFound = errors.New("storage: not found")

// Store exposes the persistence primitives required by the application. It is
// expected to be safe for concurrent use.
type Store interface {
	KV() KV
	Ping(ctx context.Context) error
	Close() error
}

// KV is a small key-value surface used for user-scoped records such as usage
// statistics and slideshow settings. Values are opaque bytes; callers own the
// encoding.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

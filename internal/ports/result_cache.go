package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Contract for caching serialized optimization results.
// Only deterministic (seeded) runs are cached.
type ResultCache interface {
	// Return the cached payload and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Store payload under key for ttl.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

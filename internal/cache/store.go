// Package cache holds the engine's passive caches: the shared key-value
// store abstraction with its Redis and in-memory implementations, the
// TTL-keyed external stat cache, the etag'd render snapshot cache, and the
// invalidation fan-out that keeps snapshots coherent with the ledger.
package cache

import (
	"context"
)

// Entry is one stored cache record: an opaque value, the etag of the data
// that produced it, and a small flat metadata map (visibility, owner).
type Entry struct {
	Value    string            `json:"value"`
	Etag     string            `json:"etag"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Store is the cache store collaborator boundary. Implementations are chosen
// at process start: Redis for networked deployments, the in-memory store as
// the explicit local/dev fallback.
//
// Get returns (nil, nil) on a miss.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
}

// Package cache stores rendered diagram artifacts (SVG, PNG, PDF, DOT) so
// repeated renders of an unchanged diagram skip graphviz and rsvg.
//
// Keys are derived from the exported diagram body and the render options
// with [ArtifactKey]; any edit to the diagram changes the key.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.ArtifactKey(body, cache.ArtifactOpts{Format: "svg", Layout: "dot"})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

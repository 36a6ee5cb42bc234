// Package cache stores built hierarchies and rendered documents.
//
// # Overview
//
// Loading records from MongoDB and building the hierarchy is the slow part
// of a render. The pipeline caches two kinds of entries:
//
//   - tree entries: the built hierarchy, keyed by a hash of the records
//   - artifact entries: a rendered document, keyed by the tree hash and the
//     render options (view, format, clicks)
//
// Keys come from a [Keyer]; [ScopedKeyer] prefixes them so several
// datasets can share one backend.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: a shared Redis instance, for the server
//   - [NullCache]: never stores anything
//
// [Instrument] wraps any backend and reports hits, misses and writes to
// the registered observability hooks.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/solutionmap/pkg/observability"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Instrument wraps c so every call reports to [observability.Cache].
func Instrument(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return &instrumented{inner: c}
}

type instrumented struct {
	inner Cache
}

// keyType returns the key's namespace, the part before the first colon,
// skipping a scope prefix.
func keyType(key string) string {
	for _, t := range []string{"tree:", "artifact:", "records:"} {
		if strings.Contains(key, t) {
			return strings.TrimSuffix(t, ":")
		}
	}
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.inner.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

func (c *instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *instrumented) Close() error { return c.inner.Close() }

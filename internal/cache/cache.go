// Package cache provides the caching layer for registry lookups and other
// repeated remote queries. The core engine never caches: it is a pure
// in-memory computation over the corpus index.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching raw response bytes.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a cache key from the parts of a query. Parts are joined and
// hashed so arbitrary query strings stay filesystem-safe.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return "trialgate:v1:" + hex.EncodeToString(hash[:])
}

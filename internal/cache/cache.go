// Package cache provides short-lived caching of upstream responses so that
// repeated evaluations of the same query do not hammer external sources.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from an upstream request URL
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "pharmascout:v1:" + hex.EncodeToString(hash[:])
}

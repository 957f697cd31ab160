// Package cache defines the cache port used for sync progress snapshots and
// short-lived OAuth state. A missing key is never an error, only "no cached
// value available".
package cache

import "time"

type Cache interface {
	// Get returns the cached value, or (nil, false) when the key is absent
	// or expired.
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
}

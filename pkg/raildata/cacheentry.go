package raildata

import "time"

// CacheEntry wraps a value with an absolute expiry instant. Entries are
// never invalidated early; staleness is bounded purely by TTL expiry.
type CacheEntry[T any] struct {
	Value     T
	ExpiresAt time.Time
}

// NewCacheEntry wraps value with a TTL measured from now.
func NewCacheEntry[T any](value T, ttl time.Duration) CacheEntry[T] {
	return CacheEntry[T]{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

func (e CacheEntry[T]) Expired() bool {
	return time.Now().After(e.ExpiresAt)
}

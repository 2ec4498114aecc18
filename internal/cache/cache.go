// Package cache holds the byte-level stores behind the query cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bilgisen/khobor/internal/config"
)

// Store is a key/value store with expiry and prefix invalidation.
type Store interface {
	// Get returns the value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// New builds the store selected by CACHE_BACKEND.
func New(cfg *config.Config) (Store, error) {
	switch cfg.CacheBackend {
	case "redis":
		return NewRedisStore(cfg.RedisURL, cfg.RedisPrefix)
	case "memory", "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// StartExpiry runs the expiry sweeper of stores that need one until ctx is
// done. Redis expires keys itself.
func StartExpiry(ctx context.Context, store Store, interval time.Duration) {
	m, ok := store.(*MemoryStore)
	if !ok {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	go m.Run(ctx, interval)
}

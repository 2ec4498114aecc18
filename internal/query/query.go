// Package query is the request-deduplicating, cache-aware fetch layer that
// sits between page handlers and the backend API client. A Client is created
// once per process and handed to every reader; mutations call Invalidate.
package query

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/bilgisen/khobor/internal/cache"
	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/metrics"
)

// Key identifies a cached query. Parts are joined with ":" so that a shorter
// key is a prefix of every key extending it.
type Key []string

func (k Key) String() string {
	return strings.Join(k, ":")
}

// With returns a new key extended by parts.
func (k Key) With(parts ...string) Key {
	out := make(Key, 0, len(k)+len(parts))
	out = append(out, k...)
	return append(out, parts...)
}

// Client caches query results in a Store and collapses concurrent fetches of
// the same key into a single call.
type Client struct {
	store cache.Store
	ttl   time.Duration
	group singleflight.Group
	gen   atomic.Uint64
	log   zerolog.Logger
}

func NewClient(store cache.Store, ttl time.Duration) *Client {
	return &Client{
		store: store,
		ttl:   ttl,
		log:   logger.Component("query"),
	}
}

// Fetch returns the cached value for key or runs fn to produce it. Errors are
// never cached. All callers waiting on the same key share one fn call.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	k := key.String()
	// Callers arriving after an Invalidate must not join a fetch started
	// before it, so the flight is keyed by generation too.
	gen := c.gen.Load()

	raw, ok, err := c.store.Get(ctx, k)
	if err != nil {
		c.log.Warn().Err(err).Str("key", k).Msg("cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.QueryCacheTotal.WithLabelValues("hit").Inc()
			return v, nil
		}
		c.log.Warn().Str("key", k).Msg("dropping undecodable cache entry")
	}

	v, err, shared := c.group.Do(k+"#"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		// The shared call outlives any single caller's cancellation.
		fctx := context.WithoutCancel(ctx)

		val, err := fn(fctx)
		if err != nil {
			return nil, err
		}
		if gen != c.gen.Load() {
			// Invalidated while fetching: hand the result to the waiters but
			// do not store it.
			return val, nil
		}
		if raw, err := json.Marshal(val); err == nil {
			if err := c.store.Set(fctx, k, raw, c.ttl); err != nil {
				c.log.Warn().Err(err).Str("key", k).Msg("cache write failed")
			}
		}
		return val, nil
	})
	if shared {
		metrics.QueryCacheTotal.WithLabelValues("shared").Inc()
	} else {
		metrics.QueryCacheTotal.WithLabelValues("miss").Inc()
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every cached entry under prefix so the next read
// refetches from the backend.
func (c *Client) Invalidate(ctx context.Context, prefix Key) error {
	c.gen.Add(1)
	p := prefix.String()
	metrics.QueryInvalidationsTotal.WithLabelValues(p).Inc()
	if err := c.store.DeletePrefix(ctx, p); err != nil {
		return err
	}
	c.log.Debug().Str("prefix", p).Msg("query cache invalidated")
	return nil
}

package feed

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/metrics"
)

// Registry holds the lists opened by rendered pages so the browser can keep
// extending them by id. Lists idle for longer than the TTL are dropped.
type Registry struct {
	src Source
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger

	mu    sync.Mutex
	lists map[string]*List
}

func NewRegistry(src Source, ttl time.Duration) *Registry {
	return &Registry{
		src:   src,
		ttl:   ttl,
		now:   time.Now,
		log:   logger.Component("feed"),
		lists: make(map[string]*List),
	}
}

// Open starts a new list for filter and returns its id.
func (r *Registry) Open(filter Filter) (string, *List) {
	id := uuid.NewString()
	l := NewList(r.src, filter)
	l.now = r.now
	l.lastUsed = r.now()

	r.mu.Lock()
	r.lists[id] = l
	n := len(r.lists)
	r.mu.Unlock()

	metrics.FeedListsActive.Set(float64(n))
	return id, l
}

// Get returns the list with the given id.
func (r *Registry) Get(id string) (*List, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lists[id]
	return l, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.lists, id)
	n := len(r.lists)
	r.mu.Unlock()
	metrics.FeedListsActive.Set(float64(n))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lists)
}

// Sweep evicts idle lists and returns how many were removed. A list with a
// fetch in flight is never idle.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	removed := 0
	for id, l := range r.lists {
		if l.idleSince(now) >= r.ttl {
			delete(r.lists, id)
			removed++
		}
	}
	n := len(r.lists)
	r.mu.Unlock()

	metrics.FeedListsActive.Set(float64(n))
	if removed > 0 {
		r.log.Debug().Int("evicted", removed).Int("active", n).Msg("evicted idle lists")
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

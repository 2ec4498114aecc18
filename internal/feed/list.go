// Package feed turns the page-numbered GET /news endpoint into lazily
// growing article lists. A List is advanced one page at a time by
// LoadMore, the continuation trigger fired when the reader scrolls the
// list's sentinel into view.
package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/metrics"
	"github.com/bilgisen/khobor/internal/models"
)

// DefaultLimit is the page size used when a Filter does not set one.
const DefaultLimit = 10

var (
	// ErrInFlight is returned when a page fetch for the list is already running.
	ErrInFlight = errors.New("feed: fetch already in flight")
	// ErrExhausted is returned once the list has no further pages.
	ErrExhausted = errors.New("feed: list exhausted")
	// ErrStale is returned to a fetch whose list was reset while it ran. Its
	// result is discarded.
	ErrStale = errors.New("feed: list reset during fetch")
)

// Source returns one page of news. *services.Service satisfies it.
type Source interface {
	News(ctx context.Context, params models.ListParams) (*models.NewsList, error)
}

// Filter is the identity of a list. Any change to it starts a new list.
type Filter struct {
	Category string
	AuthorID string
	Sort     string
	Search   string
	Featured *bool
	Limit    int
}

// PageSize returns the effective page size.
func (f Filter) PageSize() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// Params returns the request parameters of the given page.
func (f Filter) Params(page int) models.ListParams {
	return models.ListParams{
		Page:     page,
		Limit:    f.PageSize(),
		Category: f.Category,
		AuthorID: f.AuthorID,
		Sort:     f.Sort,
		Featured: f.Featured,
		Search:   f.Search,
	}
}

// Key is the canonical form of the filter. Equal filters have equal keys.
func (f Filter) Key() string {
	return apiclient.EncodeListParams(f.Params(0)).Encode()
}

type State int

const (
	StateIdle State = iota
	StateHasPages
	StateFetching
	StateExhausted
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHasPages:
		return "has-pages"
	case StateFetching:
		return "fetching"
	case StateExhausted:
		return "exhausted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent copy of a list's state.
type Snapshot struct {
	Filter Filter
	Items  []models.News
	Pages  int
	State  State
	Err    error
}

// HasMore reports whether another LoadMore may append items.
func (s Snapshot) HasMore() bool {
	return s.State != StateExhausted
}

// List accumulates the pages of one Filter in fetch order. Items are
// de-duplicated by article id across pages. It is safe for concurrent use and
// keeps at most one fetch in flight.
type List struct {
	src Source

	mu       sync.Mutex
	filter   Filter
	epoch    uint64
	pages    int
	fetched  int // items received, duplicates included
	total    *int64
	items    []models.News
	seen     map[string]struct{}
	state    State
	err      error
	inFlight bool
	lastUsed time.Time
	now      func() time.Time
}

func NewList(src Source, filter Filter) *List {
	return &List{
		src:      src,
		filter:   filter,
		seen:     make(map[string]struct{}),
		lastUsed: time.Now(),
		now:      time.Now,
	}
}

// LoadMore fetches the next page and returns the items it added. A failed
// fetch leaves the cursor in place so the next call retries the same page.
func (l *List) LoadMore(ctx context.Context) ([]models.News, error) {
	l.mu.Lock()
	l.lastUsed = l.now()
	if l.inFlight {
		l.mu.Unlock()
		metrics.FeedPagesTotal.WithLabelValues("in_flight").Inc()
		return nil, ErrInFlight
	}
	if l.state == StateExhausted {
		l.mu.Unlock()
		metrics.FeedPagesTotal.WithLabelValues("exhausted").Inc()
		return nil, ErrExhausted
	}
	l.inFlight = true
	l.state = StateFetching
	epoch := l.epoch
	limit := l.filter.PageSize()
	params := l.filter.Params(l.pages + 1)
	l.mu.Unlock()

	page, err := l.src.News(ctx, params)

	l.mu.Lock()
	defer l.mu.Unlock()

	if epoch != l.epoch {
		metrics.FeedPagesTotal.WithLabelValues("stale").Inc()
		return nil, ErrStale
	}
	l.inFlight = false

	if err != nil {
		l.state = StateError
		l.err = err
		metrics.FeedPagesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.FeedPagesTotal.WithLabelValues("ok").Inc()

	var got []models.News
	if page != nil {
		got = page.NewsList
		if page.Total != nil {
			total := *page.Total
			l.total = &total
		}
	}

	l.err = nil
	l.pages++
	l.fetched += len(got)

	added := make([]models.News, 0, len(got))
	for _, n := range got {
		if _, dup := l.seen[n.ID]; dup {
			continue
		}
		l.seen[n.ID] = struct{}{}
		added = append(added, n)
	}
	l.items = append(l.items, added...)

	switch {
	case len(got) < limit:
		l.state = StateExhausted
	case l.total != nil && int64(l.fetched) >= *l.total:
		l.state = StateExhausted
	default:
		l.state = StateHasPages
	}
	return added, nil
}

// Reset discards every page and restarts the list at page 1 under filter.
// A fetch still running for the old filter completes with ErrStale.
func (l *List) Reset(filter Filter) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.epoch++
	l.filter = filter
	l.pages = 0
	l.fetched = 0
	l.total = nil
	l.items = nil
	l.seen = make(map[string]struct{})
	l.state = StateIdle
	l.err = nil
	l.inFlight = false
	l.lastUsed = l.now()
}

func (l *List) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Snapshot{
		Filter: l.filter,
		Items:  append([]models.News(nil), l.items...),
		Pages:  l.pages,
		State:  l.state,
		Err:    l.err,
	}
}

func (l *List) Filter() Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

func (l *List) idleSince(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight {
		return 0
	}
	return now.Sub(l.lastUsed)
}

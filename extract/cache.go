package extract

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/excerpt"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long an extracted record stays valid.
const DefaultTTL = 5 * time.Minute

// CacheState is the lifecycle phase of a Cache.
type CacheState int

// Cache states.
const (
	StateEmpty CacheState = iota
	StateLoading
	StatePopulated
)

func (s CacheState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StatePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

type entry struct {
	record    *excerpt.ContentRecord
	identity  string
	createdAt time.Time
}

// Cache holds the most recently extracted record, keyed by document
// location, and coalesces concurrent extractions of the same document.
//
// A Cache has a single slot: storing a record for one location evicts the
// record of any other. Cache is safe for concurrent use.
type Cache struct {
	extractor excerpt.Extractor
	ttl       time.Duration
	now       func() time.Time

	mu         sync.Mutex
	state      CacheState
	current    *entry
	inflight   int
	generation uint64

	group singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL sets how long a record stays valid. Defaults to DefaultTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock sets the time source used for expiry.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a Cache that fills itself from extractor.
func NewCache(extractor excerpt.Extractor, opts ...CacheOption) *Cache {
	c := &Cache{
		extractor: extractor,
		ttl:       DefaultTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrExtract returns the cached record for doc if it is still valid and
// otherwise extracts it.
//
// Callers asking for the same location while an extraction is in flight
// share its result. The shared extraction is not canceled when a caller's
// context ends; that caller just stops waiting. A failed extraction leaves
// the previously cached record in place.
func (c *Cache) GetOrExtract(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error) {
	if doc == nil {
		return nil, excerpt.Errorf(excerpt.EINVALID, "document required")
	}
	identity := doc.Location()

	if record, ok := c.lookup(identity); ok {
		return record, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(identity, func() (any, error) {
		return c.load(detached, doc)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*excerpt.ContentRecord), nil
	}
}

// Current returns the cached record regardless of its age, or nil.
func (c *Cache) Current() *excerpt.ContentRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	return c.current.record
}

// State returns the cache's current lifecycle phase.
func (c *Cache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Clear evicts the cached record regardless of its age. Extractions in
// flight still answer their callers but are not stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.generation++
	c.transition()
}

func (c *Cache) lookup(identity string) (*excerpt.ContentRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid(identity) {
		return nil, false
	}
	return c.current.record, true
}

// load runs one extraction and stores its result. It is only called from
// within the singleflight group.
func (c *Cache) load(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error) {
	identity := doc.Location()

	c.mu.Lock()
	// A flight for this identity may have finished between lookup and DoChan.
	if c.valid(identity) {
		record := c.current.record
		c.mu.Unlock()
		return record, nil
	}
	c.inflight++
	generation := c.generation
	c.transition()
	c.mu.Unlock()

	record, err := c.extractor.Extract(ctx, doc)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err == nil && generation == c.generation {
		c.current = &entry{record: record, identity: identity, createdAt: c.now()}
	}
	c.transition()
	return record, err
}

// valid reports whether the slot holds a fresh record for identity.
// Must be called with mu held.
func (c *Cache) valid(identity string) bool {
	return c.current != nil &&
		c.current.identity == identity &&
		c.now().Sub(c.current.createdAt) <= c.ttl
}

// transition derives the phase from the slot and in-flight count.
// Must be called with mu held.
func (c *Cache) transition() {
	switch {
	case c.inflight > 0:
		c.state = StateLoading
	case c.current != nil:
		c.state = StatePopulated
	default:
		c.state = StateEmpty
	}
}

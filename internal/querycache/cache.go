// Package querycache is a request-deduplicating, staleness-aware cache for
// backend reads. Page handlers bind their reads to it through Binding values
// created inside a per-request Scope.
package querycache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/fleet-console/fleet-console/internal/metrics"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSize = 512

	// DefaultFetchTimeout bounds a shared network read once it no longer
	// follows the context of the caller that started it.
	DefaultFetchTimeout = time.Minute
)

// FetchFunc performs the network call behind a key.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	kind        string
	data        any
	updatedAt   time.Time
	invalidated bool
}

// Client owns the cache entries. It is safe for concurrent use.
type Client struct {
	staleTime    time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	mu      sync.Mutex
	entries *lru.Cache[string, *entry]
	group   singleflight.Group

	// Generations only grow. A read started under an older generation of its
	// key is never joined by later reads and its result is not stored.
	kindGen map[string]uint64
	keyGen  map[string]uint64
}

// NewClient creates a cache holding at most size entries. Entries younger than
// staleTime are served without a network call; a zero staleTime makes every
// read go to the network (concurrent reads of one key still share a call).
func NewClient(size int, staleTime time.Duration) (*Client, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if staleTime < 0 {
		return nil, errors.New("stale time must not be negative")
	}
	entries, err := lru.New[string, *entry](size)
	if err != nil {
		return nil, err
	}
	return &Client{
		staleTime:    staleTime,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
		entries:      entries,
		kindGen:      map[string]uint64{},
		keyGen:       map[string]uint64{},
	}, nil
}

// SetFetchTimeout changes the bound on shared network reads. Non-positive
// values restore DefaultFetchTimeout.
func (c *Client) SetFetchTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultFetchTimeout
	}
	c.mu.Lock()
	c.fetchTimeout = d
	c.mu.Unlock()
}

// Fetch returns fresh cached data for key, or calls fn. fromCache reports
// whether the data was served without a network call.
func (c *Client) Fetch(ctx context.Context, key Key, fn FetchFunc) (data any, fromCache bool, err error) {
	if data, ok := c.fresh(key); ok {
		metrics.QueryCacheLookupsTotal.WithLabelValues(key.Kind, "hit").Inc()
		return data, true, nil
	}
	data, err = c.load(ctx, key, fn)
	return data, false, err
}

// Refetch calls fn regardless of freshness and stores the result. It never
// joins a read that started before it.
func (c *Client) Refetch(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	addr := key.String()
	c.mu.Lock()
	c.keyGen[addr]++
	c.mu.Unlock()
	return c.load(ctx, key, fn)
}

// Peek returns the cached data for key without checking freshness.
func (c *Client) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Peek(key.String())
	if !ok {
		return nil, false
	}
	return e.data, true
}

// Invalidate marks every entry of kind as stale so the next read refetches it.
// Reads of kind already in flight are not stored. It returns the number of
// entries marked.
func (c *Client) Invalidate(kind string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kindGen[kind]++
	n := 0
	for _, k := range c.entries.Keys() {
		e, ok := c.entries.Peek(k)
		if !ok || e.kind != kind {
			continue
		}
		e.invalidated = true
		n++
	}
	return n
}

// Len returns the number of cached entries.
func (c *Client) Len() int {
	return c.entries.Len()
}

func (c *Client) fresh(key Key) (any, bool) {
	if c.staleTime <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Get(key.String())
	if !ok || e.invalidated {
		return nil, false
	}
	if c.now().Sub(e.updatedAt) >= c.staleTime {
		return nil, false
	}
	return e.data, true
}

// generation must be called with c.mu held.
func (c *Client) generation(addr, kind string) uint64 {
	return c.kindGen[kind] + c.keyGen[addr]
}

// load runs fn once per key and generation. The shared read is detached from
// the cancellation of whichever caller started it; each caller stops waiting
// when its own ctx is done.
func (c *Client) load(ctx context.Context, key Key, fn FetchFunc) (any, error) {
	if fn == nil {
		return nil, errors.New("querycache: fetch function is required")
	}
	addr := key.String()
	c.mu.Lock()
	gen := c.generation(addr, key.Kind)
	timeout := c.fetchTimeout
	c.mu.Unlock()

	flightCtx := context.WithoutCancel(ctx)
	flight := c.group.DoChan(addr+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(flightCtx, timeout)
		defer cancel()
		data, err := fn(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.store(addr, key.Kind, gen, data)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		result := "miss"
		if res.Shared {
			result = "shared"
		}
		metrics.QueryCacheLookupsTotal.WithLabelValues(key.Kind, result).Inc()
		return res.Val, res.Err
	}
}

// store keeps data only when no Invalidate or Refetch of the key happened
// since the read started.
func (c *Client) store(addr, kind string, gen uint64, data any) {
	c.mu.Lock()
	if c.generation(addr, kind) != gen {
		c.mu.Unlock()
		return
	}
	c.entries.Add(addr, &entry{kind: kind, data: data, updatedAt: c.now()})
	n := c.entries.Len()
	c.mu.Unlock()
	metrics.QueryCacheEntries.Set(float64(n))
}

package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// Bucket groups query results that are invalidated together
type Bucket string

const (
	BucketProducts   Bucket = "products"
	BucketProduct    Bucket = "product"
	BucketCategories Bucket = "categories"
	BucketSettings   Bucket = "settings"
)

// Key identifies one logical query
type Key struct {
	Bucket Bucket
	ID     string
}

func (k Key) String() string {
	if k.ID == "" {
		return string(k.Bucket)
	}
	return string(k.Bucket) + "/" + k.ID
}

// Fetcher loads the value of a query from the backend
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
	// invalidated entries are known to be outdated and are refetched on read
	invalidated bool
	// generation of the fetch that stored value
	gen uint64
}

type activeQuery struct {
	fetch Fetcher
	refs  int
}

// Options configures a QueryCache
type Options struct {
	// StaleTime is how long a result is served without revalidation.
	// Zero keeps results fresh until invalidated.
	StaleTime time.Duration
	Logger    hclog.Logger
	// Registerer receives the cache metrics. Nil skips registration.
	Registerer prometheus.Registerer
}

// QueryCache is a stale-while-revalidate cache of query results
type QueryCache struct {
	entries map[Key]*entry
	active  map[Key]*activeQuery
	// generation of the last invalidation per bucket and per key. Fetches
	// started at or before it may hold pre-invalidation data.
	bucketFloor map[Bucket]uint64
	keyFloor    map[Key]uint64
	mutex     sync.Mutex
	group     singleflight.Group
	gen       atomic.Uint64
	staleTime time.Duration
	now       func() time.Time
	log       hclog.Logger
	metrics   *metrics
	wg        sync.WaitGroup
}

func New(opts Options) *QueryCache {
	log := opts.Logger
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &QueryCache{
		entries:     make(map[Key]*entry),
		active:      make(map[Key]*activeQuery),
		bucketFloor: make(map[Bucket]uint64),
		keyFloor:    make(map[Key]uint64),
		staleTime: opts.StaleTime,
		now:       time.Now,
		log:       log,
		metrics:   newMetrics(opts.Registerer),
	}
}

// Read returns the cached value of key. A value older than StaleTime is
// returned as is while a background fetch refreshes it. A missing or
// invalidated value is fetched synchronously. Failed fetches are not cached.
func (c *QueryCache) Read(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.mutex.Lock()
	e, ok := c.entries[key]
	var (
		value       any
		stale       bool
		invalidated bool
	)
	if ok {
		value, stale, invalidated = e.value, c.isStale(e), e.invalidated
	}
	c.mutex.Unlock()

	if ok && !stale {
		c.metrics.lookup(key.Bucket, "hit")
		return value, nil
	}
	if ok && !invalidated {
		c.metrics.lookup(key.Bucket, "stale")
		c.revalidate(key, fetch)
		return value, nil
	}

	c.metrics.lookup(key.Bucket, "miss")
	return c.fetchShared(ctx, key, fetch)
}

// ReadFresh always fetches. When a fetch started later has already stored a
// result, that newer result is returned instead of this one.
func (c *QueryCache) ReadFresh(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.metrics.lookup(key.Bucket, "fresh")

	gen := c.gen.Add(1)
	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	return c.store(key, value, gen), nil
}

// Peek returns the cached value without fetching
func (c *QueryCache) Peek(key Key) (any, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// IsStale reports whether key has no value or needs revalidation
func (c *QueryCache) IsStale(key Key) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entries[key]
	return !ok || c.isStale(e)
}

// Invalidate marks every entry of bucket outdated and refetches the active ones
func (c *QueryCache) Invalidate(bucket Bucket) {
	c.invalidate(func(k Key) bool { return k.Bucket == bucket }, func(gen uint64) {
		c.bucketFloor[bucket] = gen
	})
	c.metrics.invalidations.WithLabelValues(string(bucket)).Inc()
}

// InvalidateKey marks one entry outdated and refetches it if active
func (c *QueryCache) InvalidateKey(key Key) {
	c.invalidate(func(k Key) bool { return k == key }, func(gen uint64) {
		c.keyFloor[key] = gen
	})
	c.metrics.invalidations.WithLabelValues(string(key.Bucket)).Inc()
}

// invalidate marks the matching entries and raises the floor through
// setFloor, so results of fetches still in flight are stored as invalidated
// even when the key had no entry yet
func (c *QueryCache) invalidate(match func(Key) bool, setFloor func(gen uint64)) {
	c.mutex.Lock()
	setFloor(c.gen.Add(1))
	for k, e := range c.entries {
		if match(k) {
			e.invalidated = true
		}
	}
	refetch := map[Key]Fetcher{}
	for k, q := range c.active {
		if match(k) {
			refetch[k] = q.fetch
		}
	}
	c.mutex.Unlock()

	for k, fetch := range refetch {
		c.log.Debug("Refetching active query", "key", k.String())
		c.revalidate(k, fetch)
	}
}

// Activate marks key as observed so invalidations refetch it right away.
// The returned func releases the observation.
func (c *QueryCache) Activate(key Key, fetch Fetcher) (release func()) {
	c.mutex.Lock()
	q, ok := c.active[key]
	if !ok {
		q = &activeQuery{fetch: fetch}
		c.active[key] = q
	}
	q.refs++
	c.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mutex.Lock()
			defer c.mutex.Unlock()
			if q.refs--; q.refs <= 0 {
				delete(c.active, key)
			}
		})
	}
}

// Clear drops every entry. Active observations are kept.
func (c *QueryCache) Clear() {
	c.mutex.Lock()
	c.entries = make(map[Key]*entry)
	c.mutex.Unlock()
}

// Wait blocks until background revalidations have finished
func (c *QueryCache) Wait() {
	c.wg.Wait()
}

func (c *QueryCache) isStale(e *entry) bool {
	if e.invalidated {
		return true
	}
	return c.staleTime > 0 && c.now().Sub(e.fetchedAt) > c.staleTime
}

func (c *QueryCache) revalidate(key Key, fetch Fetcher) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.fetchShared(context.Background(), key, fetch); err != nil {
			c.log.Warn("Unable to revalidate query", "key", key.String(), "error", err)
		}
	}()
}

// floor returns the generation of the last invalidation covering key.
// c.mutex must be held.
func (c *QueryCache) floor(key Key) uint64 {
	return max(c.bucketFloor[key.Bucket], c.keyFloor[key])
}

// fetchShared collapses concurrent fetches of the same key into one. Reads
// arriving after an invalidation never join a fetch started before it.
func (c *QueryCache) fetchShared(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.mutex.Lock()
	flight := key.String() + "@" + strconv.FormatUint(c.floor(key), 10)
	c.mutex.Unlock()

	v, err, _ := c.group.Do(flight, func() (any, error) {
		gen := c.gen.Add(1)
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return c.store(key, value, gen), nil
	})
	return v, err
}

// store saves value fetched by generation gen and returns the value now held
// for key
func (c *QueryCache) store(key Key, value any, gen uint64) any {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entries[key]
	if ok && e.gen > gen {
		return e.value
	}

	c.entries[key] = &entry{
		value:       value,
		fetchedAt:   c.now(),
		gen:         gen,
		invalidated: gen <= c.floor(key),
	}
	return value
}

// Load is Read with a typed fetcher
func Load[T any](ctx context.Context, c *QueryCache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.Read(ctx, key, func(ctx context.Context) (any, error) { return fetch(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// LoadFresh is ReadFresh with a typed fetcher
func LoadFresh[T any](ctx context.Context, c *QueryCache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.ReadFresh(ctx, key, func(ctx context.Context) (any, error) { return fetch(ctx) })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

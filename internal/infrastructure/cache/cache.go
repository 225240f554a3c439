// Package cache holds server data fetched by the admin panel, keyed by
// resource kind and id, and tells subscribed views when an entry changes.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/erp/adminpanel/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrClosed is stored in entries read after Close
var ErrClosed = errors.New("cache: closed")

const instrumentationName = "github.com/erp/adminpanel/internal/infrastructure/cache"

// QueryCache is a process-wide store of fetched resource data.
// At most one loader runs per key; a response from a fetch that has been
// superseded by a newer one for the same key is discarded.
type QueryCache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	version uint64
	nextSub uint64
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger  *zap.Logger
	meter   metric.Meter
	now     func() time.Time
	hits    *telemetry.Counter
	misses  *telemetry.Counter
	fetches *telemetry.Counter
}

type entry struct {
	status     Status
	value      any
	err        error
	updatedAt  time.Time
	stale      bool
	version    uint64
	generation uint64
	done       chan struct{}
	subs       map[uint64]*subscriber
}

// subscriber delivers snapshots one at a time. A snapshot arriving while a
// callback runs replaces any undelivered one and is handed over by the
// goroutine already delivering, so callbacks may re-enter the cache.
type subscriber struct {
	mu         sync.Mutex
	fn         func(Entry)
	last       uint64
	pending    Entry
	hasPending bool
	delivering bool
	closed     bool
}

// Option is a functional option for configuring the cache
type Option func(*QueryCache)

// WithLogger sets the logger for the cache
func WithLogger(logger *zap.Logger) Option {
	return func(c *QueryCache) {
		c.logger = logger
	}
}

// WithMeter sets the meter for hit, miss and fetch counters
func WithMeter(meter metric.Meter) Option {
	return func(c *QueryCache) {
		c.meter = meter
	}
}

// WithClock sets the time source used for UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(c *QueryCache) {
		c.now = now
	}
}

// NewQueryCache creates an empty cache. Call Close when done with it.
func NewQueryCache(opts ...Option) (*QueryCache, error) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &QueryCache{
		entries: make(map[Key]*entry),
		ctx:     ctx,
		cancel:  cancel,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.meter == nil {
		c.meter = otel.Meter(instrumentationName)
	}

	var err error
	if c.hits, err = telemetry.NewCounter(c.meter, "adminpanel.cache.hits", "Reads served from a fresh or loading entry", "{read}"); err != nil {
		cancel()
		return nil, err
	}
	if c.misses, err = telemetry.NewCounter(c.meter, "adminpanel.cache.misses", "Reads that started a fetch", "{read}"); err != nil {
		cancel()
		return nil, err
	}
	if c.fetches, err = telemetry.NewCounter(c.meter, "adminpanel.cache.fetches", "Settled fetches by outcome", "{fetch}"); err != nil {
		cancel()
		return nil, err
	}
	return c, nil
}

// Read returns the entry for key. If the entry is missing, idle or stale it
// moves to loading and loader starts on its own goroutine; the returned
// snapshot then shows StatusLoading and later changes arrive through Subscribe.
// Reads of a fresh entry, including one that is already loading, never start
// another loader.
func (c *QueryCache) Read(key Key, loader Loader) Entry {
	snap, _ := c.read(key, loader)
	return snap
}

// read is Read that also returns the done channel of the fetch in flight,
// or nil when the entry is settled.
func (c *QueryCache) read(key Key, loader Loader) (Entry, <-chan struct{}) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Entry{Key: key, Status: StatusError, Err: ErrClosed}, nil
	}

	e := c.lookup(key)
	if e.status != StatusIdle && !e.stale {
		snap := e.snapshot(key)
		done := e.done
		c.mu.Unlock()
		c.hits.Inc(context.Background(), attribute.String("kind", string(key.Kind)))
		c.logger.Debug("Cache hit", zap.Stringer("key", key), zap.Stringer("status", snap.Status))
		if snap.Status != StatusLoading {
			done = nil
		}
		return snap, done
	}

	e.generation++
	gen := e.generation
	done := make(chan struct{})
	e.done = done
	e.status = StatusLoading
	e.stale = false
	c.bump(e)
	snap := e.snapshot(key)
	subs := e.subscribers()
	c.wg.Add(1)
	c.mu.Unlock()

	c.misses.Inc(context.Background(), attribute.String("kind", string(key.Kind)))
	c.logger.Debug("Cache miss, fetching", zap.Stringer("key", key), zap.Uint64("generation", gen))

	ready := make(chan struct{})
	go c.load(key, gen, done, ready, loader)
	notify(subs, snap)
	close(ready)
	return snap, done
}

// load runs loader once ready is closed, which happens after the loading
// snapshot has been delivered. The loader counts as finished for Close before
// subscribers are told the outcome, so a callback may close the cache.
func (c *QueryCache) load(key Key, gen uint64, done chan struct{}, ready <-chan struct{}, loader Loader) {
	settle := func() {
		close(done)
		c.wg.Done()
	}

	select {
	case <-ready:
	case <-c.ctx.Done():
		select {
		case <-ready:
		default:
			c.logger.Debug("Cache closed before fetch started", zap.Stringer("key", key), zap.Uint64("generation", gen))
			settle()
			return
		}
	}

	value, err := loader(c.ctx)

	c.mu.Lock()
	e, ok := c.entries[key]
	if c.closed || !ok || e.generation != gen {
		c.mu.Unlock()
		c.fetches.Inc(context.Background(), attribute.String("kind", string(key.Kind)), attribute.String("outcome", "discarded"))
		c.logger.Debug("Discarding superseded response", zap.Stringer("key", key), zap.Uint64("generation", gen))
		settle()
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
		e.status = StatusError
		e.err = err
	} else {
		e.status = StatusSuccess
		e.value = value
		e.err = nil
	}
	e.updatedAt = c.now()
	c.bump(e)
	snap := e.snapshot(key)
	subs := e.subscribers()
	c.mu.Unlock()

	c.fetches.Inc(context.Background(), attribute.String("kind", string(key.Kind)), attribute.String("outcome", outcome))
	if err != nil {
		c.logger.Debug("Fetch failed", zap.Stringer("key", key), zap.Error(err))
	} else {
		c.logger.Debug("Fetch succeeded", zap.Stringer("key", key))
	}
	settle()
	notify(subs, snap)
}

// Invalidate marks every entry whose key matches as stale and returns how
// many were marked. Nothing is refetched until the next Read of each key.
// An entry invalidated while loading keeps its fetch; the result is stored
// but stays stale.
func (c *QueryCache) Invalidate(match Predicate) int {
	type pending struct {
		subs []*subscriber
		snap Entry
	}

	c.mu.Lock()
	var notes []pending
	for key, e := range c.entries {
		if e.stale || e.status == StatusIdle || !match(key) {
			continue
		}
		e.stale = true
		c.bump(e)
		notes = append(notes, pending{subs: e.subscribers(), snap: e.snapshot(key)})
	}
	c.mu.Unlock()

	for _, n := range notes {
		notify(n.subs, n.snap)
	}
	if len(notes) > 0 {
		c.logger.Debug("Invalidated cache entries", zap.Int("count", len(notes)))
	}
	return len(notes)
}

// Subscribe registers fn for changes to key and returns a function that
// removes it. Each subscriber sees snapshots in version order; an older
// snapshot arriving after a newer one is dropped. fn runs on whichever
// goroutine caused the change, never concurrently with itself, and may call
// any QueryCache method including Close. Once the returned function has
// returned, no new call of fn starts.
func (c *QueryCache) Subscribe(key Key, fn func(Entry)) (unsubscribe func()) {
	sub := &subscriber{fn: fn}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return func() {}
	}
	e := c.lookup(key)
	c.nextSub++
	id := c.nextSub
	e.subs[id] = sub
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if e, ok := c.entries[key]; ok {
				delete(e.subs, id)
			}
			c.mu.Unlock()

			sub.mu.Lock()
			sub.closed = true
			sub.mu.Unlock()
		})
	}
}

// Peek returns the current snapshot for key without fetching
func (c *QueryCache) Peek(key Key) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Entry{Key: key}, false
	}
	return e.snapshot(key), true
}

// Len returns the number of entries, including idle ones held by subscribers
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close cancels the context handed to loaders, drops all subscribers and
// waits for running loaders to return. Their results are discarded.
func (c *QueryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	var subs []*subscriber
	for _, e := range c.entries {
		subs = append(subs, e.subscribers()...)
		e.subs = make(map[uint64]*subscriber)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		sub.closed = true
		sub.mu.Unlock()
	}

	c.cancel()
	c.wg.Wait()
	c.logger.Debug("Query cache closed")
	return nil
}

// lookup returns the entry for key, creating an idle one. Caller holds c.mu.
func (c *QueryCache) lookup(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{subs: make(map[uint64]*subscriber)}
		c.entries[key] = e
	}
	return e
}

// bump stamps e with a new version. Caller holds c.mu.
func (c *QueryCache) bump(e *entry) {
	c.version++
	e.version = c.version
}

func (e *entry) snapshot(key Key) Entry {
	return Entry{
		Key:       key,
		Status:    e.status,
		Value:     e.value,
		Err:       e.err,
		UpdatedAt: e.updatedAt,
		Stale:     e.stale,
		Version:   e.version,
	}
}

func (e *entry) subscribers() []*subscriber {
	subs := make([]*subscriber, 0, len(e.subs))
	for _, s := range e.subs {
		subs = append(subs, s)
	}
	return subs
}

func notify(subs []*subscriber, snap Entry) {
	for _, s := range subs {
		s.deliver(snap)
	}
}

func (s *subscriber) deliver(snap Entry) {
	s.mu.Lock()
	if s.closed || snap.Version <= s.last {
		s.mu.Unlock()
		return
	}
	s.last = snap.Version
	s.pending = snap
	s.hasPending = true
	if s.delivering {
		s.mu.Unlock()
		return
	}

	s.delivering = true
	for s.hasPending && !s.closed {
		next := s.pending
		s.pending = Entry{}
		s.hasPending = false
		s.mu.Unlock()
		s.fn(next)
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

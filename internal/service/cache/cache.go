// Package cache is the in-memory store behind calculation sessions, substance lookups,
// resolved grants and idempotent replays.
//
// A Store is split into shards, each an LRU list guarded by its own mutex. Entries expire
// after the configured TTL; with Sliding set every hit pushes the expiry out again.
package cache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guttosm/compliance-track/internal/metrics"
)

const (
	defaultShards = 16
	defaultSweep  = time.Minute
)

// Options sizes a Store. Capacity is shared evenly between shards and every shard holds
// at least one entry. A zero TTL keeps entries until they are evicted.
type Options struct {
	Name     string
	Capacity int
	TTL      time.Duration
	Sliding  bool
	Shards   int
	Sweep    time.Duration
	Clock    func() time.Time
}

// Stats counts lookups since the store was created or last cleared.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	Capacity  int
}

// Store is a sharded LRU map with expiry.
type Store[V any] struct {
	name    string
	ttl     time.Duration
	sliding bool
	now     func() time.Time
	shards  []*shard[V]
	mask    uint32

	stop     chan struct{}
	stopOnce sync.Once

	hits, misses, evictions atomic.Int64
}

type shard[V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

type entry[V any] struct {
	key     string
	value   V
	expires time.Time
}

// New creates a store and starts its sweeper. Call Stop to release it.
func New[V any](opts Options) *Store[V] {
	if opts.Shards <= 0 {
		opts.Shards = defaultShards
	}
	n := 1
	for n < opts.Shards {
		n <<= 1
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Sweep <= 0 {
		opts.Sweep = defaultSweep
	}

	s := &Store[V]{
		name:    opts.Name,
		ttl:     opts.TTL,
		sliding: opts.Sliding,
		now:     opts.Clock,
		shards:  make([]*shard[V], n),
		mask:    uint32(n - 1),
		stop:    make(chan struct{}),
	}
	perShard := max(opts.Capacity/n, 1)
	for i := range s.shards {
		s.shards[i] = &shard[V]{capacity: perShard, order: list.New(), items: make(map[string]*list.Element)}
	}
	if s.ttl > 0 {
		go s.sweep(opts.Sweep)
	}
	return s
}

func (s *Store[V]) shardFor(key string) *shard[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()&s.mask]
}

func (s *Store[V]) expiry(now time.Time) time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(s.ttl)
}

// Get returns the value stored under key. Expired entries are dropped and count as misses.
func (s *Store[V]) Get(key string) (V, bool) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	el, ok := sh.items[key]
	if ok {
		e := el.Value.(*entry[V])
		if !e.expires.IsZero() && !now.Before(e.expires) {
			sh.drop(el)
			sh.mu.Unlock()
			s.misses.Add(1)
			metrics.RecordCacheOperation(s.name, "get", "expired")
			var zero V
			return zero, false
		}
		sh.order.MoveToFront(el)
		if s.sliding {
			e.expires = s.expiry(now)
		}
		value := e.value
		sh.mu.Unlock()
		s.hits.Add(1)
		metrics.RecordCacheOperation(s.name, "get", "hit")
		return value, true
	}
	sh.mu.Unlock()

	s.misses.Add(1)
	metrics.RecordCacheOperation(s.name, "get", "miss")
	var zero V
	return zero, false
}

// Set stores value under key, evicting the shard's least recently used entry when full.
func (s *Store[V]) Set(key string, value V) {
	sh := s.shardFor(key)
	expires := s.expiry(s.now())

	sh.mu.Lock()
	if el, ok := sh.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value, e.expires = value, expires
		sh.order.MoveToFront(el)
		sh.mu.Unlock()
		return
	}
	sh.items[key] = sh.order.PushFront(&entry[V]{key: key, value: value, expires: expires})
	evicted := len(sh.items) > sh.capacity
	if evicted {
		sh.drop(sh.order.Back())
	}
	sh.mu.Unlock()

	if evicted {
		s.evictions.Add(1)
		metrics.RecordCacheOperation(s.name, "evict", "capacity")
	}
	metrics.RecordCacheOperation(s.name, "set", "success")
	metrics.UpdateCacheMetrics(s.name, s.Len(), s.capacity())
}

// Invalidate removes key.
func (s *Store[V]) Invalidate(key string) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	el, ok := sh.items[key]
	if ok {
		sh.drop(el)
	}
	sh.mu.Unlock()
	if ok {
		metrics.RecordCacheOperation(s.name, "invalidate", "success")
	}
}

// Clear removes every entry and resets the counters.
func (s *Store[V]) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.order.Init()
		clear(sh.items)
		sh.mu.Unlock()
	}
	s.hits.Store(0)
	s.misses.Store(0)
	s.evictions.Store(0)
	metrics.RecordCacheOperation(s.name, "clear", "success")
}

// Len returns the number of held entries, including expired ones not swept yet.
func (s *Store[V]) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.items)
		sh.mu.Unlock()
	}
	return n
}

// Stats returns the counters and the current fill.
func (s *Store[V]) Stats() Stats {
	return Stats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
		Size:      s.Len(),
		Capacity:  s.capacity(),
	}
}

// Stop ends the sweeper. The store stays usable. Calling Stop twice is fine.
func (s *Store[V]) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store[V]) capacity() int {
	return s.shards[0].capacity * len(s.shards)
}

func (s *Store[V]) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.purge()
		case <-s.stop:
			return
		}
	}
}

// purge drops expired entries from every shard.
func (s *Store[V]) purge() int {
	now := s.now()
	dropped := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for el := sh.order.Back(); el != nil; {
			prev := el.Prev()
			if e := el.Value.(*entry[V]); !e.expires.IsZero() && !now.Before(e.expires) {
				sh.drop(el)
				dropped++
			}
			el = prev
		}
		sh.mu.Unlock()
	}
	if dropped > 0 {
		metrics.UpdateCacheMetrics(s.name, s.Len(), s.capacity())
	}
	return dropped
}

func (sh *shard[V]) drop(el *list.Element) {
	delete(sh.items, el.Value.(*entry[V]).key)
	sh.order.Remove(el)
}

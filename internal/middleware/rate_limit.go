package middleware

import (
	"hash/maphash"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/compliance-track/internal/i18n"
)

const limiterShards = 16

type window struct {
	start time.Time
	used  int
}

type limiterShard struct {
	mu      sync.Mutex
	windows map[string]*window
}

// Limiter admits at most limit requests per key in each fixed window.
type Limiter struct {
	limit  int
	period time.Duration
	seed   maphash.Seed
	shards [limiterShards]limiterShard
	clock  func() time.Time
	done   chan struct{}
	once   sync.Once
}

// NewLimiter creates a limiter and starts a sweeper that drops idle keys. Call Stop to end it.
func NewLimiter(limit int, period time.Duration) *Limiter {
	l := &Limiter{
		limit:  limit,
		period: period,
		seed:   maphash.MakeSeed(),
		clock:  time.Now,
		done:   make(chan struct{}),
	}
	for i := range l.shards {
		l.shards[i].windows = make(map[string]*window)
	}
	go l.sweepEvery(max(period, time.Second))
	return l
}

// Allow counts one request for key. It returns the requests left in the window and the
// time until the window resets.
func (l *Limiter) Allow(key string) (ok bool, left int, reset time.Duration) {
	shard := &l.shards[maphash.String(l.seed, key)%limiterShards]
	now := l.clock()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	w := shard.windows[key]
	if w == nil || now.Sub(w.start) >= l.period {
		w = &window{start: now}
		shard.windows[key] = w
	}
	reset = w.start.Add(l.period).Sub(now)
	if w.used >= l.limit {
		return false, 0, reset
	}
	w.used++
	return true, l.limit - w.used, reset
}

// PerClient limits by client IP.
func (l *Limiter) PerClient() gin.HandlerFunc {
	return l.middleware(func(c *gin.Context) string { return "ip:" + c.ClientIP() })
}

// PerCaller limits by authenticated user and falls back to the client IP.
func (l *Limiter) PerCaller() gin.HandlerFunc {
	return l.middleware(func(c *gin.Context) string {
		if identity, ok := IdentityFromContext(c); ok && identity.UserID != "" {
			return "user:" + identity.UserID
		}
		return "ip:" + c.ClientIP()
	})
}

func (l *Limiter) middleware(keyOf func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, left, reset := l.Allow(keyOf(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(left))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(reset.Seconds()))))
			abort(c, http.StatusTooManyRequests, i18n.ErrKeyRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// Keys returns the number of tracked keys.
func (l *Limiter) Keys() int {
	n := 0
	for i := range l.shards {
		l.shards[i].mu.Lock()
		n += len(l.shards[i].windows)
		l.shards[i].mu.Unlock()
	}
	return n
}

// Stop ends the sweeper. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.done) })
}

func (l *Limiter) sweepEvery(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

// sweep drops keys whose window ended.
func (l *Limiter) sweep() {
	now := l.clock()
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		for key, w := range s.windows {
			if now.Sub(w.start) >= l.period {
				delete(s.windows, key)
			}
		}
		s.mu.Unlock()
	}
}

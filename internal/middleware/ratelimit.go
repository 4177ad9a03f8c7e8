package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterTTL          = 10 * time.Minute
	limiterCleanupEvery = 5000
	rateLimitedMessage  = "Too many requests. Please slow down."
)

// KeyFunc selects the identity a request is limited under.
type KeyFunc func(*gin.Context) string

// KeyByUserOrIP keys signed-in users by their id and everyone else by client
// IP. userID returns "" for anonymous requests.
func KeyByUserOrIP(userID func(*gin.Context) string) KeyFunc {
	return func(c *gin.Context) string {
		if userID != nil {
			if id := userID(c); id != "" {
				return "user:" + id
			}
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a process-local token bucket per key. Idle buckets are
// evicted opportunistically during lookups. Safe for concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    KeyFunc
	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
	now      func() time.Time
}

// NewRateLimiter allows rps requests per second with bursts of burst per key.
// A burst <= 0 is treated as 1 and a nil keyFn keys by client IP.
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyFn == nil {
		keyFn = KeyByUserOrIP(nil)
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Sweep before the lookup so an idle bucket is not refreshed by it.
	rl.lookups++
	if rl.lookups >= limiterCleanupEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= limiterTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Len reports how many buckets are live.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Handler rejects requests over the limit with 429 and Retry-After.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiter(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		rateLimited.Inc()
		c.Header("Retry-After", "1")
		abortWith(c, http.StatusTooManyRequests, rateLimitedMessage)
	}
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per authenticated user
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows perMinute events per user with the given burst
func NewRateLimiter(perMinute float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perMinute / 60),
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > time.Minute {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Middleware rejects with 429 once the caller's bucket is empty. Requests
// without an authenticated user are keyed by client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := GetUserID(c)
		if !ok {
			key = "ip:" + c.ClientIP()
		}

		now := rl.now()
		r := rl.get(key).ReserveN(now, 1)
		if !r.OK() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many submissions, try again later"})
			return
		}
		if delay := r.DelayFrom(now); delay > 0 {
			r.CancelAt(now)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many submissions, try again later"})
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"foodgram/internal/metrics"
	"foodgram/internal/transport/http/response"
)

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	lastGC   time.Time
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter allows perMinute requests per minute per IP, with bursts up
// to the same amount. perMinute <= 0 disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		burst:    perMinute,
		lastGC:   time.Now(),
	}
	if perMinute > 0 {
		rl.rate = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return rl
}

func (rl *RateLimiter) Allow(key string) bool {
	if rl.burst <= 0 {
		return true
	}

	now := time.Now()
	rl.mu.Lock()
	if now.Sub(rl.lastGC) > 10*time.Minute {
		for k, e := range rl.limiters {
			if now.Sub(e.lastAccess) > time.Hour {
				delete(rl.limiters, k)
			}
		}
		rl.lastGC = now
	}
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			metrics.RateLimited.WithLabelValues(c.FullPath()).Inc()
			response.Detail(c, http.StatusTooManyRequests, "Request was throttled.")
			return
		}
		c.Next()
	}
}

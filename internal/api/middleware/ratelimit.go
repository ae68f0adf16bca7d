package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window in-memory limiter keyed by client IP.
// Best effort: state is per process and resets on restart.
type RateLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	limit    int
	counts   map[string]int
	windowAt time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerHour per client IP
func NewRateLimiter(requestsPerHour int) *RateLimiter {
	return &RateLimiter{
		window:   time.Hour,
		limit:    requestsPerHour,
		counts:   make(map[string]int),
		windowAt: time.Now(),
	}
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.windowAt) >= l.window {
		l.counts = make(map[string]int)
		l.windowAt = time.Now()
	}

	l.counts[key]++
	return l.counts[key] <= l.limit
}

// RateLimit returns a middleware enforcing the limiter per client IP
func RateLimit(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}

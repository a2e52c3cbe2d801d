// ratelimit.go implements per-client token-bucket rate limiting for the API,
// answering 429 once a client exhausts its bucket.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate a client may hold.
	RequestsPerMinute int
	// BurstSize caps how many requests can land at once.
	BurstSize int
	// CleanupInterval is how often idle client buckets are dropped.
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig covers general authenticated API traffic. The burst
// absorbs catalog pages that fan out into several requests.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 200,
		BurstSize:         50,
		CleanupInterval:   5 * time.Minute,
	}
}

// AuthRateLimitConfig throttles login endpoints.
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 10,
		BurstSize:         5,
		CleanupInterval:   5 * time.Minute,
	}
}

// UploadRateLimitConfig throttles photo uploads and CSV imports.
func UploadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
		BurstSize:         5,
		CleanupInterval:   5 * time.Minute,
	}
}

// bucket is one client's token state.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter is an in-memory token-bucket limiter keyed by user or IP.
type RateLimiter struct {
	config  RateLimitConfig
	buckets map[string]*bucket
	mu      sync.RWMutex
	stopCh  chan struct{}
}

// NewRateLimiter builds a limiter and starts its idle-bucket janitor.
// Call Stop on shutdown.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
		stopCh:  make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// Stop terminates the janitor goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// refill returns b's token count after crediting time elapsed since lastSeen,
// capped at the burst size. Caller holds at least a read lock.
func (rl *RateLimiter) refill(b *bucket, now time.Time) float64 {
	perSecond := float64(rl.config.RequestsPerMinute) / 60.0
	return min(float64(rl.config.BurstSize), b.tokens+now.Sub(b.lastSeen).Seconds()*perSecond)
}

// Allow reports whether a request under key may proceed, spending one token.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok {
		// First contact: full burst minus this request.
		rl.buckets[key] = &bucket{
			tokens:   float64(rl.config.BurstSize) - 1,
			lastSeen: now,
		}
		return true
	}

	b.tokens = rl.refill(b, now)
	b.lastSeen = now
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// RemainingTokens reports the whole tokens currently available under key.
func (rl *RateLimiter) RemainingTokens(key string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, ok := rl.buckets[key]
	if !ok {
		return rl.config.BurstSize
	}
	return int(rl.refill(b, time.Now()))
}

// RateLimitMiddleware enforces limiter on every request passing through it.
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)

		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.RemainingTokens(key)))
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": 60,
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.RemainingTokens(key)))
		c.Next()
	}
}

// clientKey buckets authenticated requests per user so an office NAT doesn't
// collapse a whole organization into one limit; anonymous traffic is per IP.
func clientKey(c *gin.Context) string {
	if userID, exists := c.Get(ContextUserID); exists {
		if id, ok := userID.(string); ok && id != "" {
			return "user:" + id
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = c.Request.RemoteAddr
	}
	return "ip:" + ip
}

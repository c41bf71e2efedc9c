package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"noticeboard-http-service/internal/error/response"
)

// TokenBucket refills at rate tokens per second up to capacity.
type TokenBucket struct {
	rate       float64
	capacity   int
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   capacity,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow takes one token if available.
func (tb *TokenBucket) Allow() bool {
	return tb.allowAt(time.Now())
}

func (tb *TokenBucket) allowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed > 0 {
		tb.lastRefill = now
		tb.tokens += elapsed * tb.rate
		if tb.tokens > float64(tb.capacity) {
			tb.tokens = float64(tb.capacity)
		}
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

func (tb *TokenBucket) idleSince(now time.Time) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return now.Sub(tb.lastRefill)
}

// RateLimiterConfig configures RateLimiter.
type RateLimiterConfig struct {
	Rate       float64                   // requests per second
	Burst      int                       // bucket capacity
	ExpiryTime time.Duration             // idle buckets older than this are dropped by Cleanup
	KeyFunc    func(*gin.Context) string // defaults to the client IP
}

var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:       1,
	Burst:      5,
	ExpiryTime: time.Hour,
}

// Limiter keeps one token bucket per key.
type Limiter struct {
	cfg     RateLimiterConfig
	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

func NewLimiter(cfg RateLimiterConfig) *Limiter {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.ExpiryTime <= 0 {
		cfg.ExpiryTime = DefaultRateLimiterConfig.ExpiryTime
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	return &Limiter{cfg: cfg, buckets: make(map[string]*TokenBucket)}
}

func (l *Limiter) bucket(key string) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	tb, exists := l.buckets[key]
	if !exists {
		tb = NewTokenBucket(l.cfg.Rate, l.cfg.Burst)
		l.buckets[key] = tb
	}
	return tb
}

// Cleanup drops buckets idle for longer than ExpiryTime.
func (l *Limiter) Cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, tb := range l.buckets {
		if tb.idleSince(now) > l.cfg.ExpiryTime {
			delete(l.buckets, key)
		}
	}
}

// RunCleanup calls Cleanup every ExpiryTime until ctx is cancelled.
func (l *Limiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.ExpiryTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.Cleanup(now)
		}
	}
}

// Middleware answers 429 once the caller's bucket is empty.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.bucket(l.cfg.KeyFunc(c)).Allow() {
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPRateLimiter limits each client IP.
func IPRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return NewLimiter(RateLimiterConfig{Rate: rate, Burst: burst}).Middleware()
}

// PathRateLimiter limits each client IP per route.
func PathRateLimiter(rate float64, burst int) gin.HandlerFunc {
	return NewLimiter(RateLimiterConfig{
		Rate:  rate,
		Burst: burst,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP() + ":" + c.FullPath()
		},
	}).Middleware()
}

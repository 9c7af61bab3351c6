package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// KeyFunc picks the identity a request is counted against
type KeyFunc func(c *gin.Context) string

// ByUser counts per authenticated user, falling back to the client IP
func ByUser(c *gin.Context) string {
	if id, ok := UserID(c); ok {
		return "user:" + id.String()
	}
	return ByIP(c)
}

// ByIP counts per client IP
func ByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// RateLimiter enforces a fixed window per key. Counters live in redis when a
// client is configured; otherwise each process keeps token buckets.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	local     map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		logger: logger,
		now:    time.Now,
		local:  make(map[string]*localBucket),
	}
}

// Middleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) Middleware(keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Limit <= 0 {
			c.Next()
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), keyFn(c))
		if err != nil {
			// fail open
			rl.logger.Warn("rate limit check failed", zap.String("prefix", rl.config.KeyPrefix), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(math.Ceil(resetTime.Sub(rl.now()).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("rate limit of %d requests per %v exceeded", rl.config.Limit, rl.config.Window),
				"code":        "RATE_LIMITED",
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request for key.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	if rl.redis == nil {
		return rl.allowLocal(key)
	}

	now := rl.now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

func (rl *RateLimiter) allowLocal(key string) (bool, int, time.Time, error) {
	now := rl.now()

	rl.mu.Lock()
	rl.sweepLocal(now)
	b, ok := rl.local[key]
	if !ok {
		every := rl.config.Window / time.Duration(rl.config.Limit)
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(every), rl.config.Limit)}
		rl.local[key] = b
	}
	b.lastSeen = now
	lim := b.limiter
	rl.mu.Unlock()

	allowed := lim.AllowN(now, 1)
	remaining := int(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	// time until one token is back
	reset := now.Add(rl.config.Window / time.Duration(rl.config.Limit))
	return allowed, remaining, reset, nil
}

// sweepLocal drops buckets idle for a whole window, at most once per window.
// A bucket idle that long has refilled, so a fresh one behaves the same.
// Callers hold rl.mu.
func (rl *RateLimiter) sweepLocal(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.config.Window {
		return
	}
	for key, b := range rl.local {
		if now.Sub(b.lastSeen) >= rl.config.Window {
			delete(rl.local, key)
		}
	}
	rl.lastSweep = now
}

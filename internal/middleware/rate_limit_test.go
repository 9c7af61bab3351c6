package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", rl.Middleware(ByIP), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func post(r http.Handler, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 2, KeyPrefix: "rate_limit:auth"}, zap.NewNop())
	fixed := time.Date(2025, 3, 3, 12, 0, 30, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	r := limitedRouter(rl)

	first := post(r, "10.0.0.1")
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)

	blocked := post(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Contains(t, blocked.Body.String(), `"code":"RATE_LIMITED"`)
	assert.Contains(t, blocked.Body.String(), `"retry_after"`)
	assert.Equal(t, "30", blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.2").Code, "other clients are counted separately")

	keys := mr.Keys()
	require.NotEmpty(t, keys)
	assert.Contains(t, keys[0], "rate_limit:auth:ip:")
}

func TestRateLimiter_RedisErrorFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	rl := NewRateLimiter(client, RateLimitConfig{Window: time.Minute, Limit: 1, KeyPrefix: "rl"}, zap.NewNop())
	r := limitedRouter(rl)

	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
}

func TestRateLimiter_Local(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Window: time.Hour, Limit: 3, KeyPrefix: "rl"}, zap.NewNop())
	r := limitedRouter(rl)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.9").Code)
}

func TestRateLimiter_LocalEvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Window: time.Minute, Limit: 2, KeyPrefix: "rl"}, zap.NewNop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	r := limitedRouter(rl)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.Equal(t, http.StatusNoContent, post(r, ip).Code)
	}
	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "10.0.0.1").Code)

	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.2").Code)

	now = now.Add(45 * time.Second)
	assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.4").Code)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Len(t, rl.local, 2, "only buckets seen within the window remain")
	assert.Contains(t, rl.local, "ip:10.0.0.2")
	assert.Contains(t, rl.local, "ip:10.0.0.4")
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimitConfig{Window: time.Minute, Limit: 0}, nil)
	r := limitedRouter(rl)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, post(r, "10.0.0.1").Code)
	}
}

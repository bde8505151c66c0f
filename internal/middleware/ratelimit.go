package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"habitlink/internal/logger"
	"habitlink/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to url and pings it. It returns nil when url is
// empty or the server is unreachable, and the limiter then counts in memory.
func NewRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, using in-memory rate limits", "error", err)
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, using in-memory rate limits", "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("Redis connected")
	return client
}

type window struct {
	start time.Time
	count int
}

// RateLimiter is a fixed-window counter keyed by resource and caller.
type RateLimiter struct {
	rdb *redis.Client

	mu    sync.Mutex
	local map[string]*window
	now   func() time.Time
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb, local: make(map[string]*window), now: time.Now}
}

// Allow counts one hit and reports whether it is within limit. Redis errors
// fail open and are returned for logging.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, win time.Duration) (bool, error) {
	key := fmt.Sprintf("rl:%s:%s", resource, id)
	if l.rdb == nil {
		return l.allowLocal(key, limit, win), nil
	}

	cnt, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if cnt == 1 {
		l.rdb.Expire(ctx, key, win)
	}
	return cnt <= int64(limit), nil
}

func (l *RateLimiter) allowLocal(key string, limit int, win time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.local[key]
	if !ok || now.Sub(w.start) >= win {
		l.local[key] = &window{start: now, count: 1}
		return limit >= 1
	}
	w.count++
	return w.count <= limit
}

// RateLimit limits each logged in user (or IP for visitors) to limit
// requests per window on the routes it guards.
func (l *RateLimiter) RateLimit(resource string, limit int, win time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := "ip:" + c.ClientIP()
		if uid := CurrentUserID(c); uid != 0 {
			id = fmt.Sprintf("user:%d", uid)
		}

		allowed, err := l.Allow(c.Request.Context(), resource, id, limit, win)
		if err != nil {
			logger.Warn("Rate limiter error, allowing request", "resource", resource, "error", err)
		}
		if !allowed {
			metrics.RateLimited.WithLabelValues(resource).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests, please slow down",
			})
			return
		}
		c.Next()
	}
}

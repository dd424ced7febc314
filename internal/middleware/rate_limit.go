package middleware

import (
	"net/http"
	"sync"
	"time"

	"cardioalert/internal/config"
	"cardioalert/pkg/logger"
	"cardioalert/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		idleTTL:  10 * time.Minute,
	}
}

func (l *RateLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Cleanup drops buckets idle for longer than the idle TTL
func (l *RateLimiter) Cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, key)
		}
	}
}

// Middleware answers 429 once a client IP exhausts its bucket
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.get(ip, time.Now()).Allow() {
			logger.Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			c.Header("Retry-After", "1")
			utils.ErrorResponse(c, http.StatusTooManyRequests, "Too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/guttosm/twpulse/internal/logger"
)

// RequestLogger is a Gin middleware that logs method, path, status code,
// request latency, and request ID (if available).
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
//
// Example log output:
//
//	{"component":"http","request_id":"123e4567-...","method":"GET","path":"/api/v1/snapshot","status":200,"latency_ms":3}
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		rid, _ := c.Get(RequestIDKey)
		status := c.Writer.Status()
		ev := logger.L().Info()
		if status >= http.StatusInternalServerError {
			ev = logger.L().Warn()
		}
		ev.Str("component", "http").
			Str("request_id", toString(rid)).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Per-IP token buckets. In-memory only; the API serves one process.
var (
	clients         = make(map[string]*client)
	every           = time.Second // one token per interval
	burst           = 60
	idleTTL         = 10 * time.Minute
	rateLimiterLock sync.Mutex
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limits requests per client IP with a token bucket that
// refills one token per `every` up to `burst`. Exceeding it returns
// 429 Too Many Requests.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		rateLimiterLock.Lock()
		cl, ok := clients[ip]
		if !ok {
			cl = &client{limiter: rate.NewLimiter(rate.Every(every), burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		for k, v := range clients {
			if now.Sub(v.lastSeen) > idleTTL {
				delete(clients, k)
			}
		}
		allowed := cl.limiter.AllowN(now, 1)
		rateLimiterLock.Unlock()

		if !allowed {
			AbortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}

		c.Next()
	}
}

package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"cinetrack/internal/service"
)

const bucketIdleTTL = 30 * time.Minute

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipRateLimiter reparte un token bucket por IP de cliente.
type ipRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*ipBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// newIPRateLimiter permite max solicitudes por window, con ráfaga de max.
func newIPRateLimiter(max int, window time.Duration) *ipRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &ipRateLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		now:     time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) > time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.seen) > bucketIdleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

// GlobalRateLimit aplica el token bucket por IP a todas las rutas.
func GlobalRateLimit(max int, window time.Duration) gin.HandlerFunc {
	limiter := newIPRateLimiter(max, window)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !limiter.allow(ip) {
			c.String(http.StatusTooManyRequests, msgTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRateLimit limita register, login y recuperación de contraseña por IP.
func AuthRateLimit(limiter service.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil && !limiter.Allow(c.Request.Context(), c.ClientIP()) {
			c.String(http.StatusTooManyRequests, msgTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript cuenta el intento y abre la ventana (en ms) con el primero.
const fixedWindowScript = `
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return hits
`

const redisLimiterTimeout = 500 * time.Millisecond

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// redisRateLimiter comparte una ventana fija por IP entre todas las instancias.
type redisRateLimiter struct {
	client   redisEvaler
	prefix   string
	windowMS int64
	max      int64
}

// NewRedisRateLimiter devuelve nil sin cliente; ante errores de Redis deja pasar.
func NewRedisRateLimiter(client *redis.Client, prefix string, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	return newRedisRateLimiter(client, prefix, window, max)
}

func newRedisRateLimiter(client redisEvaler, prefix string, window time.Duration, max int) *redisRateLimiter {
	if window < time.Millisecond {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	if prefix == "" {
		prefix = "rl:"
	}
	return &redisRateLimiter{
		client:   client,
		prefix:   prefix,
		windowMS: window.Milliseconds(),
		max:      int64(max),
	}
}

func (l *redisRateLimiter) Allow(ctx context.Context, ip string) bool {
	if l == nil || l.client == nil {
		return true
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, redisLimiterTimeout)
	defer cancel()

	hits, err := l.client.Eval(ctx, fixedWindowScript, []string{l.prefix + ip}, l.windowMS).Int64()
	if err != nil {
		return true
	}
	return hits <= l.max
}

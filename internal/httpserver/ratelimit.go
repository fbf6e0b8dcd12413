package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects the shared rate-limit backend. Returns nil when
// REDIS_ADDR is unset or the server is unreachable; callers degrade to a
// pass-through limiter.
func NewRedisClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

local elapsed = math.max(0, now_ms - last_refill)
local intervals = math.floor(elapsed / interval_ms)
if intervals > 0 then
    tokens = math.min(capacity, tokens + (intervals * capacity))
    last_refill = last_refill + (intervals * interval_ms)
end

local allowed = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
end

redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return allowed
`)

// LoginRateLimit guards the credential endpoints with a per-IP token bucket
// in Redis. A nil client or a Redis failure lets the request through; rate
// limiting is protection, not a dependency.
func LoginRateLimit(rdb *redis.Client, capacity, windowMS int, lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rdb == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := "ratelimit:login:" + ip
			now := strconv.FormatInt(time.Now().UnixMilli(), 10)
			ttl := (windowMS/1000)*2 + 1
			res, err := tokenBucketScript.Run(r.Context(), rdb, []string{key},
				now, capacity, windowMS, ttl).Int()
			if err != nil {
				lg.Warnw("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if res != 1 {
				w.Header().Set("Retry-After", strconv.Itoa(windowMS/1000))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

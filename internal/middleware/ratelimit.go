package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/telvora/customer-portal/internal/config"
)

// NewTokenBucket returns a distributed token-bucket rate limiter backed
// by Redis, applied to the credential endpoints to slow down password and
// refresh-token guessing. The bucket state lives in a Redis hash and the
// refill plus check-and-decrement run inside a Lua script, so the
// decision is atomic across service instances. When rate limiting is
// disabled or Redis is unavailable the middleware is a transparent
// pass-through: availability of login is worth more than the limiter.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	script := redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local refill_tokens = tonumber(ARGV[3])
        local interval_ms = tonumber(ARGV[4])
        local ttl_seconds = tonumber(ARGV[5])

        local bucket = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
        local tokens = tonumber(bucket[1])
        local last_refill = tonumber(bucket[2])
        if tokens == nil or last_refill == nil then
            tokens = capacity
            last_refill = now_ms
        end

        local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end

        local allowed = 0
        local retry_after_ms = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        else
            retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
        end

        redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
        redis.call('EXPIRE', key, ttl_seconds)
        return { allowed, tokens, retry_after_ms }
    `)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			vals, err := script.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				// Redis down mid-flight: fail open, same as at startup.
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: script failed for key=%s: %v", key, err)
				}
				return next(c)
			}
			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				return next(c)
			}
			allowed := asInt64(arr[0]) == 1
			remaining := asInt64(arr[1])
			retryMs := asInt64(arr[2])

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

// rateKey buckets callers by client IP. The credential endpoints are
// anonymous, so the IP is the only stable caller identity; "ip_route"
// additionally separates the buckets per endpoint so a register burst
// cannot starve login.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	if strings.ToLower(cfg.KeyStrategy) == "ip" {
		return cfg.Prefix + ":ip:" + ip
	}
	return cfg.Prefix + ":ip:" + ip + ":route:" + c.Request().Method + " " + c.Path()
}

// asInt64 normalizes the Lua script's reply values, which go-redis may
// deliver as int64 or string depending on the server reply type.
func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

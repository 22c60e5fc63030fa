package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"taskboard/internal/common"

	"github.com/redis/go-redis/v9"
)

// Sliding-window limit over a Redis sorted set. Expired attempts roll off,
// current attempts are counted, and the attempt is recorded only when still
// under the limit. The counter key keeps member values unique.
var loginWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current = redis.call('ZCARD', key)
	if current < limit then
		local counter = redis.call('INCR', key .. ':counter')
		redis.call('ZADD', key, now, now .. ':' .. counter)
		redis.call('PEXPIRE', key, window_ms)
		redis.call('PEXPIRE', key .. ':counter', window_ms)
		return 1
	end
	return 0
`)

// LoginRateLimiter bounds credential-guessing on the token endpoint with a
// per-client-IP sliding window. A nil client disables limiting; a Redis
// failure fails open so an outage never locks out logins.
func LoginRateLimiter(client *redis.Client, limit int, window time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			key := "login_rate:" + clientIP(r)

			allowed, err := loginWindowScript.Run(r.Context(), client,
				[]string{key},
				now.UnixMilli(),
				now.Add(-window).UnixMilli(),
				limit,
				window.Milliseconds(),
			).Int64()
			if err != nil {
				log.Warn("login rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if allowed == 0 {
				common.RespondWithError(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware rewrites RemoteAddr to a bare IP when
	// forwarding headers are present; otherwise it is host:port.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Limiter admits at most limit requests per key per fixed window.
type Limiter struct {
	name   string
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewLimiter(name string, store Store, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if window <= 0 {
		window = DefaultWindow
	}

	return &Limiter{
		name:   name,
		store:  store,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow counts one request for key. A store failure lets the request through: the
// limiter protects the gateway budget, it is not an access control.
func (l *Limiter) Allow(ctx context.Context, key string) Result {
	record, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		metrics.RateLimitStoreErrors.Inc()
		logger.FromContext(ctx).Error("rate limit store failed, allowing request",
			"error", err,
			"limiter", l.name,
			"key", key,
		)

		return Result{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit,
			ResetAt:   l.now().Add(l.window),
		}
	}

	remaining := l.limit - record.Count
	if remaining < 0 {
		remaining = 0
	}

	result := Result{
		Allowed:   record.Count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   record.ResetAt,
	}

	if !result.Allowed {
		metrics.RateLimitRejections.WithLabelValues(l.name).Inc()
	}

	return result
}

// returns the remaining budget for key without counting a request
func (l *Limiter) Peek(ctx context.Context, key string) (Result, error) {
	record, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return Result{}, err
	}

	if !ok {
		return Result{Allowed: true, Limit: l.limit, Remaining: l.limit}, nil
	}

	remaining := l.limit - record.Count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   record.Count < l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   record.ResetAt,
	}, nil
}

func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}

// Middleware rejects requests over the limit with 429 and writes the X-RateLimit-*
// headers on every response.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		result := l.Allow(c.Request.Context(), ClientKey(c.Request))
		writeHeaders(c, result, l.now())

		if !result.Allowed {
			logger.FromContext(c.Request.Context()).Warn("rate limit exceeded",
				"limiter", l.name,
				"client_ip", ClientIP(c.Request),
			)

			errors.TooManyRequests(c, "")
			return
		}

		c.Next()
	}
}

func writeHeaders(c *gin.Context, result Result, now time.Time) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	if !result.Allowed {
		seconds := int(result.RetryAfter(now).Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}

		c.Header("Retry-After", strconv.Itoa(seconds))
	}
}

// ClientIP takes the first hop of X-Forwarded-For, then X-Real-IP, then "unknown".
// The deployment sits behind a proxy that sets these; RemoteAddr would be the proxy.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return "unknown"
}

// ClientKey is the store key for the request's client.
func ClientKey(r *http.Request) string {
	return KeyPrefix + ClientIP(r)
}

package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/metrics"
)

// SiteMiddleware is the coarse per-IP guard in front of every route, in ulule's
// formatted notation ("300-M"). Counters are per instance; the shared generation
// limit is enforced separately by Limiter.
func SiteMiddleware(formatted string, exempt ...string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid site rate limit %q: %w", formatted, err)
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: KeyPrefix + "site"})

	middleware := mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithKeyGetter(func(c *gin.Context) string {
			for _, path := range exempt {
				if c.Request.URL.Path == path {
					return ""
				}
			}

			return c.ClientIP()
		}),
		mgin.WithExcludedKey(func(key string) bool {
			return key == ""
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			metrics.RateLimitRejections.WithLabelValues("site").Inc()
			errors.TooManyRequests(c, "")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			logger.FromContext(c.Request.Context()).Error("site rate limiter failed", "error", err)
			errors.InternalError(c, "", err)
		}),
	)

	return middleware, nil
}

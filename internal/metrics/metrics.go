package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptfotos_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// locale routing
	LocaleRedirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptfotos_locale_redirects_total",
			Help: "Requests redirected to a locale-prefixed path",
		},
		[]string{"locale", "source"}, // source: cookie, accept_language, country, default
	)

	// generation gate
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptfotos_rate_limit_rejections_total",
			Help: "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	RateLimitStoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promptfotos_rate_limit_store_errors_total",
			Help: "Rate limit store failures (request allowed through)",
		},
	)

	QuotaRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promptfotos_quota_rejections_total",
			Help: "Generation requests rejected because the free allowance is used up",
		},
	)

	QuotaRefunds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "promptfotos_quota_refunds_total",
			Help: "Free generation reservations returned after a failed generation",
		},
	)

	Generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptfotos_generations_total",
			Help: "Image generation attempts by outcome",
		},
		[]string{"outcome", "resolution"}, // outcome: success, failure
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promptfotos_generation_duration_seconds",
			Help:    "Latency of the image gateway",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	// billing
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptfotos_webhook_events_total",
			Help: "Billing webhook deliveries by event type and outcome",
		},
		[]string{"event", "outcome"}, // outcome: processed, ignored, rejected, failed
	)

	// bot defense
	BotTraps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptfotos_bot_traps_total",
			Help: "Client IPs trapped by the bot defense",
		},
		[]string{"reason"},
	)

	// storage
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptfotos_storage_operations_total",
			Help: "Object storage operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

func RecordGeneration(resolution string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	Generations.WithLabelValues(outcome, resolution).Inc()
	GenerationDuration.Observe(duration.Seconds())
}

func RecordStorage(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	StorageOperations.WithLabelValues(operation, outcome).Inc()
}

// records request latency labelled by the matched route template, not the raw path
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// serves the default registry in the Prometheus text format
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

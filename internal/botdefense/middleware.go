package botdefense

import (
	"context"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/metrics"
)

type Defense struct {
	config *Config
	store  Store
}

func New(config *Config, store Store) *Defense {
	return &Defense{config: config, store: store}
}

// returns a Gin middleware that traps scanners. store failures let the request
// through; nothing here is an access control.
func (d *Defense) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !d.config.Enabled {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		ip := c.ClientIP()
		path := c.Request.URL.Path

		if d.config.IsExemptPath(path) {
			c.Next()
			return
		}

		if d.config.IsHoneypotPath(path) {
			d.trap(ctx, ip, path, ReasonHoneypot)
			ServeDecoy(c)
			c.Abort()

			return
		}

		trapped, reason, err := d.store.IsTrapped(ctx, ip)
		if err != nil {
			logger.FromContext(ctx).Error("failed to check trapped status", "error", err, "ip", ip)
		} else if trapped {
			logger.FromContext(ctx).Debug("trapped IP request blocked", "ip", ip, "reason", reason)
			errors.Forbidden(c, "")

			return
		}

		if IsSuspiciousPath(c.Request.RequestURI) {
			d.trap(ctx, ip, path, ReasonSuspicious)
			errors.Forbidden(c, "")

			return
		}

		c.Next()
	}
}

func (d *Defense) trap(ctx context.Context, ip, path string, reason TrapReason) {
	logger.FromContext(ctx).Warn("bot trap triggered", "ip", ip, "path", path, "reason", reason)
	metrics.BotTraps.WithLabelValues(string(reason)).Inc()

	if err := d.store.Trap(ctx, ip, reason, d.config.TrapTTL); err != nil {
		logger.FromContext(ctx).Error("failed to trap IP", "error", err, "ip", ip)
	}
}

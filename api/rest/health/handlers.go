package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/logger"
)

const probeTimeout = 3 * time.Second

// returns the server health status
func Handler(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, Response{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
		})
	}
}

// runs every probe; a failing required probe answers 503, optional ones only degrade
func ReadinessHandler(version string, checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()

		resp := Response{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
			Checks:  make(map[string]string, len(checks)),
		}
		status := http.StatusOK

		for _, check := range checks {
			if err := check.Probe(ctx); err != nil {
				logger.FromContext(ctx).Warn("readiness probe failed", "check", check.Name, "error", err)
				resp.Checks[check.Name] = "unavailable"

				if check.Required {
					resp.Status = "unhealthy"
					status = http.StatusServiceUnavailable
				} else if resp.Status == "healthy" {
					resp.Status = "degraded"
				}

				continue
			}

			resp.Checks[check.Name] = "ok"
		}

		c.JSON(status, resp)
	}
}

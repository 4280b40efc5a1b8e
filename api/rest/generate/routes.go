package generate

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
	"codeberg.org/promptfotos/server/internal/ratelimit"
)

// preflight policy for the generation endpoint
func CORS(appURL string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{appURL},
		AllowMethods:     []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// registers image generation routes
func RegisterRoutes(router *gin.RouterGroup, deps Dependencies, limiter *ratelimit.Limiter, appURL string) {
	policy := CORS(appURL)

	router.OPTIONS("/generate", policy)
	router.POST("/generate",
		policy,
		limiter.Middleware(),
		auth.OptionalAuthMiddleware(),
		Handler(deps),
	)
}

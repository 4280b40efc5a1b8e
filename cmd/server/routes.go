package main

import (
	"context"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/api/rest/admin"
	"codeberg.org/promptfotos/server/api/rest/auth"
	"codeberg.org/promptfotos/server/api/rest/billing"
	"codeberg.org/promptfotos/server/api/rest/generate"
	"codeberg.org/promptfotos/server/api/rest/health"
	"codeberg.org/promptfotos/server/api/rest/images"
	"codeberg.org/promptfotos/server/api/rest/users"
	"codeberg.org/promptfotos/server/api/web/site"
	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/metrics"
	"codeberg.org/promptfotos/server/internal/storage"
)

// sets up all routes and middleware. locale resolution runs last so bypassed API
// paths and trapped scanners never reach it.
func RegisterRoutes(router *gin.Engine, server *Server) {
	services := server.services
	secure := server.config.IsProduction()

	router.Use(
		errors.Recovery(),
		logger.Middleware(),
		metrics.Middleware(),
		services.BotDefense.Middleware(),
		services.SiteLimiter,
		services.Locales.Middleware(secure),
	)

	router.GET("/metrics", metrics.Handler())
	health.RegisterRoutes(router, version, healthChecks(server)...)

	api := router.Group("/api")
	{
		var objects storage.ObjectStore
		if services.Storage != nil {
			objects = services.Storage
		}

		auth.RegisterRoutes(api, server.userRepo, services.Locales, secure)

		generate.RegisterRoutes(api, generate.Dependencies{
			Generator:   services.Generator,
			Gate:        services.Gate,
			Generations: server.generationRepo,
			Storage:     objects,
		}, services.GenerateLimiter, server.config.AppURL)

		users.RegisterRoutes(api, users.Dependencies{
			Quota:         services.Gate,
			Subscriptions: server.subscriptionRepo,
			Generations:   server.generationRepo,
			Storage:       objects,
		})

		if services.Storage != nil {
			images.RegisterRoutes(api, services.Storage, server.generationRepo)
		}

		billing.RegisterRoutes(api, services.Billing, services.Billing, services.Billing)
		admin.RegisterRoutes(api, services.Gate)
	}

	site.RegisterRoutes(router, site.NewHandler(services.Locales, server.config.AppURL))
}

func healthChecks(server *Server) []health.Check {
	checks := []health.Check{
		{Name: "database", Probe: server.db.Ping, Required: true},
		{Name: "image_gateway", Probe: server.services.Generator.Ping},
	}

	if redisStore := server.services.Redis; redisStore != nil {
		checks = append(checks, health.Check{
			Name:  "redis",
			Probe: func(ctx context.Context) error { return redisStore.Client().Ping(ctx).Err() },
		})
	}

	return checks
}

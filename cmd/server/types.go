package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/promptfotos/server/internal/billing"
	"codeberg.org/promptfotos/server/internal/botdefense"
	"codeberg.org/promptfotos/server/internal/config"
	"codeberg.org/promptfotos/server/internal/imagegen"
	"codeberg.org/promptfotos/server/internal/locale"
	"codeberg.org/promptfotos/server/internal/quota"
	"codeberg.org/promptfotos/server/internal/ratelimit"
	"codeberg.org/promptfotos/server/internal/storage"
	"codeberg.org/promptfotos/server/promptfotos/generations"
	"codeberg.org/promptfotos/server/promptfotos/subscriptions"
	"codeberg.org/promptfotos/server/promptfotos/users"
)

// holds all dependencies and state for the API server
type Server struct {
	db               *pgxpool.Pool
	config           *config.Config
	userRepo         *users.Repository
	generationRepo   *generations.Repository
	subscriptionRepo *subscriptions.Repository
	services         *Services
	router           *gin.Engine
}

// holds the external service clients and request gates
type Services struct {
	Locales    *locale.Resolver
	Gate       *quota.Gate
	Generator  *imagegen.OpenRouter
	Billing    *billing.Service
	BotDefense *botdefense.Defense
	TrapStore  botdefense.Store

	// nil when R2 credentials are not configured
	Storage *storage.R2

	// shared counters, redis-backed when REDIS_URL is set
	RateStore       ratelimit.Store
	GenerateLimiter *ratelimit.Limiter
	SiteLimiter     gin.HandlerFunc

	// nil without REDIS_URL
	Redis *ratelimit.RedisStore
}

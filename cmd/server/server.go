package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/promptfotos/server/internal/config"
	"codeberg.org/promptfotos/server/promptfotos/generations"
	"codeberg.org/promptfotos/server/promptfotos/subscriptions"
	"codeberg.org/promptfotos/server/promptfotos/users"
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.SupabaseConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// supabase pooler has few connections to share
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	// pgbouncer in transaction mode does not support prepared statements
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	userRepo := users.NewRepository(db)
	generationRepo := generations.NewRepository(db)
	subscriptionRepo := subscriptions.NewRepository(db)

	services, err := InitializeServices(cfg, userRepo, subscriptionRepo)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := newRouter(cfg)
	if err != nil {
		services.Close()
		db.Close()
		return nil, err
	}

	server := &Server{
		db:               db,
		config:           cfg,
		userRepo:         userRepo,
		generationRepo:   generationRepo,
		subscriptionRepo: subscriptionRepo,
		services:         services,
		router:           router,
	}

	RegisterRoutes(server.router, server)

	return server, nil
}

// gin believes X-Forwarded-For from any peer unless told otherwise, which would let a
// client pick the IP that bot traps and per-IP limits apply to
func newRouter(cfg *config.Config) (*gin.Engine, error) {
	router := gin.New()

	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	switch strings.ToLower(cfg.TrustedPlatform) {
	case "":
	case "cloudflare":
		router.TrustedPlatform = gin.PlatformCloudflare
	case "appengine":
		router.TrustedPlatform = gin.PlatformGoogleAppEngine
	default:
		router.TrustedPlatform = cfg.TrustedPlatform
	}

	return router, nil
}

// releases the database pool and service connections
func (s *Server) Close() {
	s.services.Close()
	s.db.Close()
}

package main

import (
	"fmt"

	"codeberg.org/promptfotos/server/internal/billing"
	"codeberg.org/promptfotos/server/internal/botdefense"
	"codeberg.org/promptfotos/server/internal/config"
	"codeberg.org/promptfotos/server/internal/imagegen"
	"codeberg.org/promptfotos/server/internal/locale"
	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/quota"
	"codeberg.org/promptfotos/server/internal/ratelimit"
	"codeberg.org/promptfotos/server/internal/storage"
	"codeberg.org/promptfotos/server/promptfotos/subscriptions"
	"codeberg.org/promptfotos/server/promptfotos/users"
)

const appName = "Prompt Gemini Fotos"

// creates and configures all service clients
func InitializeServices(cfg *config.Config, userRepo *users.Repository, subscriptionRepo *subscriptions.Repository) (*Services, error) {
	localeConfig, err := locale.NewConfig(cfg.DefaultLocale)
	if err != nil {
		return nil, err
	}

	services := &Services{
		Locales: locale.NewResolver(localeConfig),
		Gate:    quota.NewGate(userRepo),
		Generator: imagegen.NewOpenRouter(imagegen.Config{
			APIKey:  cfg.OpenRouter.APIKey,
			BaseURL: cfg.OpenRouter.BaseURL,
			Model:   cfg.OpenRouter.Model,
			AppURL:  cfg.AppURL,
			AppName: appName,
		}),
	}

	services.Billing = billing.NewService(billing.Config{
		APIKey:         cfg.Creem.APIKey,
		BaseURL:        cfg.Creem.BaseURL,
		WebhookSecret:  cfg.Creem.WebhookSecret,
		MonthlyProduct: cfg.Creem.MonthlyProduct,
		YearlyProduct:  cfg.Creem.YearlyProduct,
		AppURL:         cfg.AppURL,
	}, billing.NewCreem(cfg.Creem.APIKey, cfg.Creem.BaseURL), subscriptionRepo)

	if cfg.R2.Enabled() {
		r2, err := storage.NewR2(storage.Config{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			Bucket:          cfg.R2.BucketName,
			PublicURL:       cfg.R2.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create r2 client: %w", err)
		}

		services.Storage = r2
	} else {
		logger.Warn("r2 credentials missing, generated images stay at the gateway URL")
	}

	if cfg.RedisURL != "" {
		redisStore, err := ratelimit.NewRedisStoreFromURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}

		services.Redis = redisStore
		services.RateStore = redisStore
		services.TrapStore = botdefense.NewRedisStore(redisStore.Client())
	} else {
		// counters and traps are per instance without redis
		logger.Warn("REDIS_URL not set, rate limits are kept in memory")
		services.RateStore = ratelimit.NewMemoryStore()
		services.TrapStore = botdefense.NewMemoryStore()
	}

	services.GenerateLimiter = ratelimit.NewLimiter("generate", services.RateStore, cfg.GenerateRateLimit, cfg.GenerateRateWindow)
	services.BotDefense = botdefense.New(botdefense.DefaultConfig(), services.TrapStore)

	services.SiteLimiter, err = ratelimit.SiteMiddleware(cfg.SiteRateLimit, "/health", "/api/health", "/metrics")
	if err != nil {
		return nil, err
	}

	return services, nil
}

// releases connections held by the services
func (s *Services) Close() {
	for _, store := range []any{s.RateStore, s.TrapStore} {
		if closer, ok := store.(interface{ Close() error }); ok {
			closer.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
		}
	}
}

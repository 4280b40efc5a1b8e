package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort               = "8080"
	defaultAppURL             = "https://www.promptgeminifotos.com"
	defaultOpenRouterBaseURL  = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel    = "google/gemini-2.5-flash-image-preview"
	defaultCreemBaseURL       = "https://api.creem.io/v1"
	defaultR2Bucket           = "prompt-gemini-photos"
	defaultGenerateRateLimit  = 5
	defaultGenerateRateWindow = time.Minute
	defaultSiteRateLimit      = "300-M"
	defaultLocale             = "en"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		Port:               getEnv("PORT", defaultPort),
		AppURL:             getEnv("APP_URL", defaultAppURL),
		SupabaseConnString: os.Getenv("SUPABASE_CONNECTION_STRING"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", defaultLocale),
		SiteRateLimit:      getEnv("SITE_RATE_LIMIT", defaultSiteRateLimit),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),
		TrustedPlatform:    os.Getenv("TRUSTED_PLATFORM"),
		OpenRouter: OpenRouterConfig{
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			BaseURL: getEnv("OPENROUTER_BASE_URL", defaultOpenRouterBaseURL),
			Model:   getEnv("OPENROUTER_MODEL", defaultOpenRouterModel),
		},
		R2: R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("CLOUDFLARE_R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("CLOUDFLARE_R2_SECRET_ACCESS_KEY"),
			BucketName:      getEnv("CLOUDFLARE_R2_BUCKET_NAME", defaultR2Bucket),
			PublicURL:       os.Getenv("CLOUDFLARE_R2_PUBLIC_URL"),
		},
		Creem: CreemConfig{
			APIKey:         os.Getenv("CREEM_API_KEY"),
			BaseURL:        getEnv("CREEM_BASE_URL", defaultCreemBaseURL),
			WebhookSecret:  os.Getenv("CREEM_WEBHOOK_SECRET"),
			MonthlyProduct: getEnv("CREEM_PRODUCT_MONTHLY", "promptgeminifotos"),
			YearlyProduct:  getEnv("CREEM_PRODUCT_YEARLY", "promptgeminifotos-yearly"),
		},
		Google: OAuthClient{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},
	}

	limit, err := getEnvInt("GENERATE_RATE_LIMIT", defaultGenerateRateLimit)
	if err != nil {
		return nil, err
	}
	cfg.GenerateRateLimit = limit

	window, err := getEnvDuration("GENERATE_RATE_WINDOW", defaultGenerateRateWindow)
	if err != nil {
		return nil, err
	}
	cfg.GenerateRateWindow = window

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.SupabaseConnString == "" {
		return fmt.Errorf("SUPABASE_CONNECTION_STRING environment variable is required")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	if c.OpenRouter.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY environment variable is required")
	}

	if c.GenerateRateLimit <= 0 {
		return fmt.Errorf("GENERATE_RATE_LIMIT must be positive, got %d", c.GenerateRateLimit)
	}

	if c.GenerateRateWindow <= 0 {
		return fmt.Errorf("GENERATE_RATE_WINDOW must be positive, got %s", c.GenerateRateWindow)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

// splits a comma separated variable, dropping blanks
func getEnvList(key string) []string {
	var values []string

	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}

	return values
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 60s: %w", key, err)
	}

	return value, nil
}

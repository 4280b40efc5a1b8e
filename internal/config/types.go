package config

import "time"

type Config struct {
	Environment        string
	Port               string
	AppURL             string
	SupabaseConnString string
	RedisURL           string
	JWTSecret          string
	SessionSecret      string
	DefaultLocale      string

	// per-client fixed window in front of the generation endpoint
	GenerateRateLimit  int
	GenerateRateWindow time.Duration

	// site-wide per-IP limit in ulule formatted notation, e.g. "300-M"
	SiteRateLimit string

	// proxies whose X-Forwarded-For is believed; empty means the socket peer is the client
	TrustedProxies []string

	// "cloudflare", "appengine" or a header name set by the hosting edge
	TrustedPlatform string

	OpenRouter OpenRouterConfig
	R2         R2Config
	Creem      CreemConfig
	Google     OAuthClient
}

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type CreemConfig struct {
	APIKey         string
	BaseURL        string
	WebhookSecret  string
	MonthlyProduct string
	YearlyProduct  string
}

type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

// reports whether object storage credentials are present
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

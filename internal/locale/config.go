package locale

import (
	"fmt"
	"slices"
	"time"
)

const (
	// CookieName keeps the resolved locale across visits
	CookieName = "NEXT_LOCALE"

	// CookieMaxAge is one year
	CookieMaxAge = 365 * 24 * time.Hour
)

// holds the static routing configuration for the resolver
type Config struct {
	// supported tags, in order
	Locales []Tag

	// tag served when no signal matches
	Default Tag

	// upper-case ISO country codes that select a locale from the edge geo header
	CountryLocales map[string]Tag

	// path prefixes that are never localized (matched per segment)
	BypassPrefixes []string
}

// returns the production configuration with the given default tag
func NewConfig(defaultTag string) (Config, error) {
	def, ok := Parse(defaultTag)
	if !ok {
		return Config{}, fmt.Errorf("unsupported default locale %q", defaultTag)
	}

	return Config{
		Locales: slices.Clone(All),
		Default: def,
		CountryLocales: map[string]Tag{
			"BR": PortugueseBrazil,
		},
		BypassPrefixes: []string{
			"/api",
			"/_next",
			"/_vercel",
			"/static",
			"/health",
			"/metrics",
		},
	}, nil
}

// returns the configuration with English as the fallback
func DefaultConfig() Config {
	cfg, _ := NewConfig(English.String()) //nolint:errcheck // English is always supported
	return cfg
}

func (c Config) supports(tag Tag) bool {
	return slices.Contains(c.Locales, tag)
}

// parses a URL/cookie value against the configured set only
func (c Config) parse(value string) (Tag, bool) {
	tag, ok := Parse(value)
	if !ok || !c.supports(tag) {
		return "", false
	}

	return tag, true
}

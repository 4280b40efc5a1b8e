// package botdefense traps clients that probe for paths no visitor of the site would
// ever request. A trapped IP is refused everywhere for TrapTTL.
package botdefense

import (
	"strings"
	"time"
)

type Config struct {
	Enabled bool

	// how long an IP stays trapped
	TrapTTL time.Duration

	// paths only scanners ask for (prefix match per segment)
	HoneypotPaths []string

	// paths never inspected (health checks, crawler files)
	ExemptPaths []string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		TrapTTL: 24 * time.Hour,
		HoneypotPaths: []string{
			// wordpress
			"/wp-admin",
			"/wp-login.php",
			"/wp-content",
			"/wp-includes",
			"/xmlrpc.php",

			// config/secrets
			"/.env",
			"/.git",
			"/config.php",
			"/config.json",
			"/secrets.json",
			"/.aws/credentials",

			// admin panels
			"/phpmyadmin",
			"/administrator",
			"/cpanel",

			// backups
			"/backup.zip",
			"/backup.sql",
			"/db.sql",

			// debug
			"/server-status",
			"/.htaccess",
			"/.htpasswd",

			// bait that looks like ours
			"/api/internal",
			"/api/debug",
			"/api/users/dump",
			"/api/generations/export-all",
		},
		ExemptPaths: []string{
			"/health",
			"/api/health",
			"/metrics",
			"/robots.txt",
			"/sitemap.xml",
		},
	}
}

func (c *Config) IsHoneypotPath(path string) bool {
	return matchesAny(path, c.HoneypotPaths)
}

func (c *Config) IsExemptPath(path string) bool {
	return matchesAny(path, c.ExemptPaths)
}

func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}

	return false
}

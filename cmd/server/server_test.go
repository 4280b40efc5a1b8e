package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/promptfotos/server/internal/config"
)

func clientIP(t *testing.T, cfg *config.Config, remoteAddr string, headers map[string]string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router, err := newRouter(cfg)
	require.NoError(t, err)
	router.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w.Body.String()
}

func TestNewRouter_IgnoresForwardedForByDefault(t *testing.T) {
	ip := clientIP(t, &config.Config{}, "198.51.100.1:5000", map[string]string{
		"X-Forwarded-For": "203.0.113.77",
		"X-Real-IP":       "203.0.113.78",
	})

	assert.Equal(t, "198.51.100.1", ip)
}

func TestNewRouter_TrustedProxies(t *testing.T) {
	cfg := &config.Config{TrustedProxies: []string{"10.0.0.0/8"}}
	headers := map[string]string{"X-Forwarded-For": "203.0.113.77"}

	assert.Equal(t, "203.0.113.77", clientIP(t, cfg, "10.1.2.3:5000", headers))
	assert.Equal(t, "198.51.100.1", clientIP(t, cfg, "198.51.100.1:5000", headers))
}

func TestNewRouter_TrustedPlatform(t *testing.T) {
	ip := clientIP(t, &config.Config{TrustedPlatform: "cloudflare"}, "198.51.100.1:5000", map[string]string{
		"CF-Connecting-IP": "203.0.113.90",
	})

	assert.Equal(t, "203.0.113.90", ip)
}

func TestNewRouter_InvalidProxy(t *testing.T) {
	_, err := newRouter(&config.Config{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}

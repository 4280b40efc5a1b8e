package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// cookie carrying the session JWT for browser requests
	SessionCookieName = "promptfotos_session"

	TokenTTL = 7 * 24 * time.Hour

	// outbound oauth fetches
	ProviderTimeout  = 30 * time.Second
	ProviderAttempts = 3
)

// gin context keys set by the middleware
const (
	ContextUserID  = "user_id"
	ContextEmail   = "user_email"
	ContextIsAdmin = "is_admin"
)

// represents JWT claims
type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

type ProviderConfig struct {
	BaseURL            string
	SessionSecret      string
	GoogleClientID     string
	GoogleClientSecret string
}

package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func TestGenerateJWT_Success(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	token, err := GenerateJWT("user-123", "test@example.com", false)

	require.NoError(t, err)
	assert.True(t, len(token) > 50, "JWT should be reasonably long")
	assert.Equal(t, 3, len(strings.Split(token, ".")), "JWT should have 3 parts")
}

func TestGenerateJWT_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateJWT("user-123", "test@example.com", false)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET not set")
}

func TestValidateJWT_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	token, err := GenerateJWT("user-123", "test@example.com", true)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)

	// verify expiration is set to 7 days
	diff := claims.ExpiresAt.Time.Sub(time.Now().Add(TokenTTL)).Abs()
	assert.Less(t, diff, 5*time.Second)
}

func TestValidateJWT_Rejections(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "attacker",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noneToken, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType) //nolint:errcheck // test code

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-123"})
	otherToken, err := otherKey.SignedString([]byte("different-secret"))
	require.NoError(t, err)

	valid, err := GenerateJWT("user-123", "test@example.com", false)
	require.NoError(t, err)

	cases := map[string]string{
		"expired":   expiredToken,
		"none alg":  noneToken,
		"other key": otherToken,
		"tampered":  valid[:len(valid)-5] + "XXXXX",
		"empty":     "",
		"malformed": "not.a.jwt",
		"script":    "<script>alert('xss')</script>",
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateJWT(token)
			assert.Error(t, err)
		})
	}
}

func newAuthRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handlers := append(middleware, func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "admin": IsAdmin(c)})
	})
	r.GET("/me", handlers...)

	return r
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := newAuthRouter(AuthMiddleware())

	token, err := GenerateJWT("user-1", "a@b.test", false)
	require.NoError(t, err)

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"userId":"user-1"`)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
	})

	t.Run("bad scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := newAuthRouter(OptionalAuthMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":""`)
}

func TestRequireAdmin(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	r := newAuthRouter(AuthMiddleware(), RequireAdmin())

	user, err := GenerateJWT("user-1", "a@b.test", false)
	require.NoError(t, err)
	admin, err := GenerateJWT("admin-1", "admin@b.test", true)
	require.NoError(t, err)

	for token, want := range map[string]int{user: http.StatusForbidden, admin: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, want, w.Code)
	}
}

func TestProviderClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "code=abc", string(body))

		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		_, _ = w.Write([]byte(`{"access_token":"tok"}`))
	}))
	defer server.Close()

	client := NewProviderClient(nil)

	resp, err := client.Post(server.URL, "application/x-www-form-urlencoded", strings.NewReader("code=abc"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestProviderClient_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resp, err := NewProviderClient(nil).Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(ProviderAttempts), calls.Load())
}

func TestProviderClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	resp, err := NewProviderClient(nil).Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestInitializeProviders_Validation(t *testing.T) {
	err := InitializeProviders(ProviderConfig{GoogleClientID: "id", GoogleClientSecret: "secret"})
	assert.ErrorContains(t, err, "SESSION_SECRET")

	err = InitializeProviders(ProviderConfig{SessionSecret: "s"})
	assert.ErrorContains(t, err, "GOOGLE_CLIENT_ID")

	require.NoError(t, InitializeProviders(ProviderConfig{
		BaseURL:            "https://fotos.example",
		SessionSecret:      "s",
		GoogleClientID:     "id",
		GoogleClientSecret: "secret",
	}))
}

package images

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/promptfotos/server/internal/auth"
	"codeberg.org/promptfotos/server/internal/storage"
)

const ownedKey = "images/generated/user-1/1735689600000-a.png"

type fakeStore struct {
	deleted []string
	err     error
}

func (f *fakeStore) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	return "https://r2.example/" + key + "?X-Amz-Expires=" + expiry.String(), nil
}

func (f *fakeStore) PresignPut(_ context.Context, key, contentType string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	return "https://r2.example/" + key + "?upload=" + contentType, nil
}

func (f *fakeStore) NewKey(userID string, imageType storage.ImageType, _ string) string {
	return "images/" + string(imageType) + "/" + userID + "/1735689600000-u.png"
}

func (f *fakeStore) PublicURL(key string) string {
	return "https://img.example/" + key
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.err
}

type fakeOwners map[string]string

func (f fakeOwners) OwnsImage(_ context.Context, userID, key string) (bool, error) {
	return f[key] == userID, nil
}

func newRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), store, fakeOwners{ownedKey: "user-1"})

	return r
}

func do(t *testing.T, r *gin.Engine, method, path, userID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		token, err := auth.GenerateJWT(userID, userID+"@example.com", false)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestGetDownloadURL(t *testing.T) {
	r := newRouter(&fakeStore{})

	w := do(t, r, http.MethodGet, "/api/images/"+ownedKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"expiresIn":3600`)
	assert.Contains(t, w.Body.String(), ownedKey)

	w = do(t, r, http.MethodGet, "/api/images/secrets/config.json", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDownloadURL_StorageFailure(t *testing.T) {
	r := newRouter(&fakeStore{err: errors.New("r2 unavailable")})

	w := do(t, r, http.MethodGet, "/api/images/"+ownedKey, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "r2 unavailable")
}

func TestDeleteImage(t *testing.T) {
	t.Setenv("JWT_SECRET", "images-api-secret")

	store := &fakeStore{}
	r := newRouter(store)

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodDelete, "/api/images/"+ownedKey, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/images/"+ownedKey, "user-2").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, "/api/images/images/generated/user-1/other.png", "user-1").Code)
	assert.Empty(t, store.deleted)

	w := do(t, r, http.MethodDelete, "/api/images/"+ownedKey, "user-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{ownedKey}, store.deleted)
}

func TestGetUploadURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "images-secret")

	r := newRouter(&fakeStore{})

	upload := func(body, userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/images/upload-url", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		if userID != "" {
			token, err := auth.GenerateJWT(userID, userID+"@example.com", false)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		return w
	}

	assert.Equal(t, http.StatusUnauthorized, upload(`{"contentType":"image/png"}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, upload(`{}`, "user-1").Code)
	assert.Equal(t, http.StatusBadRequest, upload(`{"contentType":"application/pdf"}`, "user-1").Code)

	w := upload(`{"contentType":"image/png"}`, "user-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"images/original/user-1/1735689600000-u.png"`)
	assert.Contains(t, w.Body.String(), `"publicUrl":"https://img.example/images/original/user-1/1735689600000-u.png"`)
	assert.Contains(t, w.Body.String(), `"expiresIn":3600`)
}

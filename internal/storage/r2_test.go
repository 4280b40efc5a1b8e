package storage

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n fake image body")

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// minimal S3 endpoint: accepts PUT/DELETE and serves the source image
func newFakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []recordedRequest
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/source.jpg" {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(pngBytes)
			return
		}

		body, _ := io.ReadAll(r.Body)

		mu.Lock()
		requests = append(requests, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		mu.Unlock()

		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"abc"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)

	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()

		return append([]recordedRequest(nil), requests...)
	}
}

func newTestR2(t *testing.T, endpoint string) *R2 {
	t.Helper()

	r2, err := NewR2(Config{
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "photos",
		PublicURL:       "https://img.example.test/",
		Endpoint:        endpoint,
	})
	require.NoError(t, err)

	r2.now = func() time.Time { return time.UnixMilli(1735689600000) }

	return r2
}

var keyPattern = regexp.MustCompile(`^images/generated/user-1/1735689600000-[0-9a-f-]{36}\.png$`)

func TestUploadFromURL_DataURL(t *testing.T) {
	server, requests := newFakeS3(t)
	r2 := newTestR2(t, server.URL)

	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

	result, err := r2.UploadFromURL(context.Background(), dataURL, "user-1", ImageGenerated)
	require.NoError(t, err)

	assert.Regexp(t, keyPattern, result.Key)
	assert.Equal(t, "https://img.example.test/"+result.Key, result.URL)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/photos/"+result.Key, reqs[0].Path)
	assert.Equal(t, "image/png", reqs[0].ContentType)
	assert.Contains(t, string(reqs[0].Body), "fake image body")
}

func TestUploadFromURL_Remote(t *testing.T) {
	server, requests := newFakeS3(t)
	r2 := newTestR2(t, server.URL)

	result, err := r2.UploadFromURL(context.Background(), server.URL+"/source.jpg", "user-1", ImageOriginal)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "images/original/user-1/"))
	assert.True(t, strings.HasSuffix(result.Key, ".jpg"))
	require.Len(t, requests(), 1)
}

func TestUploadFromURL_FetchFailure(t *testing.T) {
	server, requests := newFakeS3(t)
	r2 := newTestR2(t, server.URL)

	_, err := r2.UploadFromURL(context.Background(), "data:image/png;base64,!!!", "user-1", ImageGenerated)
	assert.Error(t, err)

	_, err = r2.UploadFromURL(context.Background(), "data:image/png,raw", "user-1", ImageGenerated)
	assert.Error(t, err)

	assert.Empty(t, requests())
}

func TestDelete(t *testing.T) {
	server, requests := newFakeS3(t)
	r2 := newTestR2(t, server.URL)

	require.NoError(t, r2.Delete(context.Background(), "images/generated/user-1/1-a.png"))

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodDelete, reqs[0].Method)
	assert.Equal(t, "/photos/images/generated/user-1/1-a.png", reqs[0].Path)
}

func TestPresignGet(t *testing.T) {
	r2 := newTestR2(t, "https://r2.example.test")

	signed, err := r2.PresignGet(context.Background(), "images/generated/user-1/1-a.png", PresignExpiry)
	require.NoError(t, err)

	assert.Contains(t, signed, "/photos/images/generated/user-1/1-a.png")
	assert.Contains(t, signed, "X-Amz-Signature=")
	assert.Contains(t, signed, "X-Amz-Expires=3600")

	put, err := r2.PresignPut(context.Background(), "images/original/user-1/1-b.jpg", "image/jpeg", PresignExpiry)
	require.NoError(t, err)
	assert.Contains(t, put, "X-Amz-Signature=")
}

func TestKeyFromURL(t *testing.T) {
	r2 := newTestR2(t, "https://r2.example.test")

	key, ok := r2.KeyFromURL("https://img.example.test/images/generated/user-1/1-a.png")
	assert.True(t, ok)
	assert.Equal(t, "images/generated/user-1/1-a.png", key)

	_, ok = r2.KeyFromURL("https://openrouter.example/tmp/1.png")
	assert.False(t, ok)

	_, ok = r2.KeyFromURL("data:image/png;base64,AAAA")
	assert.False(t, ok)

	_, ok = r2.KeyFromURL("https://img.example.test/../secrets")
	assert.False(t, ok)
}

func TestValidateKeyAndOwner(t *testing.T) {
	assert.NoError(t, ValidateKey("images/generated/u/1-a.png"))
	assert.ErrorIs(t, ValidateKey("secrets/config"), ErrInvalidKey)
	assert.ErrorIs(t, ValidateKey("images/../secrets"), ErrInvalidKey)

	owner, ok := OwnerOf("images/original/user-9/1-a.jpg")
	assert.True(t, ok)
	assert.Equal(t, "user-9", owner)

	_, ok = OwnerOf("images/user-9.jpg")
	assert.False(t, ok)
}

func TestNewR2_Validation(t *testing.T) {
	_, err := NewR2(Config{AccessKeyID: "k", SecretAccessKey: "s"})
	assert.Error(t, err)

	_, err = NewR2(Config{Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"})
	assert.Error(t, err, "account id or endpoint required")
}

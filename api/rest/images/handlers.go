package images

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/metrics"
	"codeberg.org/promptfotos/server/internal/storage"
)

// reads the wildcard key, accepting both raw and percent-encoded slashes
func keyParam(c *gin.Context) (string, bool) {
	raw := strings.TrimPrefix(c.Param("key"), "/")
	if raw == "" {
		errors.BadRequest(c, "image key is required", nil)
		return "", false
	}

	key, err := url.PathUnescape(raw)
	if err != nil || storage.ValidateKey(key) != nil {
		errors.NotFound(c, "image")
		return "", false
	}

	return key, true
}

// returns a short-lived download URL for a stored image
func GetDownloadURL(store Presigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := keyParam(c)
		if !ok {
			return
		}

		signed, err := store.PresignGet(c.Request.Context(), key, storage.PresignExpiry)
		metrics.RecordStorage("presign", err)

		if err != nil {
			errors.UpstreamFailure(c, "failed to generate download url", err)
			return
		}

		c.JSON(http.StatusOK, DownloadResponse{
			Success:     true,
			DownloadURL: signed,
			ExpiresIn:   int(storage.PresignExpiry.Seconds()),
		})
	}
}

// returns a presigned PUT so the browser can upload a reference image straight to the
// bucket; the public URL is then sent as imageUrl to /api/generate
func GetUploadURL(store Presigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req UploadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, "contentType is required", err)
			return
		}

		if !uploadContentTypes[req.ContentType] {
			errors.ValidationError(c, "unsupported content type", nil)
			return
		}

		key := store.NewKey(userID, storage.ImageOriginal, req.ContentType)

		signed, err := store.PresignPut(c.Request.Context(), key, req.ContentType, storage.PresignExpiry)
		if err != nil {
			errors.UpstreamFailure(c, "failed to generate upload url", err)
			return
		}

		c.JSON(http.StatusOK, UploadResponse{
			Success:   true,
			UploadURL: signed,
			Key:       key,
			PublicURL: store.PublicURL(key),
			ExpiresIn: int(storage.PresignExpiry.Seconds()),
		})
	}
}

// deletes a stored image owned by the signed-in user
func DeleteImage(store Presigner, owners OwnershipChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		key, ok := keyParam(c)
		if !ok {
			return
		}

		// the key must sit under the user's prefix and be referenced by one of their generations
		if owner, ok := storage.OwnerOf(key); !ok || owner != userID {
			errors.NotFound(c, "image")
			return
		}

		owns, err := owners.OwnsImage(c.Request.Context(), userID, key)
		if err != nil {
			errors.InternalError(c, "failed to verify image ownership", err)
			return
		}

		if !owns {
			errors.NotFound(c, "image")
			return
		}

		err = store.Delete(c.Request.Context(), key)
		metrics.RecordStorage("delete", err)

		if err != nil {
			errors.UpstreamFailure(c, "failed to delete image", err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "image deleted successfully"})
	}
}

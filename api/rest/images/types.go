package images

import (
	"context"
	"time"

	"codeberg.org/promptfotos/server/internal/storage"
)

// content types accepted for direct reference-image uploads
var uploadContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

type Presigner interface {
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	NewKey(userID string, imageType storage.ImageType, contentType string) string
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

type OwnershipChecker interface {
	OwnsImage(ctx context.Context, userID, key string) (bool, error)
}

type DownloadResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresIn   int    `json:"expiresIn"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type UploadResponse struct {
	Success   bool   `json:"success"`
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

// package storage keeps user images in Cloudflare R2 through its S3-compatible API.
package storage

import (
	"context"
	"errors"
	"time"
)

// ImageType is the first path segment under images/.
type ImageType string

const (
	ImageOriginal  ImageType = "original"
	ImageGenerated ImageType = "generated"
)

const (
	// lifetime of presigned download/upload URLs
	PresignExpiry = time.Hour

	// largest image accepted from a remote URL or data URL
	MaxImageBytes = 20 << 20

	keyPrefix = "images"
)

var (
	ErrNotConfigured = errors.New("object storage not configured")
	ErrEmptyObject   = errors.New("no data to upload")
	ErrTooLarge      = errors.New("image exceeds size limit")
	ErrInvalidKey    = errors.New("invalid object key")
)

type Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string

	// public base URL the bucket is served from, objects live at <PublicURL>/<key>
	PublicURL string

	// overrides the R2 endpoint derived from AccountID (tests, other S3 providers)
	Endpoint string
}

type UploadResult struct {
	Key string
	URL string
}

// ObjectStore is what handlers depend on.
type ObjectStore interface {
	UploadFromURL(ctx context.Context, sourceURL, userID string, imageType ImageType) (*UploadResult, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(rawURL string) (string, bool)
}

package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/promptfotos/server/internal/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// fetches source images; generated images can be large
var fetchHTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}

type R2 struct {
	config    Config
	client    *s3.Client
	presigner *s3.PresignClient
	http      *http.Client
	now       func() time.Time
}

func NewR2(config Config) (*R2, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("r2 bucket is required")
	}

	if config.AccessKeyID == "" || config.SecretAccessKey == "" {
		return nil, fmt.Errorf("r2 credentials are required")
	}

	endpoint := config.Endpoint
	if endpoint == "" {
		if config.AccountID == "" {
			return nil, fmt.Errorf("r2 account id is required")
		}

		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", config.AccountID)
	}

	client := s3.New(s3.Options{
		Region:       "auto",
		Credentials:  credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: config.Endpoint != "",
	})

	return &R2{
		config:    config,
		client:    client,
		presigner: s3.NewPresignClient(client),
		http:      fetchHTTPClient,
		now:       time.Now,
	}, nil
}

// Upload stores data under key and returns its public URL.
func (r *R2) Upload(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyObject
	}

	if contentType == "" {
		contentType = "image/png"
	}

	meta := map[string]string{"uploaded-at": r.now().UTC().Format(time.RFC3339)}
	for k, v := range metadata {
		meta[k] = v
	}

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata:    meta,
	})
	metrics.RecordStorage("put", err)

	if err != nil {
		return nil, fmt.Errorf("upload to r2: %w", err)
	}

	return &UploadResult{Key: key, URL: r.PublicURL(key)}, nil
}

// UploadFromURL copies an image (https or data: URL) into the user's folder.
func (r *R2) UploadFromURL(ctx context.Context, sourceURL, userID string, imageType ImageType) (*UploadResult, error) {
	data, contentType, err := r.fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"user-id":    userID,
		"image-type": string(imageType),
	}

	// data URLs would blow past the metadata size limit
	if !strings.HasPrefix(sourceURL, "data:") {
		metadata["source-url"] = sourceURL
	}

	return r.Upload(ctx, r.NewKey(userID, imageType, contentType), data, contentType, metadata)
}

// NewKey builds images/<type>/<user>/<unix ms>-<uuid>.<ext>.
func (r *R2) NewKey(userID string, imageType ImageType, contentType string) string {
	return fmt.Sprintf("%s/%s/%s/%d-%s.%s",
		keyPrefix,
		imageType,
		userID,
		r.now().UnixMilli(),
		uuid.NewString(),
		extensionFor(contentType),
	)
}

func (r *R2) PublicURL(key string) string {
	return strings.TrimRight(r.config.PublicURL, "/") + "/" + key
}

// PresignGet returns a time-limited download URL.
func (r *R2) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	metrics.RecordStorage("presign_get", err)

	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}

	return req.URL, nil
}

// PresignPut returns a time-limited URL the browser can upload a source image to.
func (r *R2) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	req, err := r.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.config.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiry))
	metrics.RecordStorage("presign_put", err)

	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}

	return req.URL, nil
}

func (r *R2) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.config.Bucket),
		Key:    aws.String(key),
	})
	metrics.RecordStorage("delete", err)

	if err != nil {
		return fmt.Errorf("delete from r2: %w", err)
	}

	return nil
}

// KeyFromURL extracts the object key from a public URL. URLs that are not under the
// configured public base (gateway fallbacks, data URLs) yield ok=false.
func (r *R2) KeyFromURL(rawURL string) (string, bool) {
	base := strings.TrimRight(r.config.PublicURL, "/") + "/"
	if r.config.PublicURL == "" || !strings.HasPrefix(rawURL, base) {
		return "", false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}

	key := strings.TrimPrefix(parsed.Path, baseURL.Path)
	if ValidateKey(key) != nil {
		return "", false
	}

	return key, true
}

// ValidateKey accepts only keys this service writes.
func ValidateKey(key string) error {
	if !strings.HasPrefix(key, keyPrefix+"/") || strings.Contains(key, "..") || strings.Contains(key, "//") {
		return ErrInvalidKey
	}

	return nil
}

// OwnerOf returns the user segment of a key written by NewKey.
func OwnerOf(key string) (string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] != keyPrefix {
		return "", false
	}

	return parts[2], true
}

func (r *R2) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	if strings.HasPrefix(sourceURL, "data:") {
		return decodeDataURL(sourceURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	if len(data) > MaxImageBytes {
		return nil, "", ErrTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return data, contentType, nil
}

// decodes data:<mime>;base64,<payload>
func decodeDataURL(dataURL string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(dataURL, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data url")
	}

	mediaType, encoding, _ := strings.Cut(header, ";")
	if encoding != "base64" {
		return nil, "", fmt.Errorf("unsupported data url encoding %q", encoding)
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, "", ErrTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data url: %w", err)
	}

	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}

	return data, mediaType, nil
}

func extensionFor(contentType string) string {
	contentType = strings.ToLower(contentType)

	switch {
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "jpg"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return "png"
	}
}

var _ ObjectStore = (*R2)(nil)

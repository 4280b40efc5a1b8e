package generate

import (
	"context"

	"codeberg.org/promptfotos/server/internal/imagegen"
	"codeberg.org/promptfotos/server/internal/quota"
	"codeberg.org/promptfotos/server/internal/storage"
	"codeberg.org/promptfotos/server/promptfotos/generations"
)

// QuotaGate is the slice of *quota.Gate the handler uses
type QuotaGate interface {
	Consume(ctx context.Context, userID string) (quota.Decision, error)
	Refund(ctx context.Context, userID string, decision quota.Decision) error
	IncrementUsage(ctx context.Context, userID string) quota.UsageResult
}

type GenerationRecorder interface {
	Create(ctx context.Context, params generations.CreateParams) (string, error)
}

type Dependencies struct {
	Generator   imagegen.Generator
	Gate        QuotaGate
	Generations GenerationRecorder

	// optional, images are kept at the gateway URL when nil
	Storage storage.ObjectStore
}

// Request represents the request body for image generation
type Request struct {
	Prompt     string `json:"prompt" binding:"required"`
	ImageURL   string `json:"imageUrl"`
	UserID     string `json:"userId"`
	Category   string `json:"category"`
	Style      string `json:"style"`
	Resolution string `json:"resolution"`
}

// Response represents the response for image generation
type Response struct {
	Success      bool           `json:"success"`
	ImageURL     string         `json:"imageUrl"`
	Prompt       string         `json:"prompt"`
	GenerationID *string        `json:"generationId"`
	Usage        imagegen.Usage `json:"usage"`

	// a count, or "unlimited" for pro
	Remaining  any    `json:"remaining"`
	Resolution string `json:"resolution"`
	Watermark  bool   `json:"watermark"`
}

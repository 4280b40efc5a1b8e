package users

import (
	"context"

	"codeberg.org/promptfotos/server/api/rest/pagination"
	"codeberg.org/promptfotos/server/internal/quota"
	"codeberg.org/promptfotos/server/internal/storage"
	"codeberg.org/promptfotos/server/promptfotos/generations"
	"codeberg.org/promptfotos/server/promptfotos/subscriptions"
)

var generationPages = pagination.Limits{Default: 20, Max: 100}

type QuotaChecker interface {
	Check(ctx context.Context, userID string) (*quota.Subscription, quota.Decision, error)
}

type SubscriptionReader interface {
	LatestByUser(ctx context.Context, userID string) (*subscriptions.Subscription, error)
}

type GenerationStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]generations.Generation, int, error)
	FindOwned(ctx context.Context, generationID, userID string) (*generations.Generation, error)
	DeleteOwned(ctx context.Context, generationID, userID string) error
}

type Dependencies struct {
	Quota         QuotaChecker
	Subscriptions SubscriptionReader
	Generations   GenerationStore

	// optional, image cleanup is skipped when nil
	Storage storage.ObjectStore
}

type SubscriptionData struct {
	quota.Subscription
	Remaining   any                         `json:"remaining"`
	CanGenerate bool                        `json:"canGenerate"`
	Billing     *subscriptions.Subscription `json:"billing,omitempty"`
}

type SubscriptionResponse struct {
	Success bool             `json:"success"`
	Data    SubscriptionData `json:"data"`
}

type GenerationsResponse struct {
	Success     bool                     `json:"success"`
	Generations []generations.Generation `json:"generations"`
	Pagination  pagination.Meta          `json:"pagination"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

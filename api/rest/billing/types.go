package billing

import (
	"context"
	"time"

	"codeberg.org/promptfotos/server/internal/billing"
)

// largest webhook body accepted
const maxWebhookBytes = 1 << 20

type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, userID, email, name string, plan billing.PlanType) (*billing.CheckoutSession, error)
}

type WebhookProcessor interface {
	ParseEvent(payload []byte, signature string) (*billing.Event, error)
	HandleEvent(ctx context.Context, event *billing.Event) (billing.Outcome, error)
}

type SubscriptionCanceler interface {
	CancelSubscription(ctx context.Context, userID string) (*billing.ProviderSubscription, error)
}

type SubscribeRequest struct {
	PlanType string `json:"planType"`
	Name     string `json:"name"`
}

type SubscribeResponse struct {
	Success     bool   `json:"success"`
	CheckoutURL string `json:"checkoutUrl"`
	SessionID   string `json:"sessionId"`
}

type WebhookResponse struct {
	Received bool            `json:"received"`
	Outcome  billing.Outcome `json:"outcome"`
}

type CancelResponse struct {
	Success           bool       `json:"success"`
	Status            string     `json:"status"`
	CancelAtPeriodEnd bool       `json:"cancelAtPeriodEnd"`
	CurrentPeriodEnd  *time.Time `json:"currentPeriodEnd,omitempty"`
}

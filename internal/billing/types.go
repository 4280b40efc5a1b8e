// package billing integrates the Creem payment provider: checkout sessions for the pro
// plan and the signed webhooks that flip a user's subscription state.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"codeberg.org/promptfotos/server/promptfotos/subscriptions"
)

// header carrying the hex HMAC-SHA256 of the raw webhook body
const SignatureHeader = "creem-signature"

type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

func ParsePlanType(value string) (PlanType, bool) {
	switch PlanType(value) {
	case "":
		return PlanMonthly, true
	case PlanMonthly, PlanYearly:
		return PlanType(value), true
	default:
		return "", false
	}
}

// webhook event types
const (
	EventSubscriptionActive   = "subscription.active"
	EventSubscriptionPaid     = "subscription.paid"
	EventSubscriptionCanceled = "subscription.canceled"
	EventSubscriptionExpired  = "subscription.expired"
	EventCheckoutCompleted    = "checkout.completed"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")

	ErrNoActiveSubscription = errors.New("no active subscription")
)

type Config struct {
	APIKey         string
	BaseURL        string
	WebhookSecret  string
	MonthlyProduct string
	YearlyProduct  string

	// checkout success/cancel target
	AppURL string
}

type CheckoutRequest struct {
	ProductID     string            `json:"productId"`
	CustomerEmail string            `json:"customerEmail"`
	CustomerName  string            `json:"customerName,omitempty"`
	SuccessURL    string            `json:"successUrl"`
	CancelURL     string            `json:"cancelUrl"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type CheckoutSession struct {
	CheckoutURL string `json:"checkoutUrl"`
	SessionID   string `json:"sessionId"`
}

// subscription as returned by the provider API and embedded in webhook objects
type ProviderSubscription struct {
	ID                 string            `json:"id"`
	Status             string            `json:"status"`
	CustomerID         string            `json:"customerId"`
	ProductID          string            `json:"productId"`
	CurrentPeriodStart *time.Time        `json:"currentPeriodStart"`
	CurrentPeriodEnd   *time.Time        `json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool              `json:"cancelAtPeriodEnd"`
	Metadata           map[string]string `json:"metadata"`
}

// webhook envelope; Object depends on EventType
type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"eventType"`
	Object    json.RawMessage `json:"object"`
}

// object of checkout.completed
type checkoutObject struct {
	ID           string                `json:"id"`
	Metadata     map[string]string     `json:"metadata"`
	Subscription *ProviderSubscription `json:"subscription"`
}

// the calls the billing handlers need from the provider
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (*ProviderSubscription, error)
}

// persistence for subscription state, implemented by the subscriptions repository
type SubscriptionStore interface {
	Activate(ctx context.Context, a subscriptions.Activation) (*subscriptions.Subscription, error)
	Cancel(ctx context.Context, creemSubscriptionID string) (string, error)
	LatestByUser(ctx context.Context, userID string) (*subscriptions.Subscription, error)
}

// what happened to an event
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeIgnored   Outcome = "ignored"
)

package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/metrics"
	"codeberg.org/promptfotos/server/promptfotos/subscriptions"
)

// Service turns checkout requests into provider sessions and applies verified
// webhook events to local subscription state.
type Service struct {
	config   Config
	provider Provider
	store    SubscriptionStore
}

func NewService(config Config, provider Provider, store SubscriptionStore) *Service {
	return &Service{config: config, provider: provider, store: store}
}

func (s *Service) productFor(plan PlanType) string {
	if plan == PlanYearly {
		return s.config.YearlyProduct
	}

	return s.config.MonthlyProduct
}

// CreateCheckout opens a pro checkout for the user. The user id travels in metadata
// and comes back on the webhook.
func (s *Service) CreateCheckout(ctx context.Context, userID, email, name string, plan PlanType) (*CheckoutSession, error) {
	return s.provider.CreateCheckoutSession(ctx, CheckoutRequest{
		ProductID:     s.productFor(plan),
		CustomerEmail: email,
		CustomerName:  name,
		SuccessURL:    s.config.AppURL,
		CancelURL:     s.config.AppURL,
		Metadata: map[string]string{
			"userId":   userID,
			"planType": string(plan),
			"source":   "promptfotos",
		},
	})
}

// CancelSubscription asks the provider to stop renewing the user's subscription. The user
// keeps pro until the period ends; the local state flips when the provider sends
// subscription.canceled.
func (s *Service) CancelSubscription(ctx context.Context, userID string) (*ProviderSubscription, error) {
	sub, err := s.store.LatestByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	if sub == nil || sub.CreemSubscriptionID == "" || sub.Status == subscriptions.StatusCanceled {
		return nil, ErrNoActiveSubscription
	}

	return s.provider.CancelSubscription(ctx, sub.CreemSubscriptionID, true)
}

// ParseEvent verifies the signature and decodes the envelope. Nothing is decoded
// before the signature checks out.
func (s *Service) ParseEvent(payload []byte, signature string) (*Event, error) {
	if err := VerifySignature(payload, signature, s.config.WebhookSecret); err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	return &event, nil
}

// HandleEvent applies an event. Unknown event types are acknowledged and ignored.
// Returned errors mean the state change did not persist and the provider should
// redeliver.
func (s *Service) HandleEvent(ctx context.Context, event *Event) (Outcome, error) {
	log := logger.FromContext(ctx).With("event_id", event.ID, "event_type", event.EventType)

	var (
		outcome Outcome
		err     error
	)

	switch event.EventType {
	case EventSubscriptionActive, EventSubscriptionPaid:
		outcome, err = s.handleActivation(ctx, event)
	case EventSubscriptionCanceled, EventSubscriptionExpired:
		outcome, err = s.handleCancellation(ctx, event)
	case EventCheckoutCompleted:
		outcome, err = s.handleCheckoutCompleted(ctx, event)
	default:
		log.Info("ignoring unhandled webhook event")
		outcome = OutcomeIgnored
	}

	if err != nil {
		metrics.WebhookEvents.WithLabelValues(event.EventType, "failed").Inc()
		return outcome, err
	}

	metrics.WebhookEvents.WithLabelValues(event.EventType, string(outcome)).Inc()
	log.Info("webhook event handled", "outcome", outcome)

	return outcome, nil
}

func (s *Service) handleActivation(ctx context.Context, event *Event) (Outcome, error) {
	var sub ProviderSubscription
	if err := json.Unmarshal(event.Object, &sub); err != nil || sub.ID == "" {
		return "", ErrMalformedEvent
	}

	userID := sub.Metadata["userId"]
	if userID == "" {
		// nothing we can attach this to; redelivery would not help
		logger.FromContext(ctx).Warn("subscription event without user id", "subscription_id", sub.ID)
		return OutcomeIgnored, nil
	}

	return OutcomeProcessed, s.activate(ctx, userID, &sub)
}

func (s *Service) handleCancellation(ctx context.Context, event *Event) (Outcome, error) {
	var sub ProviderSubscription
	if err := json.Unmarshal(event.Object, &sub); err != nil || sub.ID == "" {
		return "", ErrMalformedEvent
	}

	userID, err := s.store.Cancel(ctx, sub.ID)
	if err != nil {
		return "", fmt.Errorf("failed to cancel subscription %s: %w", sub.ID, err)
	}

	logger.FromContext(ctx).Info("subscription canceled", "subscription_id", sub.ID, "user_id", userID)

	return OutcomeProcessed, nil
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event *Event) (Outcome, error) {
	var checkout checkoutObject
	if err := json.Unmarshal(event.Object, &checkout); err != nil {
		return "", ErrMalformedEvent
	}

	if checkout.Subscription == nil || checkout.Subscription.ID == "" {
		logger.FromContext(ctx).Warn("checkout completed without subscription", "checkout_id", checkout.ID)
		return OutcomeIgnored, nil
	}

	userID := checkout.Metadata["userId"]
	if userID == "" {
		userID = checkout.Subscription.Metadata["userId"]
	}

	if userID == "" {
		logger.FromContext(ctx).Warn("checkout completed without user id", "checkout_id", checkout.ID)
		return OutcomeIgnored, nil
	}

	return OutcomeProcessed, s.activate(ctx, userID, checkout.Subscription)
}

// fills in billing period fields from the provider when the event omitted them
func (s *Service) activate(ctx context.Context, userID string, sub *ProviderSubscription) error {
	if sub.CurrentPeriodEnd == nil && s.provider != nil {
		full, err := s.provider.GetSubscription(ctx, sub.ID)
		if err != nil {
			logger.FromContext(ctx).Warn("could not load subscription details",
				"error", err,
				"subscription_id", sub.ID,
			)
		} else {
			sub.CurrentPeriodStart = full.CurrentPeriodStart
			sub.CurrentPeriodEnd = full.CurrentPeriodEnd

			if sub.Status == "" {
				sub.Status = full.Status
			}
		}
	}

	status := sub.Status
	if status == "" {
		status = "active"
	}

	_, err := s.store.Activate(ctx, subscriptions.Activation{
		UserID:              userID,
		CreemSubscriptionID: sub.ID,
		Status:              status,
		CurrentPeriodStart:  sub.CurrentPeriodStart,
		CurrentPeriodEnd:    sub.CurrentPeriodEnd,
	})
	if err != nil {
		return fmt.Errorf("failed to activate subscription %s: %w", sub.ID, err)
	}

	return nil
}

package quota

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/promptfotos/server/internal/logger"
	"codeberg.org/promptfotos/server/internal/metrics"
)

type Gate struct {
	store Store
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// ResolveResolution grants the requested resolution only to authenticated pro users.
// Everyone else gets 512x512 without being told; an empty or unknown request also
// falls back to 512x512.
func ResolveResolution(authenticated bool, requested string, tier Tier) Resolution {
	if !authenticated || tier != TierPro {
		return Resolution512
	}

	resolution, ok := ParseResolution(requested)
	if !ok {
		return Resolution512
	}

	return resolution
}

// Check reports whether the user could generate right now, without mutating anything.
// The quota record the decision was made from is returned with it.
func (g *Gate) Check(ctx context.Context, userID string) (*Subscription, Decision, error) {
	sub, err := g.store.GetQuota(ctx, userID)
	if err != nil {
		return nil, Decision{}, fmt.Errorf("failed to load quota: %w", err)
	}

	return sub, Decision{
		Allowed:   sub.CanGenerate(),
		Remaining: sub.Remaining(),
		Tier:      sub.Tier,
	}, nil
}

// Consume admits one generation. Pro users pass without touching the counter. For free
// users one generation is reserved with a conditional increment at the store, so two
// concurrent requests can never both take the last slot. A rejected request returns
// ErrQuotaExceeded alongside the decision.
func (g *Gate) Consume(ctx context.Context, userID string) (Decision, error) {
	sub, err := g.store.GetQuota(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load quota: %w", err)
	}

	if sub.Tier == TierPro {
		return Decision{Allowed: true, Remaining: Unlimited, Tier: TierPro}, nil
	}

	used, ok, err := g.store.ReserveFreeGeneration(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to reserve generation: %w", err)
	}

	if !ok {
		metrics.QuotaRejections.Inc()
		return Decision{Allowed: false, Remaining: 0, Tier: TierFree}, ErrQuotaExceeded
	}

	remaining := sub.GenerationsLimit - used
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   true,
		Remaining: remaining,
		Tier:      TierFree,
		Reserved:  true,
	}, nil
}

// Refund returns the reservation made by Consume after a failed generation.
func (g *Gate) Refund(ctx context.Context, userID string, decision Decision) error {
	if !decision.Reserved {
		return nil
	}

	if err := g.store.ReleaseFreeGeneration(ctx, userID); err != nil {
		return fmt.Errorf("failed to refund generation: %w", err)
	}

	metrics.QuotaRefunds.Inc()
	return nil
}

// IncrementUsage records a completed generation that was not reserved up front (pro
// accounting). A failed write is logged and reported, never retried: the user still
// receives the image.
func (g *Gate) IncrementUsage(ctx context.Context, userID string) UsageResult {
	count, err := g.store.IncrementGenerations(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to increment generation count",
			"error", err,
			"user_id", userID,
		)

		return UsageResult{Success: false}
	}

	return UsageResult{Success: true, NewCount: count}
}

// Reset zeroes the user's counter (admin action).
func (g *Gate) Reset(ctx context.Context, userID string) error {
	if err := g.store.ResetGenerations(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return err
		}

		return fmt.Errorf("failed to reset generations: %w", err)
	}

	return nil
}

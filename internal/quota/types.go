// package quota decides whether a user may start an image generation and at which
// resolution, and keeps the per-user usage counter.
package quota

import (
	"context"
	"errors"
)

type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// unrecognized stored values count as free
func ParseTier(value string) Tier {
	if Tier(value) == TierPro {
		return TierPro
	}

	return TierFree
}

type Resolution string

const (
	Resolution512  Resolution = "512x512"
	Resolution1024 Resolution = "1024x1024"
)

func ParseResolution(value string) (Resolution, bool) {
	switch Resolution(value) {
	case Resolution512, Resolution1024:
		return Resolution(value), true
	default:
		return "", false
	}
}

func (r Resolution) String() string {
	return string(r)
}

const (
	// free allowance given to every new account
	FreeGenerationsLimit = 2

	// Remaining value reported for pro users
	Unlimited = -1
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrQuotaExceeded = errors.New("free generation limit reached")
)

// read-through projection of the user's persisted quota row
type Subscription struct {
	UserID           string `json:"id"`
	Tier             Tier   `json:"subscriptionStatus"`
	GenerationsUsed  int    `json:"generationsUsed"`
	GenerationsLimit int    `json:"generationsLimit"`
}

// Unlimited for pro, otherwise what is left of the free allowance (never negative)
func (s Subscription) Remaining() int {
	if s.Tier == TierPro {
		return Unlimited
	}

	remaining := s.GenerationsLimit - s.GenerationsUsed
	if remaining < 0 {
		return 0
	}

	return remaining
}

func (s Subscription) CanGenerate() bool {
	return s.Tier == TierPro || s.GenerationsUsed < s.GenerationsLimit
}

// persists the quota counters. implemented by the users repository
type Store interface {
	GetQuota(ctx context.Context, userID string) (*Subscription, error)

	// increments the counter only while it is below the limit; ok=false when the
	// allowance is already spent. must be a single atomic statement
	ReserveFreeGeneration(ctx context.Context, userID string) (used int, ok bool, err error)

	// gives back one reservation, never dropping below zero
	ReleaseFreeGeneration(ctx context.Context, userID string) error

	// unconditional increment, returns the new count
	IncrementGenerations(ctx context.Context, userID string) (int, error)

	ResetGenerations(ctx context.Context, userID string) error
}

// result of Check and Consume
type Decision struct {
	Allowed   bool
	Remaining int
	Tier      Tier

	// a free generation was reserved and must be refunded if the generation fails
	Reserved bool
}

func (d Decision) IsUnlimited() bool {
	return d.Remaining == Unlimited
}

// result of IncrementUsage
type UsageResult struct {
	Success  bool
	NewCount int
}

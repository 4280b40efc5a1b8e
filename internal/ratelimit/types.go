// package ratelimit implements a fixed-window request limiter keyed by client identity.
// the window state lives behind Store so a single instance can keep it in memory while
// a multi-instance deployment shares it through redis.
package ratelimit

import (
	"context"
	"time"
)

const (
	// prefix applied to every client key
	KeyPrefix = "rate_limit:"

	DefaultLimit  = 5
	DefaultWindow = time.Minute
)

// one fixed window for one key
type Record struct {
	Count   int
	ResetAt time.Time
}

// persists window records
type Store interface {
	// counts one request against key, opening a new window of the given length when
	// none exists or the previous one has expired, and returns the updated record
	Increment(ctx context.Context, key string, window time.Duration) (Record, error)

	// returns the live record for key, ok=false when there is none
	Get(ctx context.Context, key string) (Record, bool, error)

	// drops the record for key
	Reset(ctx context.Context, key string) error
}

// outcome of a single Allow call
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// returns how long the caller should wait before the window reopens
func (r Result) RetryAfter(now time.Time) time.Duration {
	if r.ResetAt.Before(now) {
		return 0
	}

	return r.ResetAt.Sub(now)
}

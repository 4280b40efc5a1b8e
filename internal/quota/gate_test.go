package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// in-memory Store with the same conditional-increment semantics as the SQL
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*Subscription

	failIncrement bool
}

func newFakeStore(subs ...Subscription) *fakeStore {
	s := &fakeStore{users: make(map[string]*Subscription)}
	for i := range subs {
		sub := subs[i]
		s.users[sub.UserID] = &sub
	}

	return s
}

func (s *fakeStore) GetQuota(_ context.Context, userID string) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	copied := *sub
	return &copied, nil
}

func (s *fakeStore) ReserveFreeGeneration(_ context.Context, userID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.users[userID]
	if !ok {
		return 0, false, ErrUserNotFound
	}

	if sub.GenerationsUsed >= sub.GenerationsLimit {
		return sub.GenerationsUsed, false, nil
	}

	sub.GenerationsUsed++
	return sub.GenerationsUsed, true, nil
}

func (s *fakeStore) ReleaseFreeGeneration(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.users[userID]; ok && sub.GenerationsUsed > 0 {
		sub.GenerationsUsed--
	}

	return nil
}

func (s *fakeStore) IncrementGenerations(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failIncrement {
		return 0, fmt.Errorf("connection reset by peer")
	}

	sub, ok := s.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}

	sub.GenerationsUsed++
	return sub.GenerationsUsed, nil
}

func (s *fakeStore) ResetGenerations(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}

	sub.GenerationsUsed = 0
	return nil
}

func (s *fakeStore) used(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.users[userID].GenerationsUsed
}

func free(id string, used int) Subscription {
	return Subscription{UserID: id, Tier: TierFree, GenerationsUsed: used, GenerationsLimit: FreeGenerationsLimit}
}

func pro(id string, used int) Subscription {
	return Subscription{UserID: id, Tier: TierPro, GenerationsUsed: used, GenerationsLimit: FreeGenerationsLimit}
}

func TestResolveResolution(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		requested     string
		tier          Tier
		want          Resolution
	}{
		{"anonymous high", false, "1024x1024", TierFree, Resolution512},
		{"anonymous claiming pro", false, "1024x1024", TierPro, Resolution512},
		{"free high", true, "1024x1024", TierFree, Resolution512},
		{"free low", true, "512x512", TierFree, Resolution512},
		{"pro high", true, "1024x1024", TierPro, Resolution1024},
		{"pro low", true, "512x512", TierPro, Resolution512},
		{"pro empty", true, "", TierPro, Resolution512},
		{"pro unknown", true, "4096x4096", TierPro, Resolution512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveResolution(tt.authenticated, tt.requested, tt.tier))
		})
	}
}

func TestConsume_FreeExhausted(t *testing.T) {
	store := newFakeStore(free("u1", 2))
	gate := NewGate(store)

	decision, err := gate.Consume(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, 2, store.used("u1"))
}

func TestConsume_FreeReserves(t *testing.T) {
	store := newFakeStore(free("u1", 0))
	gate := NewGate(store)

	decision, err := gate.Consume(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.True(t, decision.Reserved)
	assert.Equal(t, 1, decision.Remaining)
	assert.Equal(t, 1, store.used("u1"))
}

func TestConsume_ProAlwaysAllowed(t *testing.T) {
	for _, used := range []int{0, 2, 500} {
		store := newFakeStore(pro("p", used))
		gate := NewGate(store)

		decision, err := gate.Consume(context.Background(), "p")
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.True(t, decision.IsUnlimited())
		assert.False(t, decision.Reserved)
		assert.Equal(t, used, store.used("p"), "pro consume must not mutate")
	}
}

func TestConsume_UnknownUser(t *testing.T) {
	gate := NewGate(newFakeStore())

	_, err := gate.Consume(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestConsume_ConcurrentLastSlot(t *testing.T) {
	store := newFakeStore(free("u1", 1))
	gate := NewGate(store)

	var (
		wg      sync.WaitGroup
		allowed [2]bool
	)

	for i := range 2 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			decision, err := gate.Consume(context.Background(), "u1")
			allowed[i] = err == nil && decision.Allowed
		}()
	}

	wg.Wait()

	assert.NotEqual(t, allowed[0], allowed[1], "exactly one request may take the last slot")
	assert.Equal(t, 2, store.used("u1"))
}

func TestRefund(t *testing.T) {
	store := newFakeStore(free("u1", 1))
	gate := NewGate(store)
	ctx := context.Background()

	decision, err := gate.Consume(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, store.used("u1"))

	require.NoError(t, gate.Refund(ctx, "u1", decision))
	assert.Equal(t, 1, store.used("u1"))

	// unreserved decisions are a no-op
	require.NoError(t, gate.Refund(ctx, "u1", Decision{Allowed: true, Remaining: Unlimited}))
	assert.Equal(t, 1, store.used("u1"))
}

func TestCheck_DoesNotMutate(t *testing.T) {
	store := newFakeStore(free("u1", 1), pro("p", 7))
	gate := NewGate(store)
	ctx := context.Background()

	sub, decision, err := gate.Check(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, sub.GenerationsUsed)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
	assert.Equal(t, 1, store.used("u1"))

	_, decision, err = gate.Check(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, Unlimited, decision.Remaining)

	_, _, err = gate.Check(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIncrementUsage(t *testing.T) {
	store := newFakeStore(pro("p", 4))
	gate := NewGate(store)

	result := gate.IncrementUsage(context.Background(), "p")
	assert.True(t, result.Success)
	assert.Equal(t, 5, result.NewCount)

	store.failIncrement = true
	result = gate.IncrementUsage(context.Background(), "p")
	assert.False(t, result.Success)
}

func TestReset(t *testing.T) {
	store := newFakeStore(free("u1", 2))
	gate := NewGate(store)

	require.NoError(t, gate.Reset(context.Background(), "u1"))
	assert.Equal(t, 0, store.used("u1"))

	err := gate.Reset(context.Background(), "ghost")
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestSubscriptionRemaining(t *testing.T) {
	assert.Equal(t, 2, free("a", 0).Remaining())
	assert.Equal(t, 0, free("a", 5).Remaining())
	assert.Equal(t, Unlimited, pro("a", 5).Remaining())
	assert.False(t, free("a", 2).CanGenerate())
	assert.True(t, pro("a", 99).CanGenerate())
	assert.Equal(t, TierFree, ParseTier("enterprise"))
	assert.Equal(t, TierPro, ParseTier("pro"))
}

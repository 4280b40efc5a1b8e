package botdefense

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const trapKeyPrefix = "botdefense:trap:"

type TrapReason string

const (
	ReasonHoneypot   TrapReason = "honeypot"
	ReasonSuspicious TrapReason = "suspicious_path"
)

// remembers trapped IPs until their TTL runs out
type Store interface {
	Trap(ctx context.Context, ip string, reason TrapReason, ttl time.Duration) error
	IsTrapped(ctx context.Context, ip string) (bool, TrapReason, error)
}

// shares traps across instances
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Trap(ctx context.Context, ip string, reason TrapReason, ttl time.Duration) error {
	if err := s.client.Set(ctx, trapKeyPrefix+ip, string(reason), ttl).Err(); err != nil {
		return fmt.Errorf("failed to trap ip: %w", err)
	}

	return nil
}

func (s *RedisStore) IsTrapped(ctx context.Context, ip string) (bool, TrapReason, error) {
	reason, err := s.client.Get(ctx, trapKeyPrefix+ip).Result()
	if errors.Is(err, redis.Nil) {
		return false, "", nil
	}

	if err != nil {
		return false, "", fmt.Errorf("failed to check trap: %w", err)
	}

	return true, TrapReason(reason), nil
}

type memoryTrap struct {
	reason    TrapReason
	expiresAt time.Time
}

// single-instance fallback when redis is not configured. expired traps are swept
// periodically so IPs that never return do not pile up.
type MemoryStore struct {
	mu     sync.Mutex
	traps  map[string]memoryTrap
	now    func() time.Time
	done   chan struct{}
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return newMemoryStore(time.Now, 10*time.Minute)
}

func newMemoryStore(now func() time.Time, cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		traps: make(map[string]memoryTrap),
		now:   now,
		done:  make(chan struct{}),
	}

	go store.cleanupLoop(cleanupInterval)

	return store
}

func (s *MemoryStore) Trap(_ context.Context, ip string, reason TrapReason, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.traps[ip] = memoryTrap{reason: reason, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) IsTrapped(_ context.Context, ip string) (bool, TrapReason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trap, ok := s.traps[ip]
	if !ok {
		return false, "", nil
	}

	if !s.now().Before(trap.expiresAt) {
		delete(s.traps, ip)
		return false, "", nil
	}

	return true, trap.reason, nil
}

// number of traps held, expired or not
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.traps)
}

// stops the janitor goroutine
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.done)
	return nil
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for ip, trap := range s.traps {
		if !now.Before(trap.expiresAt) {
			delete(s.traps, ip)
		}
	}
}

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps windows in a process-local map. Each instance of the server
// enforces its own windows, so the effective global limit is limit × instances.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// creates an in-memory store and starts its janitor
func NewMemoryStore() *MemoryStore {
	return newMemoryStore(time.Now, 5*time.Minute)
}

func newMemoryStore(now func() time.Time, cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		records: make(map[string]Record),
		now:     now,
		done:    make(chan struct{}),
	}

	go store.cleanupLoop(cleanupInterval)

	return store
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	record, exists := s.records[key]
	if !exists || now.After(record.ResetAt) {
		record = Record{ResetAt: now.Add(window)}
	}

	record.Count++
	s.records[key] = record

	return record, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[key]
	if !exists || s.now().After(record.ResetAt) {
		return Record{}, false, nil
	}

	return record, true, nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// number of tracked keys, expired ones included until the janitor runs
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
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
	for key, record := range s.records {
		if now.After(record.ResetAt) {
			delete(s.records, key)
		}
	}
}

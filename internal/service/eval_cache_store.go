package service

import (
	"context"
	"sync"
	"time"
)

// EvaluationCacheStore caches serialized batch-evaluation payloads. Any flag
// mutation affects every user's results, so invalidation is all-or-nothing.
type EvaluationCacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

type NoopEvaluationCacheStore struct{}

func NewNoopEvaluationCacheStore() *NoopEvaluationCacheStore {
	return &NoopEvaluationCacheStore{}
}

func (s *NoopEvaluationCacheStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopEvaluationCacheStore) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopEvaluationCacheStore) InvalidateAll(context.Context) error { return nil }

type evalCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemoryEvaluationCacheStore struct {
	mu      sync.RWMutex
	entries map[string]evalCacheEntry
}

func NewInMemoryEvaluationCacheStore() *InMemoryEvaluationCacheStore {
	return &InMemoryEvaluationCacheStore{entries: map[string]evalCacheEntry{}}
}

func (s *InMemoryEvaluationCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemoryEvaluationCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[key] = evalCacheEntry{payload: append([]byte(nil), value...), expiresAt: time.Now().UTC().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *InMemoryEvaluationCacheStore) InvalidateAll(context.Context) error {
	s.mu.Lock()
	s.entries = map[string]evalCacheEntry{}
	s.mu.Unlock()
	return nil
}

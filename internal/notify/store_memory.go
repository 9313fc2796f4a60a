package notify

import (
	"context"
	"sync"
	"time"
)

type userBucket struct {
	notifications []Notification
	lastCheck     time.Time
}

// NewInMemoryStore returns a Store backed by an in-memory map.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{buckets: make(map[string]userBucket)}
}

// InMemoryStore implements Store for tests and ephemeral deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]userBucket
}

// Load returns the user's notification list and last-check time.
func (s *InMemoryStore) Load(_ context.Context, email string) ([]Notification, time.Time, error) {
	s.mu.RLock()
	bucket := s.buckets[email]
	s.mu.RUnlock()
	return bucket.notifications, bucket.lastCheck, nil
}

// Save replaces the user's notification list and last-check time.
func (s *InMemoryStore) Save(_ context.Context, email string, notifications []Notification, lastCheck time.Time) error {
	s.mu.Lock()
	s.buckets[email] = userBucket{notifications: notifications, lastCheck: lastCheck}
	s.mu.Unlock()
	return nil
}

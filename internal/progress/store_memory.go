package progress

import (
	"context"
	"fmt"
	"sync"
)

// NewInMemoryStore returns a Store backed by an in-memory map.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]Entry)}
}

// InMemoryStore implements Store for tests and ephemeral deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func entryKey(contentID, episodeID int) string {
	return fmt.Sprintf("%d/%d", contentID, episodeID)
}

// Put stores or replaces the entry for its key.
func (s *InMemoryStore) Put(_ context.Context, entry Entry) error {
	s.mu.Lock()
	s.entries[entryKey(entry.ContentID, entry.EpisodeID)] = entry
	s.mu.Unlock()
	return nil
}

// Get retrieves the entry for the key.
func (s *InMemoryStore) Get(_ context.Context, contentID, episodeID int) (Entry, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[entryKey(contentID, episodeID)]
	s.mu.RUnlock()
	return entry, ok, nil
}

// Delete removes the entry for the key.
func (s *InMemoryStore) Delete(_ context.Context, contentID, episodeID int) error {
	s.mu.Lock()
	delete(s.entries, entryKey(contentID, episodeID))
	s.mu.Unlock()
	return nil
}

// List returns all stored entries in unspecified order.
func (s *InMemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	return out, nil
}

// Package progress implements the local playback-progress cache behind the
// resume and continue-watching features. Entries are keyed by content plus
// optional episode, live only on this node, and are never synced to the
// remote store.
package progress

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// Entry records the most recent playback position for one asset, along with
// the denormalized display fields the continue-watching rail needs.
type Entry struct {
	ContentID   int       `json:"contentId"`
	EpisodeID   int       `json:"episodeId,omitempty"`
	Progress    float64   `json:"progress"`
	CurrentTime float64   `json:"currentTime"`
	Duration    float64   `json:"duration"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `json:"name"`
	Cover       string    `json:"cover"`
	ContentType string    `json:"contentType"`
	Season      int       `json:"season,omitempty"`
	Episode     int       `json:"episode,omitempty"`
}

// Store persists entries keyed by (content, episode).
type Store interface {
	Put(ctx context.Context, entry Entry) error
	Get(ctx context.Context, contentID, episodeID int) (Entry, bool, error)
	Delete(ctx context.Context, contentID, episodeID int) error
	List(ctx context.Context) ([]Entry, error)
}

// CompletionThreshold is the progress percentage at or above which an entry
// no longer appears in the continue-watching listing.
const CompletionThreshold = 95.0

// Cache is the playback progress cache. Store failures degrade to no-ops:
// resume and continue-watching disappear, playback is never blocked.
type Cache struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewCache constructs a cache over the provided store.
func NewCache(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the time source. Tests only.
func (c *Cache) WithNowFunc(now func() time.Time) {
	c.now = now
}

// Save upserts the entry for its (content, episode) key, stamping the update
// time. Safe to call redundantly; the player invokes it on a fixed interval
// and once more on teardown.
func (c *Cache) Save(ctx context.Context, entry Entry) {
	entry.UpdatedAt = c.now()
	if err := c.store.Put(ctx, entry); err != nil {
		c.logger.Warn("progress save failed", "contentId", entry.ContentID, "error", err)
	}
}

// Get returns the entry for the key, if any.
func (c *Cache) Get(ctx context.Context, contentID, episodeID int) (Entry, bool) {
	entry, ok, err := c.store.Get(ctx, contentID, episodeID)
	if err != nil {
		c.logger.Warn("progress lookup failed", "contentId", contentID, "error", err)
		return Entry{}, false
	}
	return entry, ok
}

// Remove deletes the entry for the key. Called when playback reaches the
// natural end of the media.
func (c *Cache) Remove(ctx context.Context, contentID, episodeID int) {
	if err := c.store.Delete(ctx, contentID, episodeID); err != nil {
		c.logger.Warn("progress delete failed", "contentId", contentID, "error", err)
	}
}

// ContinueWatching lists unfinished entries, newest first. Entries at or past
// the completion threshold are filtered out; callers truncate for display.
func (c *Cache) ContinueWatching(ctx context.Context) []Entry {
	entries, err := c.store.List(ctx)
	if err != nil {
		c.logger.Warn("progress listing failed", "error", err)
		return []Entry{}
	}

	unfinished := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Progress >= CompletionThreshold {
			continue
		}
		unfinished = append(unfinished, entry)
	}

	sort.Slice(unfinished, func(i, j int) bool {
		return unfinished[i].UpdatedAt.After(unfinished[j].UpdatedAt)
	})
	return unfinished
}

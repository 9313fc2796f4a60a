// Package notify derives new-episode notifications from a user's watch
// history. A series row's edit timestamp moving past the user's last check
// means new episodes landed since the user last looked.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streamtv/backend/internal/models"
)

// maxNotifications caps the per-user list, newest first.
const maxNotifications = 20

// Notification is one unread/read item in a user's bell.
type Notification struct {
	ID          string `json:"id"`
	ContentID   int    `json:"contentId"`
	ContentName string `json:"contentName"`
	Message     string `json:"message"`
	Date        string `json:"date"`
	Read        bool   `json:"read"`
}

// Store persists each user's notification list and last-check time locally.
type Store interface {
	Load(ctx context.Context, email string) ([]Notification, time.Time, error)
	Save(ctx context.Context, email string, notifications []Notification, lastCheck time.Time) error
}

// HistoryLister is the slice of the content catalog the service needs.
type HistoryLister interface {
	History(ctx context.Context, email string) ([]models.Content, error)
}

// Service maintains per-user notification lists.
type Service struct {
	contents HistoryLister
	store    Store
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a notification service.
func NewService(contents HistoryLister, store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		contents: contents,
		store:    store,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the time source. Tests only.
func (s *Service) WithNowFunc(now func() time.Time) {
	s.now = now
}

// Refresh checks the user's watched series for edits newer than the last
// check and returns the updated list, newest first. Remote failures degrade
// to the stored list; notifications are best effort.
func (s *Service) Refresh(ctx context.Context, email string) []Notification {
	existing, lastCheck, err := s.store.Load(ctx, email)
	if err != nil {
		s.logger.Warn("notification load failed", "error", err)
		existing, lastCheck = nil, time.Time{}
	}

	history, err := s.contents.History(ctx, email)
	if err != nil {
		s.logger.Warn("notification history fetch failed", "error", err)
		return existing
	}

	var fresh []Notification
	for _, content := range history {
		if content.Type != models.TypeSeries || content.Edited == "" {
			continue
		}
		edited, err := time.Parse(time.RFC3339, content.Edited)
		if err != nil {
			continue
		}
		if !edited.After(lastCheck) {
			continue
		}
		id := fmt.Sprintf("%d-%s", content.ID, content.Edited)
		if hasNotification(existing, id) {
			continue
		}
		fresh = append(fresh, Notification{
			ID:          id,
			ContentID:   content.ID,
			ContentName: content.Name,
			Message:     fmt.Sprintf("New episode of %q available", content.Name),
			Date:        content.Edited,
		})
	}

	updated := existing
	if len(fresh) > 0 {
		updated = append(fresh, existing...)
		if len(updated) > maxNotifications {
			updated = updated[:maxNotifications]
		}
	}

	if err := s.store.Save(ctx, email, updated, s.now()); err != nil {
		s.logger.Warn("notification save failed", "error", err)
	}
	return updated
}

// MarkRead flags one notification as read.
func (s *Service) MarkRead(ctx context.Context, email, id string) []Notification {
	return s.mark(ctx, email, func(n Notification) bool { return n.ID == id })
}

// MarkAllRead flags every notification as read.
func (s *Service) MarkAllRead(ctx context.Context, email string) []Notification {
	return s.mark(ctx, email, func(Notification) bool { return true })
}

func (s *Service) mark(ctx context.Context, email string, match func(Notification) bool) []Notification {
	notifications, lastCheck, err := s.store.Load(ctx, email)
	if err != nil {
		s.logger.Warn("notification load failed", "error", err)
		return nil
	}
	for i, n := range notifications {
		if match(n) {
			notifications[i].Read = true
		}
	}
	if err := s.store.Save(ctx, email, notifications, lastCheck); err != nil {
		s.logger.Warn("notification save failed", "error", err)
	}
	return notifications
}

func hasNotification(notifications []Notification, id string) bool {
	for _, n := range notifications {
		if n.ID == id {
			return true
		}
	}
	return false
}

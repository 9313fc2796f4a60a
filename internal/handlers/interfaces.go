package handlers

import (
	"context"

	"github.com/streamtv/backend/internal/auth"
	"github.com/streamtv/backend/internal/device"
	"github.com/streamtv/backend/internal/models"
	"github.com/streamtv/backend/internal/notify"
	"github.com/streamtv/backend/internal/progress"
)

// SessionManager gates access to the application: login, logout, session
// resolution and the remote entitlement recheck.
type SessionManager interface {
	Login(ctx context.Context, email, password string, dev device.Descriptor) (auth.Session, error)
	Logout(ctx context.Context, token string) error
	Current(ctx context.Context, token string) (auth.Session, error)
	Recheck(ctx context.Context, token string) (auth.Session, error)
	RemoveDevice(ctx context.Context, token, fingerprint string) (auth.Session, error)
}

// ContentCatalog captures the content-table operations required by the HTTP
// handlers.
type ContentCatalog interface {
	All(ctx context.Context, orderBy string) ([]models.Content, error)
	Recent(ctx context.Context, limit int) ([]models.Content, error)
	RecentByType(ctx context.Context, contentType string, limit int) ([]models.Content, error)
	MostWatched(ctx context.Context, limit int) ([]models.Content, error)
	ByCategory(ctx context.Context, category string) ([]models.Content, error)
	ByType(ctx context.Context, contentType string) ([]models.Content, error)
	Search(ctx context.Context, query, orderBy string) ([]models.Content, error)
	ByID(ctx context.Context, id int) (models.Content, error)
	IncrementViews(ctx context.Context, id, currentViews int) error
	AddFavorite(ctx context.Context, id int, currentCell, email string) error
	RemoveFavorite(ctx context.Context, id int, currentCell, email string) error
	Favorites(ctx context.Context, email string) ([]models.Content, error)
	AddHistory(ctx context.Context, id int, currentCell, email string) error
	History(ctx context.Context, email string) ([]models.Content, error)
}

// EpisodeCatalog lists episodes for one season of a series.
type EpisodeCatalog interface {
	BySeriesAndSeason(ctx context.Context, name string, season int) ([]models.Episode, error)
}

// BannerCatalog lists the home-page banners.
type BannerCatalog interface {
	All(ctx context.Context) ([]models.Banner, error)
}

// CategoryCatalog lists the browsing categories.
type CategoryCatalog interface {
	All(ctx context.Context) ([]models.Category, error)
}

// ProgressCache is the local playback-progress cache surface.
type ProgressCache interface {
	Save(ctx context.Context, entry progress.Entry)
	Get(ctx context.Context, contentID, episodeID int) (progress.Entry, bool)
	Remove(ctx context.Context, contentID, episodeID int)
	ContinueWatching(ctx context.Context) []progress.Entry
}

// NotificationService maintains per-user new-episode notifications.
type NotificationService interface {
	Refresh(ctx context.Context, email string) []notify.Notification
	MarkRead(ctx context.Context, email, id string) []notify.Notification
	MarkAllRead(ctx context.Context, email string) []notify.Notification
}

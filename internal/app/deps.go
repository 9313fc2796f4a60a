package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/streamtv/backend/internal/access"
	"github.com/streamtv/backend/internal/auth"
	"github.com/streamtv/backend/internal/baserow"
	"github.com/streamtv/backend/internal/config"
	"github.com/streamtv/backend/internal/handlers"
	"github.com/streamtv/backend/internal/middleware"
	"github.com/streamtv/backend/internal/notify"
	"github.com/streamtv/backend/internal/progress"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers, plus the maintenance checker the middleware consults.
func buildDependencies(db *badger.DB, cfg config.Config) (handlers.Dependencies, access.Checker) {
	client := baserow.NewClient(cfg.BaserowURL, cfg.BaserowToken, baserow.Tables{
		Contents:   cfg.ContentsTable,
		Episodes:   cfg.EpisodesTable,
		Banners:    cfg.BannersTable,
		Users:      cfg.UsersTable,
		Categories: cfg.CategoriesTable,
	}, nil)

	contents := client.Contents()

	checker := access.NewCachedChecker(
		access.NewClient(cfg.AccessCheckURL, cfg.AccessUUID, nil),
		cfg.AccessCacheTTL,
	)

	deps := handlers.Dependencies{
		Sessions:      auth.NewManager(client.Users(), auth.NewBadgerSessionStore(db)),
		Contents:      contents,
		Episodes:      client.Episodes(),
		Banners:       client.Banners(),
		Categories:    client.Categories(),
		Progress:      progress.NewCache(progress.NewBadgerStore(db), slog.Default()),
		Notifications: notify.NewService(contents, notify.NewBadgerStore(db), slog.Default()),
		// No client timeout: relayed media downloads legitimately run for
		// the length of the video.
		RelayClient:  &http.Client{},
		RelayLimiter: middleware.NewIPRateLimiter(cfg.RelayRatePerMin, time.Minute, cfg.RelayBurst, 5*time.Minute),
	}
	return deps, checker
}

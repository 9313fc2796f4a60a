package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/streamtv/backend/internal/logging"
	"github.com/streamtv/backend/internal/models"
	"github.com/streamtv/backend/internal/notify"
	"github.com/streamtv/backend/internal/progress"
)

// HomeHandler aggregates the home surface in one round trip.
type HomeHandler struct {
	Contents      ContentCatalog
	Banners       BannerCatalog
	Categories    CategoryCatalog
	Progress      ProgressCache
	Notifications NotificationService
}

type homeResponse struct {
	Banners          []models.Banner       `json:"banners"`
	Recent           []models.Content      `json:"recent"`
	Popular          []models.Content      `json:"popular"`
	Favorites        []models.Content      `json:"favorites"`
	Categories       []models.Category     `json:"categories"`
	ContinueWatching []progress.Entry      `json:"continueWatching"`
	Notifications    []notify.Notification `json:"notifications"`
}

// Handle implements GET /api/v1/home. The remote listings are fetched
// concurrently; the continue-watching rail and notifications come from local
// stores and never fail the response.
func (h HomeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	session, ok := sessionFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var resp homeResponse
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		resp.Banners, err = h.Banners.All(gctx)
		return err
	})
	g.Go(func() (err error) {
		resp.Recent, err = h.Contents.Recent(gctx, 10)
		return err
	})
	g.Go(func() (err error) {
		resp.Popular, err = h.Contents.MostWatched(gctx, 10)
		return err
	})
	g.Go(func() (err error) {
		resp.Favorites, err = h.Contents.Favorites(gctx, session.Account.Email)
		return err
	})
	g.Go(func() (err error) {
		resp.Categories, err = h.Categories.All(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		logging.FromContext(ctx).Error("home aggregation failed", "error", err)
		respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "content service unavailable"})
		return
	}

	resp.ContinueWatching = h.Progress.ContinueWatching(ctx)
	resp.Notifications = h.Notifications.Refresh(ctx, session.Account.Email)

	respondJSON(ctx, w, http.StatusOK, resp)
}

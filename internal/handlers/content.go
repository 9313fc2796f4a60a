package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/streamtv/backend/internal/baserow"
	"github.com/streamtv/backend/internal/logging"
	"github.com/streamtv/backend/internal/models"
)

// ContentHandler serves the catalog: listings, details, views, favorites and
// watch history. All data lives in the remote store; this layer only
// orchestrates.
type ContentHandler struct {
	Contents   ContentCatalog
	Episodes   EpisodeCatalog
	Banners    BannerCatalog
	Categories CategoryCatalog
}

// List handles GET /api/v1/contents. Query parameters select the listing:
// q (search), category, type, order, limit.
func (h ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	query := r.URL.Query()
	limit := parseLimit(query.Get("limit"), 20)

	var (
		contents []models.Content
		err      error
	)
	switch {
	case query.Get("q") != "":
		contents, err = h.Contents.Search(ctx, query.Get("q"), query.Get("order"))
	case query.Get("category") != "":
		contents, err = h.Contents.ByCategory(ctx, query.Get("category"))
	case query.Get("type") != "" && query.Has("limit"):
		contents, err = h.Contents.RecentByType(ctx, query.Get("type"), limit)
	case query.Get("type") != "":
		contents, err = h.Contents.ByType(ctx, query.Get("type"))
	case query.Get("order") == "-Views":
		contents, err = h.Contents.MostWatched(ctx, limit)
	case query.Has("limit"):
		contents, err = h.Contents.Recent(ctx, limit)
	default:
		contents, err = h.Contents.All(ctx, query.Get("order"))
	}
	if err != nil {
		h.respondCatalogError(w, r, err, "list contents")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"contents": contents})
}

// Detail handles /api/v1/contents/{id} and its sub-actions:
//
//	GET    /api/v1/contents/{id}           content row
//	POST   /api/v1/contents/{id}/views     bump view counter
//	POST   /api/v1/contents/{id}/favorite  add to favorites
//	DELETE /api/v1/contents/{id}/favorite  remove from favorites
//	POST   /api/v1/contents/{id}/history   record in watch history
func (h ContentHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/contents/")
	idPart, action, _ := strings.Cut(rest, "/")
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid content id"})
		return
	}

	switch action {
	case "":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		content, err := h.Contents.ByID(ctx, id)
		if err != nil {
			h.respondCatalogError(w, r, err, "load content")
			return
		}
		respondJSON(ctx, w, http.StatusOK, content)
	case "views":
		h.views(w, r, id)
	case "favorite":
		h.favorite(w, r, id)
	case "history":
		h.history(w, r, id)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h ContentHandler) views(w http.ResponseWriter, r *http.Request, id int) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	content, err := h.Contents.ByID(ctx, id)
	if err != nil {
		h.respondCatalogError(w, r, err, "load content for view count")
		return
	}
	if err := h.Contents.IncrementViews(ctx, id, content.Views); err != nil {
		h.respondCatalogError(w, r, err, "increment views")
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]int{"views": content.Views + 1})
}

func (h ContentHandler) favorite(w http.ResponseWriter, r *http.Request, id int) {
	ctx := r.Context()
	session, ok := sessionFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	content, err := h.Contents.ByID(ctx, id)
	if err != nil {
		h.respondCatalogError(w, r, err, "load content for favorite")
		return
	}

	email := session.Account.Email
	switch r.Method {
	case http.MethodPost:
		err = h.Contents.AddFavorite(ctx, id, content.Favorites, email)
	case http.MethodDelete:
		err = h.Contents.RemoveFavorite(ctx, id, content.Favorites, email)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		h.respondCatalogError(w, r, err, "update favorite")
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]bool{
		"favorite": r.Method == http.MethodPost,
	})
}

func (h ContentHandler) history(w http.ResponseWriter, r *http.Request, id int) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	session, ok := sessionFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	content, err := h.Contents.ByID(ctx, id)
	if err != nil {
		h.respondCatalogError(w, r, err, "load content for history")
		return
	}
	if err := h.Contents.AddHistory(ctx, id, content.History, session.Account.Email); err != nil {
		h.respondCatalogError(w, r, err, "record history")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Favorites handles GET /api/v1/favorites.
func (h ContentHandler) Favorites(w http.ResponseWriter, r *http.Request) {
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

	contents, err := h.Contents.Favorites(ctx, session.Account.Email)
	if err != nil {
		h.respondCatalogError(w, r, err, "list favorites")
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"contents": contents})
}

// EpisodeList handles GET /api/v1/episodes?name=&season=.
func (h ContentHandler) EpisodeList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	name := r.URL.Query().Get("name")
	if name == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "series name is required"})
		return
	}
	season, err := strconv.Atoi(r.URL.Query().Get("season"))
	if err != nil || season <= 0 {
		season = 1
	}

	episodes, err := h.Episodes.BySeriesAndSeason(ctx, name, season)
	if err != nil {
		h.respondCatalogError(w, r, err, "list episodes")
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]any{"episodes": episodes})
}

// BannerList handles GET /api/v1/banners.
func (h ContentHandler) BannerList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	banners, err := h.Banners.All(r.Context())
	if err != nil {
		h.respondCatalogError(w, r, err, "list banners")
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"banners": banners})
}

// CategoryList handles GET /api/v1/categories.
func (h ContentHandler) CategoryList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	categories, err := h.Categories.All(r.Context())
	if err != nil {
		h.respondCatalogError(w, r, err, "list categories")
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"categories": categories})
}

func (h ContentHandler) respondCatalogError(w http.ResponseWriter, r *http.Request, err error, op string) {
	ctx := r.Context()
	if errors.Is(err, baserow.ErrNotFound) {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	logging.FromContext(ctx).Error(op+" failed", "error", err)
	respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "content service unavailable"})
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 100 {
		return fallback
	}
	return limit
}

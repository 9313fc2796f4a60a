package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/streamtv/backend/internal/logging"
	"github.com/streamtv/backend/internal/progress"
)

// ProgressHandler exposes the local playback-progress cache. The player
// calls Save on a fixed interval and once more on teardown; Remove fires
// when playback reaches the natural end of the media.
type ProgressHandler struct {
	Progress ProgressCache
}

// Handle implements /api/v1/progress: PUT saves, GET fetches, DELETE removes.
func (h ProgressHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.save(w, r)
	case http.MethodGet:
		h.get(w, r)
	case http.MethodDelete:
		h.remove(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h ProgressHandler) save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var entry progress.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		logging.FromContext(ctx).Warn("invalid progress payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if entry.ContentID <= 0 {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "contentId is required"})
		return
	}

	h.Progress.Save(ctx, entry)
	w.WriteHeader(http.StatusNoContent)
}

func (h ProgressHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contentID, episodeID, ok := progressKeyFromQuery(r)
	if !ok {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "contentId is required"})
		return
	}

	entry, found := h.Progress.Get(ctx, contentID, episodeID)
	if !found {
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "no progress recorded"})
		return
	}
	respondJSON(ctx, w, http.StatusOK, entry)
}

func (h ProgressHandler) remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contentID, episodeID, ok := progressKeyFromQuery(r)
	if !ok {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "contentId is required"})
		return
	}

	h.Progress.Remove(ctx, contentID, episodeID)
	w.WriteHeader(http.StatusNoContent)
}

// Continue implements GET /api/v1/progress/continue: unfinished entries,
// newest first. Display truncation is the caller's concern.
func (h ProgressHandler) Continue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{
		"continueWatching": h.Progress.ContinueWatching(r.Context()),
	})
}

func progressKeyFromQuery(r *http.Request) (contentID, episodeID int, ok bool) {
	contentID, err := strconv.Atoi(r.URL.Query().Get("contentId"))
	if err != nil || contentID <= 0 {
		return 0, 0, false
	}
	if raw := r.URL.Query().Get("episodeId"); raw != "" {
		episodeID, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, false
		}
	}
	return contentID, episodeID, true
}

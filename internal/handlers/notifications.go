package handlers

import (
	"encoding/json"
	"net/http"
)

// NotificationHandler serves the per-user new-episode notifications.
type NotificationHandler struct {
	Notifications NotificationService
}

// List implements GET /api/v1/notifications: refreshes against the user's
// watch history and returns the current list.
func (h NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
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

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"notifications": h.Notifications.Refresh(ctx, session.Account.Email),
	})
}

type markReadRequest struct {
	ID  string `json:"id"`
	All bool   `json:"all"`
}

// MarkRead implements POST /api/v1/notifications/read.
func (h NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
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

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	email := session.Account.Email
	switch {
	case req.All:
		respondJSON(ctx, w, http.StatusOK, map[string]any{"notifications": h.Notifications.MarkAllRead(ctx, email)})
	case req.ID != "":
		respondJSON(ctx, w, http.StatusOK, map[string]any{"notifications": h.Notifications.MarkRead(ctx, email, req.ID)})
	default:
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "id or all is required"})
	}
}

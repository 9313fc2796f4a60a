package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/streamtv/backend/internal/auth"
	"github.com/streamtv/backend/internal/device"
)

type sessionCtxKey struct{}

// bearerToken extracts the opaque session token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// deviceFromRequest derives the calling device's descriptor from request
// headers, mirroring what a browser shell reports about itself.
func deviceFromRequest(r *http.Request) device.Descriptor {
	return device.Current(r.Header.Get("X-Device-Platform"), r.UserAgent())
}

// withSession resolves the caller's session before running next, responding
// 401 when the token is absent or unknown. The session rides on the context.
func withSession(sessions SessionManager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session, err := sessions.Current(ctx, bearerToken(r))
		if err != nil {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		ctx = context.WithValue(ctx, sessionCtxKey{}, session)
		next(w, r.WithContext(ctx))
	}
}

// sessionFromContext returns the session stored by withSession.
func sessionFromContext(ctx context.Context) (auth.Session, bool) {
	session, ok := ctx.Value(sessionCtxKey{}).(auth.Session)
	return session, ok
}

package handlers

import (
	"net/http"

	"github.com/streamtv/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux. Endpoints
// that operate on behalf of a signed-in user are wrapped with withSession.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	authh := AuthHandler{Sessions: deps.Sessions}
	content := ContentHandler{
		Contents:   deps.Contents,
		Episodes:   deps.Episodes,
		Banners:    deps.Banners,
		Categories: deps.Categories,
	}
	home := HomeHandler{
		Contents:      deps.Contents,
		Banners:       deps.Banners,
		Categories:    deps.Categories,
		Progress:      deps.Progress,
		Notifications: deps.Notifications,
	}
	prog := ProgressHandler{Progress: deps.Progress}
	notif := NotificationHandler{Notifications: deps.Notifications}
	relay := RelayHandler{Client: deps.RelayClient, Limiter: deps.RelayLimiter}

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return withSession(deps.Sessions, next)
	}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/auth/login", authh.Login)
	mux.HandleFunc("/api/v1/auth/logout", authh.Logout)
	mux.HandleFunc("/api/v1/auth/session", authh.Session)
	mux.HandleFunc("/api/v1/auth/devices", authh.Devices)

	mux.HandleFunc("/api/v1/home", authed(home.Handle))
	mux.HandleFunc("/api/v1/contents", authed(content.List))
	mux.HandleFunc("/api/v1/contents/", authed(content.Detail))
	mux.HandleFunc("/api/v1/favorites", authed(content.Favorites))
	mux.HandleFunc("/api/v1/episodes", authed(content.EpisodeList))
	mux.HandleFunc("/api/v1/banners", authed(content.BannerList))
	mux.HandleFunc("/api/v1/categories", authed(content.CategoryList))
	mux.HandleFunc("/api/v1/progress", authed(prog.Handle))
	mux.HandleFunc("/api/v1/progress/continue", authed(prog.Continue))
	mux.HandleFunc("/api/v1/notifications", authed(notif.List))
	mux.HandleFunc("/api/v1/notifications/read", authed(notif.MarkRead))

	mux.HandleFunc("/api/v1/relay", relay.Handle)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Sessions      SessionManager
	Contents      ContentCatalog
	Episodes      EpisodeCatalog
	Banners       BannerCatalog
	Categories    CategoryCatalog
	Progress      ProgressCache
	Notifications NotificationService
	RelayClient   Doer
	RelayLimiter  middleware.RateLimiter
}

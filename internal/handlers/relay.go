package handlers

import (
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/streamtv/backend/internal/logging"
	"github.com/streamtv/backend/internal/middleware"
)

// Doer abstracts the HTTP client used to reach origin servers so tests can
// substitute a transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RelayHandler streams media from an origin URL through the service so the
// player never talks to the origin directly. Only the headers a video player
// needs are forwarded in either direction.
type RelayHandler struct {
	Client  Doer
	Limiter middleware.RateLimiter
}

// relayResponseHeaders are copied from the origin response when present.
var relayResponseHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Accept-Ranges",
	"Content-Range",
}

// Handle implements GET /api/v1/relay?u=<origin-url>.
func (h RelayHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Limiter != nil && !h.Limiter.Allow(clientIP(r)) {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	raw := r.URL.Query().Get("u")
	if raw == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "u is required"})
		return
	}
	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") || target.Host == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid origin url"})
		return
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target.String(), nil)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid origin url"})
		return
	}
	// Range is the only request header the origin needs for seeking.
	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		logger.Error("relay origin request failed", "host", target.Host, "error", err)
		respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "origin unavailable"})
		return
	}
	defer resp.Body.Close()

	for _, header := range relayResponseHeaders {
		if value := resp.Header.Get(header); value != "" {
			w.Header().Set(header, value)
		}
	}
	w.WriteHeader(resp.StatusCode)

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		// The player seeking or closing the tab lands here; not actionable.
		logger.Debug("relay stream interrupted", "host", target.Host, "error", err)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

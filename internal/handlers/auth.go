package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/streamtv/backend/internal/auth"
	"github.com/streamtv/backend/internal/device"
	"github.com/streamtv/backend/internal/logging"
	"github.com/streamtv/backend/internal/models"
)

// AuthHandler implements the login, logout and session-recheck endpoints.
type AuthHandler struct {
	Sessions SessionManager
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// accountView is the account snapshot exposed to clients. The stored
// password never leaves the service; the raw device cell is decoded for
// display.
type accountView struct {
	ID          int                 `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	PlanDays    int                 `json:"planDays"`
	DeviceLimit int                 `json:"deviceLimit"`
	Remaining   string              `json:"remaining"`
	Devices     []device.Descriptor `json:"devices"`
}

func viewOf(account models.Account) accountView {
	return accountView{
		ID:          account.ID,
		Name:        account.Name,
		Email:       account.Email,
		PlanDays:    account.PlanDays,
		DeviceLimit: account.DeviceLimit,
		Remaining:   account.Remaining,
		Devices:     device.Decode(account.Devices),
	}
}

type loginResponse struct {
	Token   string      `json:"token"`
	Account accountView `json:"account"`
}

// Login handles POST /api/v1/auth/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	// The directory lookup is an exact-match equality filter; only trim,
	// never change case.
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		logger.Warn("login missing credentials", "email", req.Email)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	session, err := h.Sessions.Login(ctx, req.Email, req.Password, deviceFromRequest(r))
	if err != nil {
		var limitErr *auth.DeviceLimitError
		switch {
		case errors.Is(err, auth.ErrNotFound):
			logger.Warn("login unknown email", "email", req.Email)
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "email not found"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			logger.Warn("login password mismatch", "email", req.Email)
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		case errors.As(err, &limitErr):
			logger.Warn("login device limit reached", "email", req.Email, "limit", limitErr.Limit)
			respondJSON(ctx, w, http.StatusForbidden, map[string]any{
				"error": "device limit reached, remove a device to continue",
				"limit": limitErr.Limit,
			})
		case errors.Is(err, auth.ErrRemoteUnavailable):
			logger.Error("login remote lookup failed", "error", err)
			respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "account service unavailable"})
		default:
			logger.Error("login failed", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to log in"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, loginResponse{Token: session.Token, Account: viewOf(session.Account)})
}

// Logout handles POST /api/v1/auth/logout requests.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	_ = h.Sessions.Logout(r.Context(), bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

// Devices implements /api/v1/auth/devices: GET lists the account's registered
// devices, DELETE removes one by fingerprint so a blocked account can free a
// slot under its device limit.
func (h AuthHandler) Devices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listDevices(w, r)
	case http.MethodDelete:
		h.removeDevice(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h AuthHandler) listDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.Sessions.Current(ctx, bearerToken(r))
	if err != nil {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"devices": device.Decode(session.Account.Devices),
		"current": session.Device,
	})
}

func (h AuthHandler) removeDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	fingerprint := r.URL.Query().Get("fingerprint")
	if fingerprint == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "fingerprint is required"})
		return
	}

	session, err := h.Sessions.RemoveDevice(ctx, bearerToken(r), fingerprint)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSessionNotFound):
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		case errors.Is(err, auth.ErrDeviceNotRegistered):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "device not registered"})
		case errors.Is(err, auth.ErrCurrentDevice):
			logger.Warn("refused to remove the session's own device")
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "cannot remove the current device"})
		case errors.Is(err, auth.ErrRemoteUnavailable):
			logger.Error("device removal remote update failed", "error", err)
			respondJSON(ctx, w, http.StatusBadGateway, map[string]string{"error": "account service unavailable"})
		default:
			logger.Error("device removal failed", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to remove device"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"devices": device.Decode(session.Account.Devices),
	})
}

type sessionResponse struct {
	Account            accountView `json:"account"`
	SubscriptionActive bool        `json:"subscriptionActive"`
	DeviceConnected    bool        `json:"deviceConnected"`
}

// Session handles GET /api/v1/auth/session requests: it refreshes the
// account snapshot from the remote directory and re-evaluates the
// entitlement and device gates. Any failure invalidates the session.
func (h AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	session, err := h.Sessions.Recheck(ctx, bearerToken(r))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSessionNotFound):
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		case errors.Is(err, auth.ErrSubscriptionExpired):
			logger.Warn("session recheck: subscription expired")
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "subscription expired"})
		case errors.Is(err, auth.ErrDeviceNotRegistered):
			logger.Warn("session recheck: device no longer registered")
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "device no longer registered"})
		default:
			// Remote unavailable included: the gate fails closed.
			logger.Error("session recheck failed", "error", err)
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "session invalidated"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, sessionResponse{
		Account:            viewOf(session.Account),
		SubscriptionActive: true,
		DeviceConnected:    true,
	})
}

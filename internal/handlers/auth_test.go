package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/streamtv/backend/internal/auth"
	"github.com/streamtv/backend/internal/device"
	"github.com/streamtv/backend/internal/models"
)

type fakeSessionManager struct {
	loginFunc   func(ctx context.Context, email, password string, dev device.Descriptor) (auth.Session, error)
	currentFunc func(ctx context.Context, token string) (auth.Session, error)
	recheckFunc func(ctx context.Context, token string) (auth.Session, error)
	removeFunc  func(ctx context.Context, token, fingerprint string) (auth.Session, error)
	logoutCalls []string
}

func (f *fakeSessionManager) Login(ctx context.Context, email, password string, dev device.Descriptor) (auth.Session, error) {
	return f.loginFunc(ctx, email, password, dev)
}

func (f *fakeSessionManager) Logout(_ context.Context, token string) error {
	f.logoutCalls = append(f.logoutCalls, token)
	return nil
}

func (f *fakeSessionManager) Current(ctx context.Context, token string) (auth.Session, error) {
	if f.currentFunc == nil {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return f.currentFunc(ctx, token)
}

func (f *fakeSessionManager) Recheck(ctx context.Context, token string) (auth.Session, error) {
	return f.recheckFunc(ctx, token)
}

func (f *fakeSessionManager) RemoveDevice(ctx context.Context, token, fingerprint string) (auth.Session, error) {
	if f.removeFunc == nil {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return f.removeFunc(ctx, token, fingerprint)
}

func loginBody(t *testing.T, email, password string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(body)
}

func TestAuthHandlerLogin(t *testing.T) {
	account := models.Account{
		ID:          7,
		Name:        "Viewer",
		Email:       "viewer@example.com",
		Password:    "secret",
		PlanDays:    30,
		DeviceLimit: 2,
		Remaining:   "25",
		Devices:     `{"IMEI":"web:Mozilla","Dispositivo":"web"}`,
	}
	sessions := &fakeSessionManager{
		loginFunc: func(_ context.Context, email, password string, _ device.Descriptor) (auth.Session, error) {
			if email != "viewer@example.com" || password != "secret" {
				return auth.Session{}, auth.ErrInvalidCredentials
			}
			return auth.Session{Token: "tok-1", Account: account}, nil
		},
	}
	handler := AuthHandler{Sessions: sessions}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", loginBody(t, " viewer@example.com ", "secret"))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "tok-1" {
		t.Fatalf("expected token tok-1 got %q", resp.Token)
	}
	if resp.Account.Email != "viewer@example.com" {
		t.Fatalf("unexpected account email %q", resp.Account.Email)
	}
	if len(resp.Account.Devices) != 1 || resp.Account.Devices[0].Name != "web" {
		t.Fatalf("expected decoded device list, got %+v", resp.Account.Devices)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("secret")) {
		t.Fatal("response leaked the stored password")
	}
}

func TestAuthHandlerLoginPreservesEmailCase(t *testing.T) {
	var received string
	sessions := &fakeSessionManager{
		loginFunc: func(_ context.Context, email, _ string, _ device.Descriptor) (auth.Session, error) {
			received = email
			return auth.Session{Token: "tok-1"}, nil
		},
	}
	handler := AuthHandler{Sessions: sessions}

	// The directory filter is exact-match; a mixed-case address must reach
	// the manager verbatim (trimmed only) or the account becomes unreachable.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", loginBody(t, " User@Example.com ", "secret"))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if received != "User@Example.com" {
		t.Fatalf("expected email passed through verbatim, manager saw %q", received)
	}
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown email", auth.ErrNotFound, http.StatusNotFound},
		{"wrong password", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"device limit", &auth.DeviceLimitError{Limit: 1}, http.StatusForbidden},
		{"remote down", auth.ErrRemoteUnavailable, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &fakeSessionManager{
				loginFunc: func(context.Context, string, string, device.Descriptor) (auth.Session, error) {
					return auth.Session{}, tc.err
				},
			}
			handler := AuthHandler{Sessions: sessions}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", loginBody(t, "viewer@example.com", "nope"))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthHandlerLoginDeviceLimitIncludesLimit(t *testing.T) {
	sessions := &fakeSessionManager{
		loginFunc: func(context.Context, string, string, device.Descriptor) (auth.Session, error) {
			return auth.Session{}, &auth.DeviceLimitError{Limit: 3}
		},
	}
	handler := AuthHandler{Sessions: sessions}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", loginBody(t, "viewer@example.com", "secret"))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	var payload struct {
		Limit int `json:"limit"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Limit != 3 {
		t.Fatalf("expected limit 3 in payload got %d", payload.Limit)
	}
}

func TestAuthHandlerLoginRejectsMissingFields(t *testing.T) {
	handler := AuthHandler{Sessions: &fakeSessionManager{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", loginBody(t, "", ""))
	rec := httptest.NewRecorder()

	handler.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAuthHandlerLogout(t *testing.T) {
	sessions := &fakeSessionManager{}
	handler := AuthHandler{Sessions: sessions}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer tok-9")
	rec := httptest.NewRecorder()

	handler.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d got %d", http.StatusNoContent, rec.Code)
	}
	if len(sessions.logoutCalls) != 1 || sessions.logoutCalls[0] != "tok-9" {
		t.Fatalf("expected logout for tok-9, got %v", sessions.logoutCalls)
	}
}

func TestAuthHandlerSession(t *testing.T) {
	sessions := &fakeSessionManager{
		recheckFunc: func(_ context.Context, token string) (auth.Session, error) {
			if token != "tok-1" {
				return auth.Session{}, auth.ErrSessionNotFound
			}
			return auth.Session{Token: token, Account: models.Account{ID: 7, Email: "viewer@example.com"}}, nil
		},
	}
	handler := AuthHandler{Sessions: sessions}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()

	handler.Session(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp sessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.SubscriptionActive || !resp.DeviceConnected {
		t.Fatalf("expected active session, got %+v", resp)
	}
}

func TestAuthHandlerDevicesList(t *testing.T) {
	account := models.Account{
		ID:      7,
		Email:   "viewer@example.com",
		Devices: `{"IMEI":"Linux:a","Dispositivo":"Linux"}{"IMEI":"Win32:b","Dispositivo":"Win32"}`,
	}
	sessions := &fakeSessionManager{
		currentFunc: func(_ context.Context, token string) (auth.Session, error) {
			if token != "tok-1" {
				return auth.Session{}, auth.ErrSessionNotFound
			}
			return auth.Session{Token: token, Account: account, Device: device.Descriptor{Fingerprint: "Linux:a", Name: "Linux"}}, nil
		},
	}
	handler := AuthHandler{Sessions: sessions}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/devices", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()

	handler.Devices(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	var resp struct {
		Devices []device.Descriptor `json:"devices"`
		Current device.Descriptor   `json:"current"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Devices) != 2 {
		t.Fatalf("expected two devices, got %+v", resp.Devices)
	}
	if resp.Current.Fingerprint != "Linux:a" {
		t.Fatalf("expected the session device marked current, got %+v", resp.Current)
	}
}

func TestAuthHandlerDeviceRemoval(t *testing.T) {
	var gotFingerprint string
	sessions := &fakeSessionManager{
		removeFunc: func(_ context.Context, token, fingerprint string) (auth.Session, error) {
			if token != "tok-1" {
				return auth.Session{}, auth.ErrSessionNotFound
			}
			gotFingerprint = fingerprint
			return auth.Session{
				Token:   token,
				Account: models.Account{ID: 7, Devices: `{"IMEI":"Linux:a","Dispositivo":"Linux"}`},
			}, nil
		},
	}
	handler := AuthHandler{Sessions: sessions}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth/devices?fingerprint=Win32%3Ab", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()

	handler.Devices(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if gotFingerprint != "Win32:b" {
		t.Fatalf("expected fingerprint Win32:b, manager saw %q", gotFingerprint)
	}
	var resp struct {
		Devices []device.Descriptor `json:"devices"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Devices) != 1 || resp.Devices[0].Name != "Linux" {
		t.Fatalf("expected the remaining registry, got %+v", resp.Devices)
	}
}

func TestAuthHandlerDeviceRemovalErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no session", auth.ErrSessionNotFound, http.StatusUnauthorized},
		{"unknown device", auth.ErrDeviceNotRegistered, http.StatusNotFound},
		{"own device", auth.ErrCurrentDevice, http.StatusConflict},
		{"remote down", auth.ErrRemoteUnavailable, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &fakeSessionManager{
				removeFunc: func(context.Context, string, string) (auth.Session, error) {
					return auth.Session{}, tc.err
				},
			}
			handler := AuthHandler{Sessions: sessions}

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth/devices?fingerprint=Win32%3Ab", nil)
			req.Header.Set("Authorization", "Bearer tok-1")
			rec := httptest.NewRecorder()

			handler.Devices(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestAuthHandlerDeviceRemovalRequiresFingerprint(t *testing.T) {
	handler := AuthHandler{Sessions: &fakeSessionManager{}}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/auth/devices", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()

	handler.Devices(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestAuthHandlerSessionFailsClosed(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"unknown token", auth.ErrSessionNotFound},
		{"subscription expired", auth.ErrSubscriptionExpired},
		{"device removed", auth.ErrDeviceNotRegistered},
		{"remote down", auth.ErrRemoteUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions := &fakeSessionManager{
				recheckFunc: func(context.Context, string) (auth.Session, error) {
					return auth.Session{}, tc.err
				},
			}
			handler := AuthHandler{Sessions: sessions}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
			req.Header.Set("Authorization", "Bearer tok-1")
			rec := httptest.NewRecorder()

			handler.Session(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
			}
		})
	}
}

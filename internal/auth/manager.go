// Package auth implements the session and entitlement manager: it
// authenticates accounts against the remote user directory, enforces the
// per-account concurrent-device limit and derives the subscription gate.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/streamtv/backend/internal/baserow"
	"github.com/streamtv/backend/internal/device"
	"github.com/streamtv/backend/internal/models"
)

// UserDirectory is the slice of the remote tabular store the manager needs:
// one lookup by email, one lookup by id, one single-field device update.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	GetByID(ctx context.Context, id int) (models.Account, error)
	UpdateDevices(ctx context.Context, id int, encoded string) error
}

// Session is the locally persisted login snapshot. Account is the full row
// as of the last login or recheck; Device is the descriptor the session was
// established from.
type Session struct {
	Token     string            `json:"token"`
	Account   models.Account    `json:"account"`
	Device    device.Descriptor `json:"device"`
	CreatedAt time.Time         `json:"createdAt"`
}

// SessionStore persists session snapshots so they survive process restarts.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Find(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

// Manager gates application access behind identity, entitlement and device
// registration.
type Manager struct {
	users UserDirectory
	store SessionStore
	now   func() time.Time
}

// NewManager constructs a Manager over the given directory and store.
func NewManager(users UserDirectory, store SessionStore) *Manager {
	if users == nil || store == nil {
		panic("auth: user directory and session store must not be nil")
	}
	return &Manager{
		users: users,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the time source. Tests only.
func (m *Manager) WithNowFunc(now func() time.Time) {
	m.now = now
}

// Login authenticates the account and registers the calling device,
// enforcing the account's device limit.
//
// Exactly one remote write occurs, and only when a previously unknown device
// registers; returning devices and every failure path write nothing.
func (m *Manager) Login(ctx context.Context, email, password string, dev device.Descriptor) (Session, error) {
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	account, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, baserow.ErrNotFound) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	// Bit-for-bit comparison against the stored value. The directory stores
	// credentials in the clear; compatibility forbids hashing here, which
	// makes this scheme unsuitable for real credential handling.
	if account.Password != password {
		return Session{}, ErrInvalidCredentials
	}

	registry := device.Decode(account.Devices)
	limit := account.DeviceLimit
	if limit <= 0 {
		limit = 1
	}

	if !device.Contains(registry, dev) {
		if len(registry) >= limit {
			return Session{}, &DeviceLimitError{Limit: limit}
		}
		registry = append(registry, dev)
		encoded := device.Encode(registry)
		if err := m.users.UpdateDevices(ctx, account.ID, encoded); err != nil {
			return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
		}
		account.Devices = encoded
	}

	token, err := randomToken()
	if err != nil {
		return Session{}, err
	}

	session := Session{
		Token:     token,
		Account:   account,
		Device:    dev,
		CreatedAt: m.now(),
	}
	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// Logout discards the session. Always succeeds; a missing token is a no-op.
func (m *Manager) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	_ = m.store.Delete(ctx, token)
	return nil
}

// Current resolves the session for a token without touching the remote
// directory. Used as the fast path on every authenticated request.
func (m *Manager) Current(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, ErrSessionNotFound
	}
	session, err := m.store.Find(ctx, token)
	if err != nil {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Recheck refreshes the account snapshot from the remote directory and
// re-evaluates the entitlement and device gates. Any failure, including the
// directory being unreachable, invalidates the session: the gate fails
// closed rather than letting a stale snapshot extend access.
func (m *Manager) Recheck(ctx context.Context, token string) (Session, error) {
	session, err := m.Current(ctx, token)
	if err != nil {
		return Session{}, err
	}

	account, err := m.users.GetByID(ctx, session.Account.ID)
	if err != nil {
		_ = m.store.Delete(ctx, token)
		return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	session.Account = account

	if !SubscriptionActive(account) {
		_ = m.store.Delete(ctx, token)
		return Session{}, ErrSubscriptionExpired
	}
	if !DeviceConnected(account, session.Device) {
		_ = m.store.Delete(ctx, token)
		return Session{}, ErrDeviceNotRegistered
	}

	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// RemoveDevice deletes one registered device from the account, freeing a slot
// under the device limit. The target is addressed by its exact fingerprint;
// the device the session runs on cannot remove itself. The rewritten registry
// is written back in a single remote update and the session snapshot is
// refreshed.
func (m *Manager) RemoveDevice(ctx context.Context, token, fingerprint string) (Session, error) {
	session, err := m.Current(ctx, token)
	if err != nil {
		return Session{}, err
	}

	account, err := m.users.GetByID(ctx, session.Account.ID)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	registry := device.Decode(account.Devices)
	index := -1
	for i, d := range registry {
		if d.Fingerprint == fingerprint {
			index = i
			break
		}
	}
	if index == -1 {
		return Session{}, ErrDeviceNotRegistered
	}
	if device.Match(registry[index], session.Device) {
		return Session{}, ErrCurrentDevice
	}

	registry = append(registry[:index], registry[index+1:]...)
	encoded := device.Encode(registry)
	if err := m.users.UpdateDevices(ctx, account.ID, encoded); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	account.Devices = encoded

	session.Account = account
	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

var firstInteger = regexp.MustCompile(`-?\d+`)

// SubscriptionActive derives the entitlement gate from the account's
// remaining-time text and plan length. The remaining text is free-form
// (historically "Nd HH:MM:SS"); the first signed integer found anywhere in
// it is compared as parsed-planDays <= planDays. The upstream semantics of
// the remaining field are not fully documented; the formula is kept verbatim
// rather than "corrected".
func SubscriptionActive(account models.Account) bool {
	if account.Remaining == "" || account.PlanDays == 0 {
		return false
	}
	match := firstInteger.FindString(account.Remaining)
	if match == "" {
		return false
	}
	var parsed int
	if _, err := fmt.Sscanf(match, "%d", &parsed); err != nil {
		return false
	}
	return parsed-account.PlanDays <= account.PlanDays
}

// DeviceConnected reports whether the descriptor still appears in the
// account's device registry (loose fingerprint-or-name match).
func DeviceConnected(account models.Account, dev device.Descriptor) bool {
	return device.Contains(device.Decode(account.Devices), dev)
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates no account exists for the given email.
	ErrNotFound = errors.New("email not found")
	// ErrInvalidCredentials indicates the password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionNotFound indicates the token does not map to an active session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRemoteUnavailable wraps transport failures against the user directory.
	ErrRemoteUnavailable = errors.New("user directory unavailable")
	// ErrSubscriptionExpired indicates the account's entitlement window lapsed.
	ErrSubscriptionExpired = errors.New("subscription expired")
	// ErrDeviceNotRegistered indicates the calling device left the registry.
	ErrDeviceNotRegistered = errors.New("device not registered")
	// ErrCurrentDevice indicates an attempt to remove the device the session
	// itself runs on.
	ErrCurrentDevice = errors.New("cannot remove the current device")
)

// DeviceLimitError is returned when a login from a new device would exceed
// the account's concurrent device limit. Limit is carried for display.
type DeviceLimitError struct {
	Limit int
}

func (e *DeviceLimitError) Error() string {
	return fmt.Sprintf("device limit of %d reached", e.Limit)
}

// Package access queries the external feature-flag service that can switch
// the whole application into maintenance mode.
package access

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Status is the flag service's verdict for one deployment UUID.
type Status struct {
	UUID    string `json:"uuid"`
	Active  bool   `json:"ativo"`
	Message string `json:"message,omitempty"`
}

// Checker reports whether the application is currently enabled.
type Checker interface {
	Check(ctx context.Context) Status
}

// Doer abstracts the HTTP client so tests can inject a transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the remote flag endpoint. Any transport or status failure
// yields an inactive verdict: the gate fails closed.
type Client struct {
	url   string
	uuid  string
	httpc Doer
}

// NewClient constructs a flag client. When httpc is nil the default
// http.Client is used.
func NewClient(url, uuid string, httpc Doer) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{url: url, uuid: uuid, httpc: httpc}
}

// Check queries the flag service once.
func (c *Client) Check(ctx context.Context) Status {
	if c.url == "" {
		// No flag service configured: the application is always enabled.
		return Status{UUID: c.uuid, Active: true}
	}

	endpoint := fmt.Sprintf("%s?token=%s", c.url, c.uuid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Status{UUID: c.uuid, Active: false, Message: "access check failed"}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Status{UUID: c.uuid, Active: false, Message: "access check unreachable"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Status{UUID: c.uuid, Active: false, Message: "access check failed"}
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return Status{UUID: c.uuid, Active: false, Message: "access check failed"}
	}
	return status
}

// CachedChecker decorates another Checker with a TTL cache so the flag
// service is not consulted on every request.
type CachedChecker struct {
	base Checker
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	last    Status
	expires time.Time
}

// NewCachedChecker wraps base with the provided TTL.
func NewCachedChecker(base Checker, ttl time.Duration) *CachedChecker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedChecker{
		base: base,
		ttl:  ttl,
		now:  time.Now,
	}
}

// WithNowFunc overrides the time source. Tests only.
func (c *CachedChecker) WithNowFunc(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Check returns the cached verdict when fresh, otherwise it consults the
// underlying checker and caches the result.
func (c *CachedChecker) Check(ctx context.Context) Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if now.Before(c.expires) {
		return c.last
	}

	c.last = c.base.Check(ctx)
	c.expires = now.Add(c.ttl)
	return c.last
}

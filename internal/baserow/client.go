// Package baserow implements the client for the remote tabular store holding
// all durable StreamTV records: users, contents, episodes, banners and
// categories. Rows are addressed per table, filtered with JSON filter trees
// and mutated with partial PATCH updates.
package baserow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("row not found")
	// ErrRemote indicates the remote store could not serve the request.
	ErrRemote = errors.New("remote store unavailable")
)

// Doer abstracts the HTTP client so tests can inject a transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Tables maps the logical record kinds to their remote table identifiers.
type Tables struct {
	Contents   int
	Episodes   int
	Banners    int
	Users      int
	Categories int
}

// Client talks to one Baserow-compatible deployment.
type Client struct {
	baseURL string
	token   string
	tables  Tables
	httpc   Doer
}

// NewClient constructs a row-store client. When httpc is nil the default
// http.Client is used.
func NewClient(baseURL, token string, tables Tables, httpc Doer) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		tables:  tables,
		httpc:   httpc,
	}
}

// listResponse is the paginated envelope returned by row listings.
type listResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func (c *Client) listRows(ctx context.Context, table int, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("user_field_names", "true")

	endpoint := fmt.Sprintf("%s/database/rows/table/%d/?%s", c.baseURL, table, params.Encode())
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) getRow(ctx context.Context, table, rowID int, out any) error {
	endpoint := fmt.Sprintf("%s/database/rows/table/%d/%d/?user_field_names=true", c.baseURL, table, rowID)
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) updateRow(ctx context.Context, table, rowID int, patch any, out any) error {
	endpoint := fmt.Sprintf("%s/database/rows/table/%d/%d/?user_field_names=true", c.baseURL, table, rowID)
	return c.do(ctx, http.MethodPatch, endpoint, patch, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: status %d", ErrRemote, resp.StatusCode)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrRemote, err)
	}
	return nil
}

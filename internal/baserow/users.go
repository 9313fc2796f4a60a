package baserow

import (
	"context"
	"net/url"

	"github.com/streamtv/backend/internal/models"
)

// Users exposes the account operations the session manager depends on.
type Users struct {
	client *Client
}

// Users returns the typed API for the users table.
func (c *Client) Users() *Users {
	return &Users{client: c}
}

// FindByEmail looks up the single account matching email exactly.
func (u *Users) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	params := url.Values{}
	params.Set("filters", And(Equal("Email", email)))

	var resp listResponse[models.Account]
	if err := u.client.listRows(ctx, u.client.tables.Users, params, &resp); err != nil {
		return models.Account{}, err
	}
	if len(resp.Results) == 0 {
		return models.Account{}, ErrNotFound
	}
	return resp.Results[0], nil
}

// GetByID fetches an account row by its identifier.
func (u *Users) GetByID(ctx context.Context, id int) (models.Account, error) {
	var account models.Account
	if err := u.client.getRow(ctx, u.client.tables.Users, id, &account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// UpdateDevices rewrites the account's device registry cell in a single
// partial update.
func (u *Users) UpdateDevices(ctx context.Context, id int, encoded string) error {
	patch := map[string]string{"IMEI": encoded}
	return u.client.updateRow(ctx, u.client.tables.Users, id, patch, nil)
}

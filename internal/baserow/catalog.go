package baserow

import (
	"context"
	"net/url"
	"strconv"

	"github.com/streamtv/backend/internal/models"
)

// Episodes exposes the episode listing operations.
type Episodes struct {
	client *Client
}

// Episodes returns the typed API for the episodes table.
func (c *Client) Episodes() *Episodes {
	return &Episodes{client: c}
}

// BySeriesAndSeason lists one season of a series in episode order. Episodes
// link to their series by name rather than row id in the remote schema.
func (e *Episodes) BySeriesAndSeason(ctx context.Context, name string, season int) ([]models.Episode, error) {
	params := url.Values{}
	params.Set("filters", And(
		Equal("Nome", name),
		Equal("Temporada", strconv.Itoa(season)),
	))
	params.Set("order_by", "Episódio")

	var resp listResponse[models.Episode]
	if err := e.client.listRows(ctx, e.client.tables.Episodes, params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Banners exposes the banner listing operations.
type Banners struct {
	client *Client
}

// Banners returns the typed API for the banners table.
func (c *Client) Banners() *Banners {
	return &Banners{client: c}
}

// All lists every banner, newest first.
func (b *Banners) All(ctx context.Context) ([]models.Banner, error) {
	params := url.Values{}
	params.Set("order_by", "-Data")

	var resp listResponse[models.Banner]
	if err := b.client.listRows(ctx, b.client.tables.Banners, params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Categories exposes the category listing operations.
type Categories struct {
	client *Client
}

// Categories returns the typed API for the categories table.
func (c *Client) Categories() *Categories {
	return &Categories{client: c}
}

// All lists every category.
func (s *Categories) All(ctx context.Context) ([]models.Category, error) {
	var resp listResponse[models.Category]
	if err := s.client.listRows(ctx, s.client.tables.Categories, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

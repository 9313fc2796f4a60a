package baserow

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/streamtv/backend/internal/models"
)

// Contents exposes the content catalog operations.
type Contents struct {
	client *Client
}

// Contents returns the typed API for the contents table.
func (c *Client) Contents() *Contents {
	return &Contents{client: c}
}

func (s *Contents) list(ctx context.Context, params url.Values) ([]models.Content, error) {
	var resp listResponse[models.Content]
	if err := s.client.listRows(ctx, s.client.tables.Contents, params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// All lists every content row ordered by the provided field. An empty order
// falls back to newest first.
func (s *Contents) All(ctx context.Context, orderBy string) ([]models.Content, error) {
	if orderBy == "" {
		orderBy = "-Data"
	}
	params := url.Values{}
	params.Set("order_by", orderBy)
	return s.list(ctx, params)
}

// Recent lists the newest rows, capped at limit.
func (s *Contents) Recent(ctx context.Context, limit int) ([]models.Content, error) {
	params := url.Values{}
	params.Set("order_by", "-Data")
	params.Set("size", strconv.Itoa(limit))
	return s.list(ctx, params)
}

// RecentByType lists the newest rows of one content type, capped at limit.
func (s *Contents) RecentByType(ctx context.Context, contentType string, limit int) ([]models.Content, error) {
	params := url.Values{}
	params.Set("filters", And(Equal("Tipo", contentType)))
	params.Set("order_by", "-Data")
	params.Set("size", strconv.Itoa(limit))
	return s.list(ctx, params)
}

// MostWatched lists rows by descending view count, capped at limit.
func (s *Contents) MostWatched(ctx context.Context, limit int) ([]models.Content, error) {
	params := url.Values{}
	params.Set("order_by", "-Views")
	params.Set("size", strconv.Itoa(limit))
	return s.list(ctx, params)
}

// ByCategory lists rows whose category cell contains the given category.
func (s *Contents) ByCategory(ctx context.Context, category string) ([]models.Content, error) {
	params := url.Values{}
	params.Set("filters", And(Contains("Categoria", category)))
	params.Set("order_by", "-Data")
	return s.list(ctx, params)
}

// ByType lists rows of one content type, newest first.
func (s *Contents) ByType(ctx context.Context, contentType string) ([]models.Content, error) {
	params := url.Values{}
	params.Set("filters", And(Equal("Tipo", contentType)))
	params.Set("order_by", "-Data")
	return s.list(ctx, params)
}

// Search matches the query against name or category.
func (s *Contents) Search(ctx context.Context, query, orderBy string) ([]models.Content, error) {
	if orderBy == "" {
		orderBy = "-Data"
	}
	params := url.Values{}
	params.Set("filters", Or(Contains("Nome", query), Contains("Categoria", query)))
	params.Set("order_by", orderBy)
	return s.list(ctx, params)
}

// ByID fetches a single content row.
func (s *Contents) ByID(ctx context.Context, id int) (models.Content, error) {
	var content models.Content
	if err := s.client.getRow(ctx, s.client.tables.Contents, id, &content); err != nil {
		return models.Content{}, err
	}
	return content, nil
}

// IncrementViews bumps the view counter past the supplied current value. The
// read-modify-write is not atomic; concurrent viewers may lose counts, which
// is acceptable for a popularity signal.
func (s *Contents) IncrementViews(ctx context.Context, id, currentViews int) error {
	patch := map[string]int{"Views": currentViews + 1}
	return s.client.updateRow(ctx, s.client.tables.Contents, id, patch, nil)
}

// memberEntry is the fragment appended to the Favoritos and Histórico cells
// for one user. The cells hold concatenated fragments with no separator.
func memberEntry(email string) string {
	return fmt.Sprintf(`{"id":"%s"}`, email)
}

// IsFavorite reports whether the favorites cell already names the user.
func IsFavorite(favoritesCell, email string) bool {
	return email != "" && strings.Contains(favoritesCell, email)
}

// AddFavorite appends the user to the favorites cell unless already present.
func (s *Contents) AddFavorite(ctx context.Context, id int, currentCell, email string) error {
	if IsFavorite(currentCell, email) {
		return nil
	}
	patch := map[string]string{"Favoritos": currentCell + memberEntry(email)}
	return s.client.updateRow(ctx, s.client.tables.Contents, id, patch, nil)
}

// RemoveFavorite strips the user's fragment from the favorites cell.
func (s *Contents) RemoveFavorite(ctx context.Context, id int, currentCell, email string) error {
	if currentCell == "" {
		return nil
	}
	patch := map[string]string{"Favoritos": strings.ReplaceAll(currentCell, memberEntry(email), "")}
	return s.client.updateRow(ctx, s.client.tables.Contents, id, patch, nil)
}

// Favorites lists the rows whose favorites cell names the user.
func (s *Contents) Favorites(ctx context.Context, email string) ([]models.Content, error) {
	params := url.Values{}
	params.Set("filters", And(Contains("Favoritos", email)))
	params.Set("order_by", "-Data")
	return s.list(ctx, params)
}

// AddHistory appends the user to the watch-history cell unless already present.
func (s *Contents) AddHistory(ctx context.Context, id int, currentCell, email string) error {
	if email != "" && strings.Contains(currentCell, email) {
		return nil
	}
	patch := map[string]string{"Histórico": currentCell + memberEntry(email)}
	return s.client.updateRow(ctx, s.client.tables.Contents, id, patch, nil)
}

// History lists the rows whose watch-history cell names the user.
func (s *Contents) History(ctx context.Context, email string) ([]models.Content, error) {
	params := url.Values{}
	params.Set("filters", And(Contains("Histórico", email)))
	params.Set("order_by", "-Data")
	return s.list(ctx, params)
}

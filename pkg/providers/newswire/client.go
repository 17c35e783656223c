// Package newswire wraps the news search provider (NewsAPI-compatible
// /everything endpoint): keyword search over recent articles with date range
// and page/pageSize pagination. Authentication is the X-Api-Key header.
package newswire

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/stocksight/data-gateway/pkg/client"
)

// MaxPageSize is the provider's page size ceiling.
const MaxPageSize = 100

// dateFormat is the day precision the search endpoint accepts.
const dateFormat = "2006-01-02"

// Article is a single news search result.
type Article struct {
	Source      Source    `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Source names the outlet an article came from.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SearchResponse is the search endpoint envelope.
type SearchResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// Client issues requests to the news provider through the shared provider
// client.
type Client struct {
	api *client.Client
}

// New wraps an already configured provider client. The client's config must
// carry the API key as APIKeyHeader.
func New(api *client.Client) *Client {
	return &Client{api: api}
}

// Search fetches one page of articles matching query published in [from, to].
func (c *Client) Search(ctx context.Context, query string, from, to time.Time, page, pageSize int) (*SearchResponse, error) {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}

	params := url.Values{}
	params.Set("q", query)
	if !from.IsZero() {
		params.Set("from", from.Format(dateFormat))
	}
	if !to.IsZero() {
		params.Set("to", to.Format(dateFormat))
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var resp SearchResponse
	if err := c.api.GetJSON(ctx, "everything", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

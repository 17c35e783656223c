// Package openfda wraps the openFDA drug applications API
// (drug/drugsfda.json). The endpoint is public but expects a descriptive
// User-Agent; result sets are limit/skip paginated. A 404 with an error body
// means "no matches", which openFDA reports for sponsors without filings.
package openfda

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/stocksight/data-gateway/pkg/client"
)

// MaxLimit is the largest page size openFDA accepts.
const MaxLimit = 100

// Client issues requests to openFDA through the shared provider client.
type Client struct {
	api *client.Client
}

// New wraps an already configured provider client.
func New(api *client.Client) *Client {
	return &Client{api: api}
}

// DrugApplications fetches one page of drug applications sponsored by the
// given company. limit and skip address provider-side pagination; the meta
// envelope carries the total for follow-up pages.
func (c *Client) DrugApplications(ctx context.Context, sponsor string, limit, skip int) (*SearchResult, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = MaxLimit
	}

	params := url.Values{}
	params.Set("search", fmt.Sprintf("sponsor_name:%q", sponsor))
	params.Set("limit", strconv.Itoa(limit))
	if skip > 0 {
		params.Set("skip", strconv.Itoa(skip))
	}

	var resp SearchResult
	if err := c.api.GetJSON(ctx, "drug/drugsfda.json", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

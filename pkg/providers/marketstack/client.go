// Package marketstack wraps the Marketstack market data API: end-of-day and
// intraday prices, ticker profiles, dividends and splits. Authentication is
// the access_key query parameter; result sets are limit/offset paginated and
// the limit/offset knobs are surfaced to the caller rather than truncated.
package marketstack

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stocksight/data-gateway/pkg/client"
)

// DateFormat is the day precision Marketstack expects for range parameters.
const DateFormat = "2006-01-02"

// DefaultPageSize is the provider's maximum page size for list endpoints.
const DefaultPageSize = 100

// Client issues requests to the Marketstack API through the shared provider
// client (throttle, retry, error classification).
type Client struct {
	api *client.Client
}

// New wraps an already configured provider client. The client's config must
// carry the access_key as APIKeyParam.
func New(api *client.Client) *Client {
	return &Client{api: api}
}

// EOD fetches one page of end-of-day price bars for symbol between from and
// to (inclusive). limit and offset address the provider-side pagination; the
// response envelope reports the total so callers can request further pages.
func (c *Client) EOD(ctx context.Context, symbol string, from, to time.Time, limit, offset int) (*EODResponse, error) {
	params := url.Values{}
	params.Set("symbols", symbol)
	params.Set("date_from", from.Format(DateFormat))
	params.Set("date_to", to.Format(DateFormat))
	addPaging(params, limit, offset)

	var resp EODResponse
	if err := c.api.GetJSON(ctx, "eod", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IntradayLatest fetches the most recent intraday bar for each symbol.
func (c *Client) IntradayLatest(ctx context.Context, symbols []string) (*IntradayResponse, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))

	var resp IntradayResponse
	if err := c.api.GetJSON(ctx, "intraday/latest", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ticker fetches the company profile for a symbol.
func (c *Client) Ticker(ctx context.Context, symbol string) (*Ticker, error) {
	var resp Ticker
	if err := c.api.GetJSON(ctx, "tickers/"+url.PathEscape(symbol), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Dividends fetches one page of dividend records for symbol in [from, to].
func (c *Client) Dividends(ctx context.Context, symbol string, from, to time.Time, limit, offset int) (*DividendsResponse, error) {
	params := rangeParams(symbol, from, to)
	addPaging(params, limit, offset)

	var resp DividendsResponse
	if err := c.api.GetJSON(ctx, "dividends", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Splits fetches one page of stock split records for symbol in [from, to].
func (c *Client) Splits(ctx context.Context, symbol string, from, to time.Time, limit, offset int) (*SplitsResponse, error) {
	params := rangeParams(symbol, from, to)
	addPaging(params, limit, offset)

	var resp SplitsResponse
	if err := c.api.GetJSON(ctx, "splits", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func rangeParams(symbol string, from, to time.Time) url.Values {
	params := url.Values{}
	params.Set("symbols", symbol)
	if !from.IsZero() {
		params.Set("date_from", from.Format(DateFormat))
	}
	if !to.IsZero() {
		params.Set("date_to", to.Format(DateFormat))
	}
	return params
}

func addPaging(params url.Values, limit, offset int) {
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}
	params.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
}

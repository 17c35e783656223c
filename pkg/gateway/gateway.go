// Package gateway exposes the typed retrieval operations the rest of the
// service calls: market prices, company profiles, corporate actions, FDA
// drug applications and news search. Every operation validates its
// arguments, then runs through the cache-aside policy with a TTL chosen for
// the volatility of its data.
package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stocksight/data-gateway/pkg/client"
	"github.com/stocksight/data-gateway/pkg/pagination"
	"github.com/stocksight/data-gateway/pkg/providers/marketstack"
	"github.com/stocksight/data-gateway/pkg/providers/newswire"
	"github.com/stocksight/data-gateway/pkg/providers/openfda"
	"github.com/stocksight/data-gateway/pkg/retrieval"
)

// Operation names used as cache key material. Renaming one invalidates its
// cached entries, so treat these as part of the storage format.
const (
	opEODPrices        = "market.eod"
	opLatestPrice      = "market.intraday_latest"
	opCompanyProfile   = "market.ticker"
	opDividends        = "market.dividends"
	opSplits           = "market.splits"
	opDrugApplications = "fda.applications"
	opSearchNews       = "news.search"
)

// TTLConfig sets the staleness bound per operation family. Defaults mirror
// the volatility of each data set: prices turn over in minutes, filings and
// profiles in a day.
type TTLConfig struct {
	EODPrices      time.Duration
	LatestPrice    time.Duration
	CompanyProfile time.Duration
	CorporateActs  time.Duration
	Regulatory     time.Duration
	News           time.Duration
}

// DefaultTTLs returns the default staleness bounds.
func DefaultTTLs() TTLConfig {
	return TTLConfig{
		EODPrices:      5 * time.Minute,
		LatestPrice:    1 * time.Minute,
		CompanyProfile: 24 * time.Hour,
		CorporateActs:  24 * time.Hour,
		Regulatory:     24 * time.Hour,
		News:           1 * time.Hour,
	}
}

// Gateway composes the retrieval policy over the provider clients.
type Gateway struct {
	policy *retrieval.Policy
	market *marketstack.Client
	fda    *openfda.Client
	news   *newswire.Client
	paging pagination.Config
	ttl    TTLConfig
	logger zerolog.Logger
}

// New builds a gateway. All collaborators are injected; the gateway owns no
// ambient state.
func New(policy *retrieval.Policy, market *marketstack.Client, fda *openfda.Client, news *newswire.Client, ttl TTLConfig) *Gateway {
	return &Gateway{
		policy: policy,
		market: market,
		fda:    fda,
		news:   news,
		paging: pagination.DefaultConfig(),
		ttl:    ttl,
		logger: log.With().Str("component", "gateway").Logger(),
	}
}

// EODPrices returns every end-of-day price bar for symbol in [from, to],
// assembling the complete range across provider pages.
func (g *Gateway) EODPrices(ctx context.Context, symbol string, from, to time.Time) ([]marketstack.PriceBar, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	return retrieval.Fetch(ctx, g.policy, opEODPrices,
		[]any{symbol, from, to}, nil, g.ttl.EODPrices,
		func(ctx context.Context) ([]marketstack.PriceBar, error) {
			return pagination.FetchAll(ctx, g.paging, marketstack.DefaultPageSize,
				func(ctx context.Context, offset, limit int) ([]marketstack.PriceBar, int, error) {
					resp, err := g.market.EOD(ctx, symbol, from, to, limit, offset)
					if err != nil {
						return nil, 0, err
					}
					return resp.Data, resp.Pagination.Total, nil
				})
		})
}

// LatestPrice returns the most recent intraday bar for symbol.
func (g *Gateway) LatestPrice(ctx context.Context, symbol string) (*marketstack.PriceBar, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	return retrieval.Fetch(ctx, g.policy, opLatestPrice,
		[]any{symbol}, nil, g.ttl.LatestPrice,
		func(ctx context.Context) (*marketstack.PriceBar, error) {
			resp, err := g.market.IntradayLatest(ctx, []string{symbol})
			if err != nil {
				return nil, err
			}
			if len(resp.Data) == 0 {
				return nil, &client.Error{
					Provider: "marketstack",
					Class:    client.ClassProviderError,
					Message:  "no intraday data for symbol " + symbol,
				}
			}
			return &resp.Data[0], nil
		})
}

// CompanyProfile returns the ticker profile for symbol.
func (g *Gateway) CompanyProfile(ctx context.Context, symbol string) (*marketstack.Ticker, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	return retrieval.Fetch(ctx, g.policy, opCompanyProfile,
		[]any{symbol}, nil, g.ttl.CompanyProfile,
		func(ctx context.Context) (*marketstack.Ticker, error) {
			return g.market.Ticker(ctx, symbol)
		})
}

// InvalidateCompany drops the cached profile for symbol, forcing the next
// CompanyProfile call to refetch.
func (g *Gateway) InvalidateCompany(ctx context.Context, symbol string) error {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return err
	}
	return g.policy.Invalidate(ctx, opCompanyProfile, []any{symbol}, nil)
}

// Dividends returns dividend records for symbol in [from, to].
func (g *Gateway) Dividends(ctx context.Context, symbol string, from, to time.Time) ([]marketstack.Dividend, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	return retrieval.Fetch(ctx, g.policy, opDividends,
		[]any{symbol, from, to}, nil, g.ttl.CorporateActs,
		func(ctx context.Context) ([]marketstack.Dividend, error) {
			return pagination.FetchAll(ctx, g.paging, marketstack.DefaultPageSize,
				func(ctx context.Context, offset, limit int) ([]marketstack.Dividend, int, error) {
					resp, err := g.market.Dividends(ctx, symbol, from, to, limit, offset)
					if err != nil {
						return nil, 0, err
					}
					return resp.Data, resp.Pagination.Total, nil
				})
		})
}

// Splits returns stock split records for symbol in [from, to].
func (g *Gateway) Splits(ctx context.Context, symbol string, from, to time.Time) ([]marketstack.Split, error) {
	symbol, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	return retrieval.Fetch(ctx, g.policy, opSplits,
		[]any{symbol, from, to}, nil, g.ttl.CorporateActs,
		func(ctx context.Context) ([]marketstack.Split, error) {
			return pagination.FetchAll(ctx, g.paging, marketstack.DefaultPageSize,
				func(ctx context.Context, offset, limit int) ([]marketstack.Split, int, error) {
					resp, err := g.market.Splits(ctx, symbol, from, to, limit, offset)
					if err != nil {
						return nil, 0, err
					}
					return resp.Data, resp.Pagination.Total, nil
				})
		})
}

// DrugApplications returns one page of FDA drug applications sponsored by
// company. Paging is explicit because callers rarely need the full set.
func (g *Gateway) DrugApplications(ctx context.Context, company string, limit, skip int) (*openfda.SearchResult, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil, client.InvalidRequest("gateway", "company must not be empty")
	}
	if limit < 0 || limit > openfda.MaxLimit {
		return nil, client.InvalidRequest("gateway", "limit out of range")
	}
	if skip < 0 {
		return nil, client.InvalidRequest("gateway", "skip must not be negative")
	}

	return retrieval.Fetch(ctx, g.policy, opDrugApplications,
		[]any{company}, map[string]any{"limit": limit, "skip": skip}, g.ttl.Regulatory,
		func(ctx context.Context) (*openfda.SearchResult, error) {
			return g.fda.DrugApplications(ctx, company, limit, skip)
		})
}

// SearchNews returns one page of articles matching query in [from, to].
func (g *Gateway) SearchNews(ctx context.Context, query string, from, to time.Time, page, pageSize int) (*newswire.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, client.InvalidRequest("gateway", "query must not be empty")
	}
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if page < 0 || pageSize < 0 || pageSize > newswire.MaxPageSize {
		return nil, client.InvalidRequest("gateway", "page bounds out of range")
	}

	return retrieval.Fetch(ctx, g.policy, opSearchNews,
		[]any{query, from, to}, map[string]any{"page": page, "page_size": pageSize}, g.ttl.News,
		func(ctx context.Context) (*newswire.SearchResponse, error) {
			return g.news.Search(ctx, query, from, to, page, pageSize)
		})
}

// normalizeSymbol trims and uppercases a ticker symbol, rejecting empties so
// no network call is made with a malformed identifier.
func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", client.InvalidRequest("gateway", "symbol must not be empty")
	}
	return symbol, nil
}

// validateRange rejects inverted date ranges before any provider call.
func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return client.InvalidRequest("gateway", "date range must be set")
	}
	if to.Before(from) {
		return client.InvalidRequest("gateway", "date_to must not be before date_from")
	}
	return nil
}

// Package client provides the core provider HTTP client shared by all
// upstream data sources: proactive rate-window throttling, bounded
// backoff retry, and normalization of transport and HTTP failures into a
// stable error taxonomy.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stocksight/data-gateway/pkg/ratelimit"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_provider_requests_total",
		Help: "Total provider requests by provider, endpoint and status",
	}, []string{"provider", "endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_provider_request_duration_seconds",
		Help:    "Provider request duration in seconds by provider and endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"provider", "endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_provider_errors_total",
		Help: "Total provider errors by provider and class",
	}, []string{"provider", "class"})
)

// Config holds the per-provider client configuration. Nothing here is
// hard-coded into the retrieval logic: base URL, credentials, timeout,
// rate budget and retry bound all arrive from the configuration surface.
type Config struct {
	// Provider is the short name used in logs, metrics and errors.
	Provider string

	// BaseURL is the provider's API root, e.g. "https://api.marketstack.com/v1".
	BaseURL string

	// APIKey is the credential. It is sent as query parameter APIKeyParam
	// when that is set, or as header APIKeyHeader otherwise. Both empty
	// means the provider needs no credential.
	APIKey       string
	APIKeyParam  string
	APIKeyHeader string

	// UserAgent identifies this service to the provider. Some regulatory
	// APIs reject anonymous clients, so it is required.
	UserAgent string

	// Timeout bounds a single request attempt.
	Timeout time.Duration

	// RateLimit is the proactive call budget: RateLimit calls per
	// RateInterval. Zero disables the client-side throttle.
	RateLimit    int
	RateInterval time.Duration

	// Retry bounds the reactive backoff loop.
	Retry RetryConfig
}

// Client issues outbound requests to a single external provider. One
// instance per provider is shared process-wide; the rate window it owns is
// not shared with other providers.
type Client struct {
	httpClient *http.Client
	window     *ratelimit.Window
	config     Config
	logger     zerolog.Logger
}

// New creates a provider client from the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("provider name is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required for provider %s", cfg.Provider)
	}
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required for provider %s", cfg.Provider)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateInterval <= 0 {
		cfg.RateInterval = time.Second
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetryConfig()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		window: ratelimit.NewWindow(cfg.Provider, cfg.RateLimit, cfg.RateInterval),
		config: cfg,
		logger: log.With().Str("component", "provider-client").Str("provider", cfg.Provider).Logger(),
	}, nil
}

// Provider returns the provider short name.
func (c *Client) Provider() string {
	return c.config.Provider
}

// SetHTTPClient replaces the underlying HTTP client (for testing).
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// GetJSON performs a GET against endpoint with the given query parameters,
// decoding the response body into out. The call suspends on the rate window
// if the budget is exhausted, retries throttling and server failures with
// bounded exponential backoff, and returns a classified *Error on failure.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{
			Provider: c.config.Provider,
			Class:    ClassProviderError,
			Message:  "malformed provider response",
			Err:      err,
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(c.config.Provider, endpoint).Observe(time.Since(start).Seconds())
	}()

	reqURL, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, InvalidRequest(c.config.Provider, err.Error())
	}

	var body []byte
	retryErr := retryWithBackoff(ctx, c.config.Provider, c.config.Retry, c.logger, func() error {
		// Proactive throttle: every attempt, retries included, consumes a
		// slot from the call budget. A caller abort while waiting releases
		// the slot.
		if err := c.window.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}

		attemptBody, attemptErr := c.attempt(ctx, endpoint, reqURL)
		if attemptErr != nil {
			return attemptErr
		}
		body = attemptBody
		return nil
	})
	if retryErr != nil {
		if class := ClassOf(retryErr); class != "" {
			errorsTotal.WithLabelValues(c.config.Provider, string(class)).Inc()
		}
		return nil, retryErr
	}

	return body, nil
}

// attempt performs a single request/response cycle and classifies the
// outcome. The full body is read before returning so that a later cache
// write never sees a partial payload.
func (c *Client) attempt(ctx context.Context, endpoint, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, InvalidRequest(c.config.Provider, fmt.Sprintf("create request: %v", err))
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.config.APIKeyHeader != "" && c.config.APIKey != "" {
		req.Header.Set(c.config.APIKeyHeader, c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(c.config.Provider, endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Provider request failed")
		return nil, &Error{
			Provider: c.config.Provider,
			Class:    ClassUnavailable,
			Message:  "transport failure",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(c.config.Provider, endpoint, "network_error").Inc()
		return nil, &Error{
			Provider: c.config.Provider,
			Class:    ClassUnavailable,
			Message:  "read response body",
			Err:      err,
		}
	}

	requestsTotal.WithLabelValues(c.config.Provider, endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if clsErr := c.classify(resp.StatusCode, body); clsErr != nil {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(clsErr.Class)).
			Msg("Provider request error")
		return nil, clsErr
	}

	return body, nil
}

// classify maps an HTTP outcome onto the error taxonomy. Returns nil for a
// usable success response.
func (c *Client) classify(status int, body []byte) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return &Error{
			Provider:   c.config.Provider,
			Class:      ClassRateLimited,
			StatusCode: status,
			Message:    providerMessage(body, "rate limit exceeded"),
		}
	case status >= 500:
		return &Error{
			Provider:   c.config.Provider,
			Class:      ClassUnavailable,
			StatusCode: status,
			Message:    providerMessage(body, "provider unavailable"),
		}
	case status >= 400:
		return &Error{
			Provider:   c.config.Provider,
			Class:      ClassInvalidRequest,
			StatusCode: status,
			Message:    providerMessage(body, http.StatusText(status)),
		}
	}

	// Some providers report failures inside a 2xx body.
	if msg, ok := errorEnvelope(body); ok {
		return &Error{
			Provider:   c.config.Provider,
			Class:      ClassProviderError,
			StatusCode: status,
			Message:    msg,
		}
	}

	return nil
}

func (c *Client) buildURL(endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(c.config.BaseURL, "/") + "/" + strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %v", endpoint, err)
	}

	q := u.Query()
	for name, values := range params {
		for _, v := range values {
			q.Add(name, v)
		}
	}
	if c.config.APIKeyParam != "" && c.config.APIKey != "" {
		q.Set(c.config.APIKeyParam, c.config.APIKey)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// providerErrorBody is the error envelope shared by the providers this
// gateway talks to ({"error": {"code": ..., "message": ...}}).
type providerErrorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// errorEnvelope reports whether body carries a provider-level error object,
// returning its message if so.
func errorEnvelope(body []byte) (string, bool) {
	var envelope providerErrorBody
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return "", false
	}
	msg := envelope.Error.Message
	if msg == "" {
		msg = envelope.Error.Code
	}
	if msg == "" {
		msg = "provider reported an error"
	}
	return msg, true
}

// providerMessage extracts a human-readable message from an error response
// body, falling back to fallback when the body is not a known envelope.
func providerMessage(body []byte, fallback string) string {
	if msg, ok := errorEnvelope(body); ok {
		return msg
	}
	return fallback
}

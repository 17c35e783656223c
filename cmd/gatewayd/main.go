// gatewayd exposes the retrieval gateway over HTTP for the route layer and
// scheduled jobs: market prices, company profiles, corporate actions, FDA
// applications and news search, plus /health and Prometheus /metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/stocksight/data-gateway/pkg/cache"
	"github.com/stocksight/data-gateway/pkg/client"
	"github.com/stocksight/data-gateway/pkg/config"
	"github.com/stocksight/data-gateway/pkg/gateway"
	"github.com/stocksight/data-gateway/pkg/logging"
	"github.com/stocksight/data-gateway/pkg/providers/marketstack"
	"github.com/stocksight/data-gateway/pkg/providers/newswire"
	"github.com/stocksight/data-gateway/pkg/providers/openfda"
	"github.com/stocksight/data-gateway/pkg/retrieval"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fallback := logging.Setup(logging.DefaultConfig())
		fallback.Fatal().Err(err).Msg("Configuration error")
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")

	store := cache.NewRedisStore(redisClient)
	policy := retrieval.New(store)

	gw, err := buildGateway(cfg, policy)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build gateway")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	registerRoutes(mux, gw)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("Starting gateway server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("Shutting down")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(timeoutCtx); err != nil {
		logger.Warn().Err(err).Msg("Server shutdown error")
	}
	if err := store.Close(); err != nil {
		logger.Warn().Err(err).Msg("Cache store close error")
	}
}

func buildGateway(cfg config.Config, policy *retrieval.Policy) (*gateway.Gateway, error) {
	marketAPI, err := client.New(client.Config{
		Provider:     "marketstack",
		BaseURL:      cfg.Marketstack.BaseURL,
		APIKey:       cfg.Marketstack.APIKey,
		APIKeyParam:  "access_key",
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.Marketstack.Timeout,
		RateLimit:    cfg.Marketstack.RateLimit,
		RateInterval: cfg.Marketstack.RateInterval,
		Retry:        retryConfig(cfg.Marketstack),
	})
	if err != nil {
		return nil, err
	}

	fdaAPI, err := client.New(client.Config{
		Provider:     "openfda",
		BaseURL:      cfg.OpenFDA.BaseURL,
		APIKey:       cfg.OpenFDA.APIKey,
		APIKeyParam:  "api_key",
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.OpenFDA.Timeout,
		RateLimit:    cfg.OpenFDA.RateLimit,
		RateInterval: cfg.OpenFDA.RateInterval,
		Retry:        retryConfig(cfg.OpenFDA),
	})
	if err != nil {
		return nil, err
	}

	newsAPI, err := client.New(client.Config{
		Provider:     "newswire",
		BaseURL:      cfg.News.BaseURL,
		APIKey:       cfg.News.APIKey,
		APIKeyHeader: "X-Api-Key",
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.News.Timeout,
		RateLimit:    cfg.News.RateLimit,
		RateInterval: cfg.News.RateInterval,
		Retry:        retryConfig(cfg.News),
	})
	if err != nil {
		return nil, err
	}

	ttl := gateway.TTLConfig{
		EODPrices:      cfg.TTL.EODPrices,
		LatestPrice:    cfg.TTL.LatestPrice,
		CompanyProfile: cfg.TTL.CompanyProfile,
		CorporateActs:  cfg.TTL.CorporateActs,
		Regulatory:     cfg.TTL.Regulatory,
		News:           cfg.TTL.News,
	}

	return gateway.New(policy,
		marketstack.New(marketAPI),
		openfda.New(fdaAPI),
		newswire.New(newsAPI),
		ttl,
	), nil
}

func retryConfig(p config.ProviderConfig) client.RetryConfig {
	rc := client.DefaultRetryConfig()
	rc.MaxRetries = p.MaxRetries
	if p.InitialBackoff > 0 {
		rc.InitialBackoff = p.InitialBackoff
	}
	return rc
}

func registerRoutes(mux *http.ServeMux, gw *gateway.Gateway) {
	mux.HandleFunc("/v1/prices/eod", func(w http.ResponseWriter, r *http.Request) {
		from, to, err := dateRange(r)
		if err != nil {
			writeError(w, err)
			return
		}
		result, err := gw.EODPrices(r.Context(), r.URL.Query().Get("symbol"), from, to)
		respond(w, result, err)
	})

	mux.HandleFunc("/v1/prices/latest", func(w http.ResponseWriter, r *http.Request) {
		result, err := gw.LatestPrice(r.Context(), r.URL.Query().Get("symbol"))
		respond(w, result, err)
	})

	mux.HandleFunc("/v1/company", func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if r.Method == http.MethodDelete {
			respond(w, map[string]string{"status": "invalidated"}, gw.InvalidateCompany(r.Context(), symbol))
			return
		}
		result, err := gw.CompanyProfile(r.Context(), symbol)
		respond(w, result, err)
	})

	mux.HandleFunc("/v1/dividends", func(w http.ResponseWriter, r *http.Request) {
		from, to, err := dateRange(r)
		if err != nil {
			writeError(w, err)
			return
		}
		result, err := gw.Dividends(r.Context(), r.URL.Query().Get("symbol"), from, to)
		respond(w, result, err)
	})

	mux.HandleFunc("/v1/splits", func(w http.ResponseWriter, r *http.Request) {
		from, to, err := dateRange(r)
		if err != nil {
			writeError(w, err)
			return
		}
		result, err := gw.Splits(r.Context(), r.URL.Query().Get("symbol"), from, to)
		respond(w, result, err)
	})

	mux.HandleFunc("/v1/fda/applications", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, err := intParam("limit", q.Get("limit"))
		if err != nil {
			writeError(w, err)
			return
		}
		skip, err := intParam("skip", q.Get("skip"))
		if err != nil {
			writeError(w, err)
			return
		}
		result, err := gw.DrugApplications(r.Context(), q.Get("company"), limit, skip)
		respond(w, result, err)
	})

	mux.HandleFunc("/v1/news", func(w http.ResponseWriter, r *http.Request) {
		from, to, err := dateRange(r)
		if err != nil {
			writeError(w, err)
			return
		}
		q := r.URL.Query()
		page, err := intParam("page", q.Get("page"))
		if err != nil {
			writeError(w, err)
			return
		}
		pageSize, err := intParam("pageSize", q.Get("pageSize"))
		if err != nil {
			writeError(w, err)
			return
		}
		result, err := gw.SearchNews(r.Context(), q.Get("q"), from, to, page, pageSize)
		respond(w, result, err)
	})
}

func dateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, client.InvalidRequest("gateway", "invalid or missing from date (expect YYYY-MM-DD)")
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, client.InvalidRequest("gateway", "invalid or missing to date (expect YYYY-MM-DD)")
	}
	return from, to, nil
}

// intParam parses an optional integer query parameter. Absent means zero;
// a non-numeric value is a caller mistake, not a silent default.
func intParam(name, v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, client.InvalidRequest("gateway", name+" must be an integer")
	}
	return n, nil
}

func respond(w http.ResponseWriter, result any, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if encodeErr := json.NewEncoder(w).Encode(result); encodeErr != nil {
		logger := logging.NewLogger("gatewayd")
		logger.Warn().Err(encodeErr).Msg("Failed to write response")
	}
}

// writeError maps the error taxonomy onto HTTP statuses for the route layer:
// caller mistakes are 4xx, everything upstream is a retry-later 5xx.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch client.ClassOf(err) {
	case client.ClassInvalidRequest:
		status = http.StatusBadRequest
	case client.ClassRateLimited:
		status = http.StatusTooManyRequests
	case client.ClassUnavailable:
		status = http.StatusServiceUnavailable
	case client.ClassProviderError:
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

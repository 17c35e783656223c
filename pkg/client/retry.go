package client

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_retries_total",
		Help: "Total number of retry attempts by provider and error class",
	}, []string{"provider", "error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_retry_backoff_seconds",
		Help:    "Backoff duration between retries by provider",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"provider"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_retry_exhausted_total",
		Help: "Total number of times the retry budget was exhausted by provider and error class",
	}, []string{"provider", "error_class"})
)

// RetryConfig bounds the reactive backoff loop.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt, so a
	// client configured with MaxRetries R makes at most R+1 attempts.
	MaxRetries int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential growth.
	MaxBackoff time.Duration

	// BackoffMultiplier is the exponential growth factor.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// retryWithBackoff runs fn up to cfg.MaxRetries+1 times. Only failures whose
// class is retryable (throttling, 5xx, transport) trigger another attempt;
// terminal classes return immediately. The attempt counter makes the
// termination bound structural: there is no recursive self-call.
func retryWithBackoff(ctx context.Context, provider string, cfg RetryConfig, logger zerolog.Logger, fn func() error) error {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffMultiplier <= 1 {
		cfg.BackoffMultiplier = 2.0
	}

	var lastErr error
	backoff := cfg.InitialBackoff

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info().Int("attempt", attempt+1).Msg("Request succeeded after retry")
			}
			return nil
		}

		lastErr = err
		class := ClassOf(err)
		if !retryable(class) {
			return err
		}

		if attempt >= cfg.MaxRetries {
			break
		}

		retriesTotal.WithLabelValues(provider, string(class)).Inc()

		// Jitter the delay by ±20% so concurrent callers spread out.
		jittered := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		retryBackoffSeconds.WithLabelValues(provider).Observe(jittered.Seconds())

		logger.Debug().
			Str("error_class", string(class)).
			Int("attempt", attempt+1).
			Dur("backoff", jittered).
			Msg("Retrying request after backoff")

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w during retry backoff: %v", ErrContextCancelled, ctx.Err())
		case <-time.After(jittered):
		}

		backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}

	class := ClassOf(lastErr)
	retryExhaustedTotal.WithLabelValues(provider, string(class)).Inc()
	logger.Warn().
		Str("error_class", string(class)).
		Int("attempts", cfg.MaxRetries+1).
		Msg("Retry attempts exhausted")

	return lastErr
}

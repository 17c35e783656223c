// Package ratelimit implements the client-side request budget for outbound
// provider calls. Each provider client owns one Window; a calling task
// suspends in Wait until the window has room, so the gateway throttles
// itself before the provider has to.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var (
	throttleWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_throttle_waits_total",
		Help: "Requests delayed by the client-side rate window, by provider",
	}, []string{"provider"})

	throttleWaitSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_throttle_wait_seconds",
		Help:    "Time spent waiting on the client-side rate window, by provider",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"provider"})
)

// Window enforces a budget of calls per interval for a single provider.
// The limiter refills continuously at budget/interval with a burst of the
// full budget, which matches a sliding window of recent call timestamps
// without keeping the timestamps around.
type Window struct {
	provider string
	limiter  *rate.Limiter
	logger   zerolog.Logger
}

// NewWindow creates a rate window allowing calls requests per interval.
// A non-positive budget disables throttling (Wait returns immediately).
func NewWindow(provider string, calls int, interval time.Duration) *Window {
	w := &Window{
		provider: provider,
		logger:   log.With().Str("component", "rate-window").Str("provider", provider).Logger(),
	}
	if calls > 0 && interval > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(float64(calls)/interval.Seconds()), calls)
	}
	return w
}

// Wait blocks the calling task until the window has room for one request.
// Cancellation of ctx releases the waiter and abandons the slot.
func (w *Window) Wait(ctx context.Context) error {
	if w.limiter == nil {
		return nil
	}

	if w.limiter.Allow() {
		return nil
	}

	// Budget exhausted: suspend until a slot frees up.
	throttleWaits.WithLabelValues(w.provider).Inc()
	start := time.Now()

	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate window wait: %w", err)
	}

	waited := time.Since(start)
	throttleWaitSeconds.WithLabelValues(w.provider).Observe(waited.Seconds())
	w.logger.Debug().Dur("waited", waited).Msg("Request delayed by rate window")
	return nil
}

// Package metrics documents the Prometheus collectors the gateway exports.
// Collectors live in the packages that own the instrumented code and are
// registered via promauto against the default registry; this package exists
// so operators have one place to look.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the registerer all gateway collectors attach to.
var Registry = prometheus.DefaultRegisterer

// Cache (pkg/cache):
//   - gateway_cache_hits_total (Counter)
//   - gateway_cache_misses_total (Counter): misses, expired entries and degraded backend reads
//   - gateway_cache_errors_total{operation} (Counter): operation = get|set|delete
//   - gateway_cache_entry_bytes (Histogram): entry sizes read and written
//
// Provider requests (pkg/client):
//   - gateway_provider_requests_total{provider, endpoint, status} (Counter)
//   - gateway_provider_request_duration_seconds{provider, endpoint} (Histogram)
//   - gateway_provider_errors_total{provider, class} (Counter)
//
// Retry (pkg/client):
//   - gateway_retries_total{provider, error_class} (Counter)
//   - gateway_retry_backoff_seconds{provider} (Histogram)
//   - gateway_retry_exhausted_total{provider, error_class} (Counter)
//
// Throttle (pkg/ratelimit):
//   - gateway_throttle_waits_total{provider} (Counter)
//   - gateway_throttle_wait_seconds{provider} (Histogram)
//
// Useful queries:
//
//	# cache hit rate
//	sum(rate(gateway_cache_hits_total[5m])) /
//	(sum(rate(gateway_cache_hits_total[5m])) + sum(rate(gateway_cache_misses_total[5m])))
//
//	# provider p95 latency
//	histogram_quantile(0.95, rate(gateway_provider_request_duration_seconds_bucket[5m]))
//
//	# retry exhaustion by provider
//	rate(gateway_retry_exhausted_total[5m])

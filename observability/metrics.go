package observability

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	ledgerMetricsOnce sync.Once
	ledgerRegistry    *LedgerMetrics
)

// ModuleMetrics returns the lazily-initialised registry used to record
// JSON-RPC activity.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "seedswap",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "seedswap",
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total JSON-RPC errors segmented by method and JSON-RPC error code.",
			}, []string{"method", "code"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "seedswap",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for JSON-RPC handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "seedswap",
				Subsystem: "rpc",
				Name:      "throttles_total",
				Help:      "Count of requests rejected by the rate limiter.",
			}, []string{"reason"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
			moduleRegistry.throttles,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of a JSON-RPC request. A zero code means success.
func (m *moduleMetrics) Observe(method string, code int, duration time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	outcome := "success"
	if code != 0 {
		outcome = "error"
		m.errors.WithLabelValues(method, fmt.Sprintf("%d", code)).Inc()
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter. Reasons should be stable
// strings such as "rate_limit" so dashboards remain consistent.
func (m *moduleMetrics) RecordThrottle(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(reason).Inc()
}

// LedgerMetrics tracks state-changing calls against the sale ledger.
type LedgerMetrics struct {
	calls       *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	swapped     *prometheus.CounterVec
	distributed prometheus.Counter
	events      *prometheus.CounterVec
}

// Ledger returns the singleton ledger metrics registry.
func Ledger() *LedgerMetrics {
	ledgerMetricsOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			calls: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "seedswap",
				Subsystem: "ledger",
				Name:      "calls_total",
				Help:      "State-changing calls segmented by operation and outcome.",
			}, []string{"operation", "outcome"}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "seedswap",
				Subsystem: "ledger",
				Name:      "rejections_total",
				Help:      "Rejected calls segmented by operation and reason.",
			}, []string{"operation", "reason"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "seedswap",
				Subsystem: "ledger",
				Name:      "call_duration_seconds",
				Help:      "Time spent applying and committing a call.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"operation"}),
			swapped: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "seedswap",
				Subsystem: "ledger",
				Name:      "swapped_amount_total",
				Help:      "Cumulative swapped amounts segmented by asset, in base units.",
			}, []string{"asset"}),
			distributed: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "seedswap",
				Subsystem: "ledger",
				Name:      "distributed_amount_total",
				Help:      "Cumulative sale asset released to participants, in base units.",
			}),
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "seedswap",
				Subsystem: "ledger",
				Name:      "events_total",
				Help:      "Committed events segmented by type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(
			ledgerRegistry.calls,
			ledgerRegistry.rejections,
			ledgerRegistry.latency,
			ledgerRegistry.swapped,
			ledgerRegistry.distributed,
			ledgerRegistry.events,
		)
	})
	return ledgerRegistry
}

// ObserveCall records a completed call. Rejections are labelled with their
// reason string so each fixed reason gets its own series.
func (m *LedgerMetrics) ObserveCall(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "rejected"
		m.rejections.WithLabelValues(operation, reasonLabel(err)).Inc()
	}
	m.calls.WithLabelValues(operation, outcome).Inc()
	m.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSwap adds to the swapped amount counters.
func (m *LedgerMetrics) RecordSwap(baseAsset string, eth *big.Int, saleAsset string, token *big.Int) {
	if m == nil {
		return
	}
	m.swapped.WithLabelValues(strings.ToUpper(baseAsset)).Add(bigToFloat(eth))
	m.swapped.WithLabelValues(strings.ToUpper(saleAsset)).Add(bigToFloat(token))
}

// RecordDistribution adds to the released amount counter.
func (m *LedgerMetrics) RecordDistribution(amount *big.Int) {
	if m == nil {
		return
	}
	m.distributed.Add(bigToFloat(amount))
}

// RecordEvent counts a committed event.
func (m *LedgerMetrics) RecordEvent(eventType string) {
	if m == nil || eventType == "" {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}

func reasonLabel(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	reason := err.Error()
	if len(reason) > 80 {
		reason = reason[:80]
	}
	return reason
}

func bigToFloat(v *big.Int) float64 {
	if v == nil || v.Sign() <= 0 {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}

package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector provides Prometheus metrics for the API client, the
// cache, and the tool dispatch layer. It is safe for concurrent use, and
// every recorder is a no-op on a nil collector so metrics stay optional
// in wiring and in tests.
type MetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	toolCallsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetricsCollector creates a collector on its own registry.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.NewRegistry())
}

// NewMetricsCollectorWithRegistry creates a collector registering its
// metrics with the supplied registry.
func NewMetricsCollectorWithRegistry(registry *prometheus.Registry) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jira_mcp_requests_total",
				Help: "Total number of Jira API requests made",
			},
			[]string{"method", "status", "family"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jira_mcp_request_duration_seconds",
				Help:    "Duration of Jira API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "family"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jira_mcp_retries_total",
				Help: "Total number of Jira API retry attempts",
			},
			[]string{"family"},
		),
		cacheHits: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "jira_mcp_cache_hits_total",
				Help: "Total number of cache hits",
			},
		),
		cacheMisses: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "jira_mcp_cache_misses_total",
				Help: "Total number of cache misses",
			},
		),
		toolCallsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jira_mcp_tool_calls_total",
				Help: "Total number of MCP tool calls by outcome",
			},
			[]string{"tool", "outcome"},
		),
		registry: registry,
	}
}

// Handler returns an HTTP handler serving the collector's registry in the
// Prometheus exposition format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

// RecordRequest records one completed API request attempt.
func (mc *MetricsCollector) RecordRequest(method, family string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	mc.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode), family).Inc()
	mc.requestDuration.WithLabelValues(method, family).Observe(duration.Seconds())
}

// RecordRetry increments the retry counter for an API family.
func (mc *MetricsCollector) RecordRetry(family string) {
	if mc == nil {
		return
	}

	mc.retriesTotal.WithLabelValues(family).Inc()
}

// RecordCacheHit increments the cache hit counter.
func (mc *MetricsCollector) RecordCacheHit() {
	if mc == nil {
		return
	}

	mc.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (mc *MetricsCollector) RecordCacheMiss() {
	if mc == nil {
		return
	}

	mc.cacheMisses.Inc()
}

// RecordToolCall increments the tool call counter. Outcome is "success"
// or "error".
func (mc *MetricsCollector) RecordToolCall(tool, outcome string) {
	if mc == nil {
		return
	}

	mc.toolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

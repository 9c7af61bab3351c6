// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipebox"

// Metrics for monitoring. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
	activeRequests  prometheus.Gauge

	recipesCreated         prometheus.Counter
	shoppingListsGenerated *prometheus.CounterVec
	chatReplies            *prometheus.CounterVec
	llmDuration            *prometheus.HistogramVec
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in
// tests so repeated construction does not collide.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		activeRequests: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_active_requests",
				Help:      "Number of active HTTP requests",
			},
		),
		recipesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recipes_created_total",
				Help:      "Total number of recipes created",
			},
		),
		shoppingListsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "shopping_lists_generated_total",
				Help:      "Shopping lists generated from meal plans, by mode",
			},
			[]string{"mode"},
		),
		chatReplies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_replies_total",
				Help:      "Assistant replies by kind",
			},
			[]string{"kind"},
		),
		llmDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "LLM request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"status"},
		),
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RequestStarted tracks an in-flight request and returns the func that ends it.
func (m *Metrics) RequestStarted() func() {
	if m == nil {
		return func() {}
	}
	m.activeRequests.Inc()
	return m.activeRequests.Dec
}

// RecordRequest records request metrics. path should be the route template,
// not the raw URL, to keep label cardinality bounded.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	statusStr := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(method, path, statusStr).Inc()
}

func (m *Metrics) RecipeCreated() {
	if m == nil {
		return
	}
	m.recipesCreated.Inc()
}

// ShoppingListGenerated counts a generation; mode is "deterministic" or "ai".
func (m *Metrics) ShoppingListGenerated(mode string) {
	if m == nil {
		return
	}
	m.shoppingListsGenerated.WithLabelValues(mode).Inc()
}

// ChatReply counts a reply; kind is "message" or "proposal".
func (m *Metrics) ChatReply(kind string) {
	if m == nil {
		return
	}
	m.chatReplies.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveLLM(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.llmDuration.WithLabelValues(status).Observe(duration.Seconds())
}

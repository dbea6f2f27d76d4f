package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tandem"

// Metrics holds every collector the service exports. A nil *Metrics is
// valid and records nothing, which keeps tests and the CLI free of wiring.
type Metrics struct {
	gatherer prometheus.Gatherer

	orders        *prometheus.CounterVec
	pantryLines   *prometheus.CounterVec
	fallbacks     prometheus.Counter
	recategorized *prometheus.CounterVec
	listBuilds    *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg. Passing a fresh registry per test
// avoids duplicate registration panics.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_total",
			Help:      "Order fulfillment calls by result.",
		}, []string{"result"}),
		pantryLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pantry_lines_total",
			Help:      "Order lines applied to the pantry by action.",
		}, []string{"action"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "categorizer_fallbacks_total",
			Help:      "Pantry rows created with the fallback placement.",
		}),
		recategorized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recategorized_total",
			Help:      "Fallback rows processed by the repair worker.",
		}, []string{"result"}),
		listBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shopping_list_builds_total",
			Help:      "Shopping list computations by result.",
		}, []string{"result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.orders,
		m.pantryLines,
		m.fallbacks,
		m.recategorized,
		m.listBuilds,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) OrderResult(result string) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(result).Inc()
}

func (m *Metrics) PantryLine(action string) {
	if m == nil {
		return
	}
	m.pantryLines.WithLabelValues(action).Inc()
}

func (m *Metrics) CategorizerFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

func (m *Metrics) Recategorized(success bool) {
	if m == nil {
		return
	}
	m.recategorized.WithLabelValues(result(success)).Inc()
}

func (m *Metrics) ListBuilt(success bool) {
	if m == nil {
		return
	}
	m.listBuilds.WithLabelValues(result(success)).Inc()
}

// Middleware observes request latency. Unmatched routes share one label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func result(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}

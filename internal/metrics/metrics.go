// Package metrics exposes Prometheus collectors for the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sports"

type Metrics struct {
	reg         *prometheus.Registry
	reqDuration *prometheus.HistogramVec
	reqTotal    *prometheus.CounterVec
	authTotal   *prometheus.CounterVec
	eventsTotal *prometheus.CounterVec
}

// New builds collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		reqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		reqTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests"},
			[]string{"method", "path", "status"},
		),
		authTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "auth_total", Help: "Authentication outcomes by operation"},
			[]string{"op", "outcome"},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "events_published_total", Help: "Domain events by type and outcome"},
			[]string{"type", "outcome"},
		),
	}
	m.reg.MustRegister(
		m.reqDuration, m.reqTotal, m.authTotal, m.eventsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records request count and latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.reqDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.reqTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Auth counts an authentication outcome, e.g. ("login", "failure").
func (m *Metrics) Auth(op, outcome string) {
	m.authTotal.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Event(typ, outcome string) {
	m.eventsTotal.WithLabelValues(typ, outcome).Inc()
}

package web

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gusta765/portfolio/internal/contact"
)

// Metrics holds the server's prometheus collectors.
type Metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	contactOutcomes *prometheus.CounterVec
	contentReloads  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		contactOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_contact_submissions_total",
				Help: "Contact form submissions by outcome.",
			},
			[]string{"outcome"},
		),
		contentReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_content_reloads_total",
				Help: "Content file reloads, split by whether the text changed.",
			},
			[]string{"changed"},
		),
	}

	for _, c := range []prometheus.Collector{m.requestCount, m.requestDuration, m.contactOutcomes, m.contentReloads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler counts and times every request except scrapes of /metrics.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Route pattern keeps label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestCount.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ContactOutcome counts one contact submission.
func (m *Metrics) ContactOutcome(o contact.Outcome) {
	m.contactOutcomes.WithLabelValues(string(o)).Inc()
}

// ContentReloaded counts one content reload. It matches the watcher's
// reload hook signature.
func (m *Metrics) ContentReloaded(changed bool) {
	m.contentReloads.WithLabelValues(strconv.FormatBool(changed)).Inc()
}

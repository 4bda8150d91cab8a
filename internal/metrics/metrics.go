// Package metrics exposes Prometheus counters for HTTP traffic, auth
// decisions and application submissions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth event labels
const (
	EventLoginSuccess     = "login_success"
	EventLoginFailure     = "login_failure"
	EventRegister         = "register"
	EventRegisterConflict = "register_conflict"
	EventUnauthenticated  = "unauthenticated"
	EventForbidden        = "forbidden"
)

// Recorder is what handlers, middleware and services report to
type Recorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	RecordAuthEvent(event string)
	RecordApplicationSubmitted()
}

// Collector is the Prometheus implementation of Recorder
type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	authEvents  *prometheus.CounterVec
	submissions prometheus.Counter
}

// NewCollector creates a Collector and registers it on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_auth_events_total",
			Help: "Authentication and authorization outcomes.",
		}, []string{"event"}),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_applications_submitted_total",
			Help: "Applications accepted.",
		}),
	}

	reg.MustRegister(c.requests, c.latency, c.authEvents, c.submissions)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordAuthEvent(event string) {
	c.authEvents.WithLabelValues(event).Inc()
}

func (c *Collector) RecordApplicationSubmitted() {
	c.submissions.Inc()
}

// Handler returns the scrape endpoint for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything; used when metrics are not wired
type Nop struct{}

func (Nop) RecordRequest(string, string, int, time.Duration) {}
func (Nop) RecordAuthEvent(string)                           {}
func (Nop) RecordApplicationSubmitted()                      {}

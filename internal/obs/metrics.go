package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	authFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_auth_failures_total",
			Help: "Requests rejected before reaching a handler, by reason token.",
		},
		[]string{"reason"},
	)

	rateLimitRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gateway_ratelimit_rejected_total",
		Help: "Requests rejected by the per-identity fixed-window limiter.",
	})

	readyGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_ready",
		Help: "1 when the last readiness probe succeeded.",
	})

	initOnce sync.Once
)

// Init registers gateway metrics with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpInFlight,
			httpRequestsTotal,
			httpRequestDuration,
			authFailuresTotal,
			rateLimitRejected,
			readyGauge,
		)
	})
}

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CountAuthFailure records a request rejected by the auth chain.
func CountAuthFailure(reason string) {
	authFailuresTotal.WithLabelValues(reason).Inc()
}

// CountRateLimited records a fixed-window rejection.
func CountRateLimited() {
	rateLimitRejected.Inc()
}

// SetReady reflects the latest readiness probe result.
func SetReady(ok bool) {
	if ok {
		readyGauge.Set(1)
		return
	}
	readyGauge.Set(0)
}

// Instrument wraps a handler with RPS/latency/in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses per-resource path segments so metric cardinality
// stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 4 && parts[0] == "v1" && parts[1] == "crm" && parts[2] == "customers" {
		return "/v1/crm/customers/:id"
	}
	if len(parts) == 4 && parts[0] == "v1" && parts[1] == "inventory" && parts[2] == "items" {
		return "/v1/inventory/items/:id"
	}
	return "/" + strings.Join(parts, "/")
}

// statusWriter records the response code written by downstream handlers.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

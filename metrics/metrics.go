// Package metrics provides Prometheus instrumentation for pricing and the
// HTTP API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bcdannyboy/optval/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PricingDuration tracks pricer latency by method and option kind.
	PricingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optval_pricing_duration_seconds",
		Help:    "Time spent pricing a single contract",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"method", "option"})

	// PricingErrors counts failed pricings by error class.
	PricingErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optval_pricing_errors_total",
		Help: "Pricing failures by class",
	}, []string{"class"})

	// CacheLookups counts result cache hits and misses.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optval_cache_lookups_total",
		Help: "Result cache lookups by outcome",
	}, []string{"outcome"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optval_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optval_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
	}, []string{"method", "path"})
)

// ErrorClass maps a pricing error onto a low-cardinality label.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, models.ErrMethodNotFound):
		return "method_not_found"
	case errors.Is(err, models.ErrNumerical):
		return "numerical"
	default:
		return "internal"
	}
}

// ObservePricing records one pricing call.
func ObservePricing(method models.Method, option models.OptionKind, started time.Time, err error) {
	PricingDuration.WithLabelValues(method.String(), option.String()).Observe(time.Since(started).Seconds())
	if err != nil {
		PricingErrors.WithLabelValues(ErrorClass(err)).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Route pattern keeps the path label bounded.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

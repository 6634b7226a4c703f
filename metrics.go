package fastlap

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fastlap_http_requests_total",
		Help: "HTTP requests handled, by method and status code.",
	}, []string{"method", "code"})

	httpRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fastlap_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	})

	lapEntriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fastlap_lap_entries_created_total",
		Help: "Lap entries successfully created.",
	})
)

type statusRecorder struct {
	http.ResponseWriter

	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)

	if !ok {
		return nil, nil, errors.New("fastlap: response writer does not support hijacking")
	}

	return hijacker.Hijack()
}

// MetricsMiddleware records request counts and latencies for /metrics.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(recorder.status)).Inc()
		httpRequestDuration.Observe(time.Since(started).Seconds())
	})
}

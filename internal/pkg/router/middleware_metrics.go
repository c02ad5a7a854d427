package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight *prometheus.GaugeVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "HTTP requests currently being served.",
		}, []string{"method", "path"}),
	}

	reg.MustRegister(m.requests, m.duration, m.inflight)

	return m
}

// middlewareMetrics labels by the matched route pattern, so path parameters do
// not explode label cardinality.
func middlewareMetrics(m *httpMetrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := matchedRoutePath(r)
			start := time.Now()

			m.inflight.WithLabelValues(r.Method, path).Inc()
			rec := newResponseRecorder(w, false)
			defer func() {
				m.inflight.WithLabelValues(r.Method, path).Dec()
				m.duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
				m.requests.WithLabelValues(r.Method, path, strconv.Itoa(rec.Status())).Inc()
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

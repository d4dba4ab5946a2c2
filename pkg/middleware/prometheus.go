// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unmatchedRoute = "unmatched"

var objectives = map[float64]float64{
	0.5:  0.01,
	0.9:  0.01,
	0.99: 0.001,
}

// Prometheus collects metrics about the HTTP requests served by the gateway.
// Totals and latencies are partitioned by status code, method and the chi
// route pattern, so must be installed with Router.Use to see the pattern.
type Prometheus struct {
	requestsInFlight *prometheus.GaugeVec
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.SummaryVec
}

// NewPrometheus registers the request collectors with r under namespace.
// A nil r registers them with a throwaway registry.
func NewPrometheus(r prometheus.Registerer, namespace string) *Prometheus {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	labelsWithRoute := []string{"code", "method", "route"}

	return &Prometheus{
		requestsInFlight: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being served.",
		}, []string{"method"}),
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests processed.",
		}, labelsWithRoute),
		requestDuration: f.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  namespace,
			Name:       "http_request_duration_seconds",
			Help:       "The HTTP request latencies in seconds.",
			Objectives: objectives,
		}, labelsWithRoute),
	}
}

// Wrap instruments h.
func (p *Prometheus) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inFlight := p.requestsInFlight.WithLabelValues(r.Method)
		inFlight.Inc()
		defer inFlight.Dec()

		d := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		h.ServeHTTP(d, r)
		elapsed := time.Since(start).Seconds()

		status := d.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{strconv.Itoa(status), r.Method, routePattern(r)}

		p.requestsTotal.WithLabelValues(labels...).Inc()
		p.requestDuration.WithLabelValues(labels...).Observe(elapsed)
	})
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

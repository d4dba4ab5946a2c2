// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package forward

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/go-core-stack/crossenv-gateway/pkg/target"
)

// upstreamMetrics partitions upstream calls by target, method and outcome.
// The outcome is the upstream status code, or "error" for transport failures.
type upstreamMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newUpstreamMetrics(r prometheus.Registerer, namespace string) *upstreamMetrics {
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}
	f := promauto.With(r)

	labels := []string{"target", "method", "code"}

	return &upstreamMetrics{
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of requests forwarded upstream.",
		}, labels),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream round trip latencies in seconds, including body read.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}
}

func (m *upstreamMetrics) observe(name target.Name, method, code string, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(string(name), method, code).Inc()
	m.requestDuration.WithLabelValues(string(name), method, code).Observe(elapsed.Seconds())
}

func statusLabel(code int) string {
	return strconv.Itoa(code)
}

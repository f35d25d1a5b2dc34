// Package prometheus implements the metrics interfaces on
// prometheus/client_golang, and serves the scrape endpoint.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// rpcMetrics is the Prometheus implementation of metrics.RPCMetrics.
type rpcMetrics struct {
	requests          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	activeConnections prometheus.Gauge
	bytesTransferred  *prometheus.CounterVec
}

// NewRPCMetrics creates a Prometheus-backed RPC metrics instance registered
// against reg.
func NewRPCMetrics(reg *prometheus.Registry) *rpcMetrics {
	return &rpcMetrics{
		requests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfsd_rpc_requests_total",
				Help: "Total RPC requests handled, by program, procedure, and status",
			},
			[]string{"program", "procedure", "status"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nfsd_rpc_duration_seconds",
				Help:    "RPC handling latency by program and procedure",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 100µs .. ~3.2s
			},
			[]string{"program", "procedure"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "nfsd_active_connections",
				Help: "Currently open client TCP connections",
			},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfsd_bytes_transferred_total",
				Help: "Payload bytes moved through READ and WRITE, by direction",
			},
			[]string{"direction"},
		),
	}
}

// RecordRequest implements metrics.RPCMetrics.
func (m *rpcMetrics) RecordRequest(program, procedure string, duration time.Duration, status string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(program, procedure, status).Inc()
	m.duration.WithLabelValues(program, procedure).Observe(duration.Seconds())
}

// ConnectionOpened implements metrics.RPCMetrics.
func (m *rpcMetrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.activeConnections.Inc()
}

// ConnectionClosed implements metrics.RPCMetrics.
func (m *rpcMetrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.activeConnections.Dec()
}

// RecordBytes implements metrics.RPCMetrics.
func (m *rpcMetrics) RecordBytes(direction string, n uint64) {
	if m == nil {
		return
	}
	m.bytesTransferred.WithLabelValues(direction).Add(float64(n))
}

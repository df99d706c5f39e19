// Package metrics defines Prometheus metrics for gigadmin.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gigadmin_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigadmin_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigadmin_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	AdminActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigadmin_admin_actions_total",
			Help: "Completed admin actions by action and entity type",
		},
		[]string{"action", "entity_type"},
	)

	ObserverFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gigadmin_observer_failures_total",
			Help: "Admin action observers that returned an error",
		},
		[]string{"observer"},
	)

	PublishQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gigadmin_publish_queue_depth",
			Help: "Admin actions waiting to be published to redis",
		},
	)

	PublishDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gigadmin_publish_dropped_total",
			Help: "Admin actions dropped because the publish queue was full",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gigadmin_websocket_connections",
			Help: "Active admin feed WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		AdminActions, ObserverFailures,
		PublishQueueDepth, PublishDropped, WSConnections,
	)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "portal_realtime"

	SocketSubsystem   = "socket"
	PollingSubsystem  = "polling"
	OutboundSubsystem = "outbound"
	SinkSubsystem     = "sink"
)

// Общие метрики HTTP клиента.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of REST requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "REST request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Метрики сокета.
var (
	SocketConnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SocketSubsystem,
			Name:      "connects_total",
			Help:      "Total number of socket connect attempts",
		},
		[]string{"feed", "result"},
	)

	SocketReconnectsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SocketSubsystem,
			Name:      "reconnects_scheduled_total",
			Help:      "Total number of scheduled reconnect attempts",
		},
		[]string{"feed"},
	)

	SocketFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SocketSubsystem,
			Name:      "frames_total",
			Help:      "Total number of inbound socket frames",
		},
		[]string{"feed", "type", "status"},
	)
)

// Метрики поллинга.
var (
	PollingActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: PollingSubsystem,
			Name:      "active",
			Help:      "Whether REST polling fallback is active (1) or not (0)",
		},
		[]string{"feed"},
	)

	PollingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PollingSubsystem,
			Name:      "runs_total",
			Help:      "Total number of polling refreshes",
		},
		[]string{"feed", "status"},
	)
)

// Метрики исходящих отправок.
var (
	OutboundSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: OutboundSubsystem,
			Name:      "sends_total",
			Help:      "Total number of outbound sends by transport",
		},
		[]string{"feed", "transport", "status"},
	)
)

// Метрики пересылки событий.
var (
	SinkDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: SinkSubsystem,
			Name:      "deliveries_total",
			Help:      "Total number of events relayed to sinks",
		},
		[]string{"sink", "event", "status"},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 || statusCode == 0 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordSocketConnect(feed, result string) {
	SocketConnectsTotal.WithLabelValues(feed, result).Inc()
}

func RecordReconnectScheduled(feed string) {
	SocketReconnectsScheduled.WithLabelValues(feed).Inc()
}

func RecordFrame(feed, frameType, status string) {
	SocketFramesTotal.WithLabelValues(feed, frameType, status).Inc()
}

func SetPollingActive(feed string, active bool) {
	value := 0.0
	if active {
		value = 1
	}

	PollingActive.WithLabelValues(feed).Set(value)
}

func RecordPollingRun(feed, status string) {
	PollingRunsTotal.WithLabelValues(feed, status).Inc()
}

func RecordOutboundSend(feed, transport, status string) {
	OutboundSendsTotal.WithLabelValues(feed, transport, status).Inc()
}

func RecordSinkDelivery(sink, event, status string) {
	SinkDeliveriesTotal.WithLabelValues(sink, event, status).Inc()
}

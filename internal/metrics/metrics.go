package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notifications"

// Metrics is safe to use through a nil pointer; every Record method is then a no-op.
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Dispatch Metrics
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	ReceiversFiltered   *prometheus.CounterVec
	HistoryRows         prometheus.Counter
	ChainedScheduled    *prometheus.CounterVec
	PushDeliveries      *prometheus.CounterVec

	// SMS Metrics
	SMSSent          *prometheus.CounterVec
	SMSReceived      *prometheus.CounterVec
	ProxyWorkers     prometheus.Gauge
	ProviderDuration *prometheus.HistogramVec

	// Task Metrics
	TasksProcessed *prometheus.CounterVec

	// Database Metrics
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBConnectionErrors prometheus.Counter

	// Validation Metrics
	ValidationErrors *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),
		HTTPResponseSizeBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   []float64{100, 1000, 10_000, 100_000, 1_000_000},
			},
			[]string{"method", "path", "status_code"},
		),

		NotificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sent_total",
				Help:      "Notifications handed to a channel, by channel and category",
			},
			[]string{"channel", "category"},
		),
		NotificationsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failed_total",
				Help:      "Notifications that failed before or during send",
			},
			[]string{"channel", "reason"},
		),
		ReceiversFiltered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "receivers_filtered_total",
				Help:      "Receivers dropped because of their subscription preferences",
			},
			[]string{"channel"},
		),
		HistoryRows: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_rows_total",
				Help:      "Notification history rows written",
			},
		),
		ChainedScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chained_total",
				Help:      "Chained notifications, by mode (inline, delayed, skipped)",
			},
			[]string{"mode"},
		),
		PushDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "push_deliveries_total",
				Help:      "Push deliveries per platform and result",
			},
			[]string{"platform", "result"},
		),

		SMSSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sms_sent_total",
				Help:      "Outbound SMS by resulting status",
			},
			[]string{"status"},
		),
		SMSReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sms_received_total",
				Help:      "Inbound webhook payloads by parse status",
			},
			[]string{"status"},
		),
		ProxyWorkers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sms_proxy_workers",
				Help:      "Service numbers currently being drained by the proxy dispatcher",
			},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sms_provider_duration_seconds",
				Help:      "Duration of SMS provider calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),

		TasksProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_processed_total",
				Help:      "Async tasks processed, by name and result",
			},
			[]string{"task", "result"},
		),

		DBConnectionsInUse: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_in_use",
				Help:      "Number of database connections currently in use",
			},
		),
		DBConnectionsIdle: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_idle",
				Help:      "Number of idle database connections",
			},
		),
		DBConnectionErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_connection_errors_total",
				Help:      "Total number of database connection errors",
			},
		),

		ValidationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of request validation errors",
			},
			[]string{"field", "tag"},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration.Seconds())
	m.HTTPResponseSizeBytes.WithLabelValues(method, path, statusCode).Observe(float64(responseSize))
}

func (m *Metrics) RecordNotificationSent(channel, category string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(channel, category).Inc()
}

func (m *Metrics) RecordNotificationFailed(channel, reason string) {
	if m == nil {
		return
	}
	m.NotificationsFailed.WithLabelValues(channel, reason).Inc()
}

func (m *Metrics) RecordReceiversFiltered(channel string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.ReceiversFiltered.WithLabelValues(channel).Add(float64(count))
}

func (m *Metrics) RecordHistoryRows(count int) {
	if m == nil {
		return
	}
	m.HistoryRows.Add(float64(count))
}

func (m *Metrics) RecordChained(mode string) {
	if m == nil {
		return
	}
	m.ChainedScheduled.WithLabelValues(mode).Inc()
}

func (m *Metrics) RecordPushDelivery(platform string, ok bool) {
	if m == nil {
		return
	}
	m.PushDeliveries.WithLabelValues(platform, result(ok)).Inc()
}

func (m *Metrics) RecordSMSSent(status string) {
	if m == nil {
		return
	}
	m.SMSSent.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordSMSReceived(status string) {
	if m == nil {
		return
	}
	m.SMSReceived.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordProviderCall(duration time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.ProviderDuration.WithLabelValues(result(ok)).Observe(duration.Seconds())
}

func (m *Metrics) ProxyWorkerStarted() {
	if m == nil {
		return
	}
	m.ProxyWorkers.Inc()
}

func (m *Metrics) ProxyWorkerStopped() {
	if m == nil {
		return
	}
	m.ProxyWorkers.Dec()
}

func (m *Metrics) RecordTask(task string, ok bool) {
	if m == nil {
		return
	}
	m.TasksProcessed.WithLabelValues(task, result(ok)).Inc()
}

func (m *Metrics) RecordDBConnectionError() {
	if m == nil {
		return
	}
	m.DBConnectionErrors.Inc()
}

func (m *Metrics) RecordValidationError(field, tag string) {
	if m == nil {
		return
	}
	m.ValidationErrors.WithLabelValues(field, tag).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP layer,
// the approval workflows, and the notification relay.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	decisionTotal   *prometheus.CounterVec
	eventsPublished prometheus.Counter
	eventsDeduped   prometheus.Counter
	wsSessions      prometheus.Gauge
	dbQueryDuration *prometheus.HistogramVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	decisionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_decisions_total",
		Help: "Workflow decisions recorded, by kind and outcome",
	}, []string{"kind", "outcome"})

	eventsPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_events_published_total",
		Help: "Notification events pushed to connected sessions",
	})

	eventsDeduped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_events_deduplicated_total",
		Help: "Notification events suppressed as duplicates",
	})

	wsSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_sessions",
		Help: "Currently connected WebSocket sessions",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, decisionTotal,
		eventsPublished, eventsDeduped, wsSessions, dbQueryDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		decisionTotal:   decisionTotal,
		eventsPublished: eventsPublished,
		eventsDeduped:   eventsDeduped,
		wsSessions:      wsSessions,
		dbQueryDuration: dbQueryDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordWorkflowDecision counts one decision outcome.
func (m *MetricsService) RecordWorkflowDecision(kind, outcome string) {
	if m == nil {
		return
	}
	m.decisionTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordEventPublished counts a delivered notification event.
func (m *MetricsService) RecordEventPublished() {
	if m == nil {
		return
	}
	m.eventsPublished.Inc()
}

// RecordEventDeduplicated counts a suppressed duplicate event.
func (m *MetricsService) RecordEventDeduplicated() {
	if m == nil {
		return
	}
	m.eventsDeduped.Inc()
}

// SessionOpened / SessionClosed track the live WebSocket session gauge.
func (m *MetricsService) SessionOpened() {
	if m == nil {
		return
	}
	m.wsSessions.Inc()
}

func (m *MetricsService) SessionClosed() {
	if m == nil {
		return
	}
	m.wsSessions.Dec()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

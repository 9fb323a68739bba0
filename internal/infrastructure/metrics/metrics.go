package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RateMetrics holds every collector of the rate pipeline. A nil *RateMetrics
// is valid and records nothing.
type RateMetrics struct {
	// Pipeline stages
	TaskStatesTotal     *prometheus.CounterVec
	TaskDuration        *prometheus.HistogramVec
	TasksScheduledTotal *prometheus.CounterVec
	DeadLettersTotal    *prometheus.CounterVec
	TaskRetriesTotal    *prometheus.CounterVec

	// Rate source
	SourceRequestsTotal *prometheus.CounterVec
	SourceLatency       *prometheus.HistogramVec
	SourceFallbackTotal *prometheus.CounterVec
	SourceAvailable     *prometheus.GaugeVec

	// Reads
	QueriesTotal  *prometheus.CounterVec
	LastRateValue *prometheus.GaugeVec

	// Retention
	RetentionDeletedTotal *prometheus.CounterVec
	RetentionErrorsTotal  *prometheus.CounterVec

	// HTTP API
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func NewRateMetrics(reg prometheus.Registerer) *RateMetrics {
	f := promauto.With(reg)
	return &RateMetrics{
		TaskStatesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_task_states_total",
				Help: "Pipeline task state transitions by stage",
			},
			[]string{"stage", "state"},
		),
		TaskDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_task_duration_seconds",
				Help:    "Time spent handling one pipeline task",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"stage", "result"},
		),
		TasksScheduledTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_tasks_scheduled_total",
				Help: "Fetch tasks enqueued by the scheduler",
			},
			[]string{"pair", "result"},
		),
		DeadLettersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_dead_letters_total",
				Help: "Task deliveries given up on",
			},
			[]string{"stage"},
		),
		TaskRetriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_task_retries_total",
				Help: "Redelivery attempts of failed tasks",
			},
			[]string{"stage"},
		),
		SourceRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_source_requests_total",
				Help: "Calls to external rate providers",
			},
			[]string{"provider", "result"},
		),
		SourceLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_source_request_duration_seconds",
				Help:    "Latency of external rate provider calls",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"provider"},
		),
		SourceFallbackTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_source_fallback_total",
				Help: "Rates served by a fallback provider",
			},
			[]string{"primary", "fallback"},
		),
		SourceAvailable: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rate_source_available",
				Help: "1 when the rate source answered the last probe",
			},
			[]string{"source"},
		),
		QueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_queries_total",
				Help: "Rate queries by provenance",
			},
			[]string{"pair", "provenance"},
		),
		LastRateValue: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rate_last_saved_value",
				Help: "Last rate appended to history",
			},
			[]string{"pair"},
		),
		RetentionDeletedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_retention_deleted_total",
				Help: "History records removed by retention sweeps",
			},
			[]string{"pair"},
		),
		RetentionErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_retention_errors_total",
				Help: "Storage targets that failed during a retention sweep",
			},
			[]string{"pair"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_http_requests_total",
				Help: "HTTP requests by route and status class",
			},
			[]string{"route", "method", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

func (m *RateMetrics) RecordTaskState(stage, state string) {
	if m == nil {
		return
	}
	m.TaskStatesTotal.WithLabelValues(stage, state).Inc()
}

func (m *RateMetrics) RecordTaskDuration(stage string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.TaskDuration.WithLabelValues(stage, result(err)).Observe(time.Since(started).Seconds())
}

func (m *RateMetrics) RecordScheduled(pair string, err error) {
	if m == nil {
		return
	}
	m.TasksScheduledTotal.WithLabelValues(pair, result(err)).Inc()
}

func (m *RateMetrics) RecordDeadLetter(stage string) {
	if m == nil {
		return
	}
	m.DeadLettersTotal.WithLabelValues(stage).Inc()
}

func (m *RateMetrics) RecordRetry(stage string) {
	if m == nil {
		return
	}
	m.TaskRetriesTotal.WithLabelValues(stage).Inc()
}

func (m *RateMetrics) RecordSourceRequest(provider string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.SourceRequestsTotal.WithLabelValues(provider, result(err)).Inc()
	m.SourceLatency.WithLabelValues(provider).Observe(time.Since(started).Seconds())
}

func (m *RateMetrics) RecordFallback(primary, fallback string) {
	if m == nil {
		return
	}
	m.SourceFallbackTotal.WithLabelValues(primary, fallback).Inc()
}

func (m *RateMetrics) SetSourceAvailable(source string, available bool) {
	if m == nil {
		return
	}
	v := 0.0
	if available {
		v = 1
	}
	m.SourceAvailable.WithLabelValues(source).Set(v)
}

func (m *RateMetrics) RecordQuery(pair, provenance string) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(pair, provenance).Inc()
}

func (m *RateMetrics) RecordSaved(pair string, value float64) {
	if m == nil {
		return
	}
	m.LastRateValue.WithLabelValues(pair).Set(value)
}

func (m *RateMetrics) RecordRetention(pair string, deleted int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.RetentionErrorsTotal.WithLabelValues(pair).Inc()
		return
	}
	m.RetentionDeletedTotal.WithLabelValues(pair).Add(float64(deleted))
}

func (m *RateMetrics) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status/100)+"xx").Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

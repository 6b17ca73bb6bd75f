// Package metrics defines the Prometheus collectors of tipsgol.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	PaymentNotifications *prometheus.CounterVec
	NewsExtracted        prometheus.Counter
	JobRuns              *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		}),
		PaymentNotifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_notifications_total",
			Help: "Gateway notifications by outcome",
		}, []string{"outcome"}),
		NewsExtracted: f.NewCounter(prometheus.CounterOpts{
			Name: "news_extracted_total",
			Help: "News items stored from RSS feeds",
		}),
		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Scheduled job runs by job and result",
		}, []string{"job", "result"}),
	}
}

// NewDefault registers on the default registry served by promhttp.Handler.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

// PaymentNotification counts a processed gateway notification.
func (m *Metrics) PaymentNotification(outcome string) {
	if m == nil {
		return
	}
	m.PaymentNotifications.WithLabelValues(outcome).Inc()
}

// NewsStored counts stored news items.
func (m *Metrics) NewsStored(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.NewsExtracted.Add(float64(n))
}

// JobRun counts a scheduled job execution.
func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.JobRuns.WithLabelValues(job, result).Inc()
}

// Package metrics exposes the engine's own operational counters on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SchedulerTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_scheduler_ticks_total",
		Help: "Completed scheduler ticks per task.",
	}, []string{"task"})

	TickErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_scheduler_tick_errors_total",
		Help: "Scheduler ticks that ended in a logged error, per task.",
	}, []string{"task"})

	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_alerts_created_total",
		Help: "New alerts created, per severity.",
	}, []string{"severity"})

	AlertsEscalated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sentinel_alerts_escalated_total",
		Help: "Alerts escalated by the escalation sweep.",
	})

	DispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sentinel_notification_failures_total",
		Help: "Failed notification sends, per channel.",
	}, []string{"channel"})

	ProbeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sentinel_probe_duration_seconds",
		Help:    "Health probe round-trip time, per service.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sentinel_dispatch_duration_seconds",
		Help:    "Full notification fan-out duration.",
		Buckets: prometheus.DefBuckets,
	})
)

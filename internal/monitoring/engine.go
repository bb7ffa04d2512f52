// Package monitoring wires the stores, services, and scheduler into one
// engine the binary and the API operate on.
package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/merchantops/sentinel/internal/config"
	"github.com/merchantops/sentinel/internal/monitoring/database"
	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/merchantops/sentinel/internal/monitoring/service/alerts"
	"github.com/merchantops/sentinel/internal/monitoring/service/collector"
	"github.com/merchantops/sentinel/internal/monitoring/service/evaluator"
	"github.com/merchantops/sentinel/internal/monitoring/service/health"
	"github.com/merchantops/sentinel/internal/monitoring/service/notify"
	"github.com/merchantops/sentinel/internal/monitoring/service/report"
	"github.com/merchantops/sentinel/internal/monitoring/service/retention"
	"github.com/merchantops/sentinel/internal/monitoring/service/rulecatalog"
	"github.com/merchantops/sentinel/internal/monitoring/service/scheduler"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Engine owns every moving part of the monitoring core. The mutex serializes
// configuration reads against UpdateMonitoringConfig, which swaps the
// Aggregator, Sweeper, and scheduler as a unit.
type Engine struct {
	mu  sync.Mutex
	cfg *config.Config

	Catalog    *rulecatalog.Catalog
	Manager    *alerts.Manager
	Evaluator  *evaluator.Evaluator
	Aggregator *health.Aggregator
	Collector  *collector.Collector
	Reports    *report.Generator
	Sweeper    *retention.Sweeper

	history *health.History
	sampler health.InfraSampler

	metricStore database.MetricStore
	alertStore  database.AlertStore
	sched       *scheduler.Scheduler
}

// New builds the engine on top of the shared stores. The rule catalog is
// seeded with defaults and optionally overlaid from the configured YAML file.
func New(cfg *config.Config, metricStore database.MetricStore, alertStore database.AlertStore, rdb *redis.Client) *Engine {
	catalog := rulecatalog.New()
	catalog.SeedDefaults()
	if err := catalog.LoadFile(cfg.Monitoring.RulesFile); err != nil {
		log.Error().Err(err).Str("file", cfg.Monitoring.RulesFile).Msg("rules file load failed; using seeded defaults")
	}

	dispatcher := buildDispatcher(cfg, rdb)
	manager := alerts.NewManager(alertStore, dispatcher)
	eval := evaluator.New(catalog, metricStore, manager)

	history := health.NewHistory(24 * time.Hour)
	sampler := health.NewHostSampler()

	e := &Engine{
		cfg:         cfg,
		Catalog:     catalog,
		Manager:     manager,
		Evaluator:   eval,
		Collector:   collector.New(sampler, history, metricStore),
		Reports:     report.NewGenerator(alertStore, history),
		Sweeper:     retention.NewSweeper(metricStore, alertStore, cfg.Monitoring.MetricRetentionDays, cfg.Monitoring.AlertRetentionDays),
		history:     history,
		sampler:     sampler,
		metricStore: metricStore,
		alertStore:  alertStore,
	}
	e.Aggregator = e.buildAggregator(cfg)
	e.sched = e.buildScheduler(cfg)
	return e
}

// buildAggregator constructs probes and thresholds from the current monitoring
// settings, reusing the engine's rolling history and host sampler so a config
// update does not discard collected health data.
func (e *Engine) buildAggregator(cfg *config.Config) *health.Aggregator {
	probeTimeout := config.Duration(cfg.Monitoring.ProbeTimeout, 5*time.Second)
	degraded := config.Duration(cfg.Monitoring.ResponseTimeDegraded, 2*time.Second)
	probes := make([]health.Probe, 0, len(cfg.Probes))
	for _, p := range cfg.Probes {
		probes = append(probes, health.NewHTTPProbe(p.Name, p.URL, probeTimeout, degraded))
	}
	return health.NewAggregator(probes, e.sampler, e.history, e.metricStore, probeTimeout, health.Thresholds{
		MemoryDegradedPct:  cfg.Monitoring.MemoryDegradedPct,
		LoadDegradedFactor: cfg.Monitoring.LoadDegradedFactor,
	})
}

func buildDispatcher(cfg *config.Config, rdb *redis.Client) *notify.Dispatcher {
	var senders []notify.Sender
	if cfg.Notify.SMTPHost != "" && len(cfg.Notify.EmailReceivers) > 0 {
		senders = append(senders, notify.NewEmailSender(cfg.Notify.SMTPHost, cfg.Notify.SMTPPort,
			cfg.Notify.EmailFrom, cfg.Notify.EmailPassword, cfg.Notify.EmailReceivers))
	}
	if cfg.Notify.SlackToken != "" {
		senders = append(senders, notify.NewSlackSender(cfg.Notify.SlackToken, cfg.Notify.SlackChannel))
	}
	if cfg.Notify.WebhookURL != "" {
		senders = append(senders, notify.NewWebhookSender(cfg.Notify.WebhookURL,
			config.Duration(cfg.Notify.WebhookTimeout, 10*time.Second)))
	}
	if rdb != nil {
		senders = append(senders, notify.NewDashboardSender(rdb, cfg.Notify.DashboardChannel))
	}
	return notify.NewDispatcher(config.Duration(cfg.Notify.DispatchTimeout, 15*time.Second), senders...)
}

// buildScheduler binds the current Aggregator and Sweeper into the task
// closures, so a rebuilt scheduler always runs against the components that were
// in place when it was built.
func (e *Engine) buildScheduler(cfg *config.Config) *scheduler.Scheduler {
	s := scheduler.New()
	escalation := alerts.NewEscalationSweep(e.Manager, e.Catalog)
	agg := e.Aggregator
	sweeper := e.Sweeper
	reports := e.Reports

	s.AddTask(scheduler.Task{
		Name:     "health-check",
		Interval: config.Duration(cfg.Monitoring.HealthCheckInterval, 30*time.Second),
		Run: func(ctx context.Context) error {
			_, err := agg.RunChecks(ctx)
			return err
		},
	})
	s.AddTask(scheduler.Task{
		Name:     "metric-collection",
		Interval: config.Duration(cfg.Monitoring.MetricCollectionInterval, 60*time.Second),
		Run:      e.Collector.CollectInfra,
	})
	s.AddTask(scheduler.Task{
		Name:     "alert-check",
		Interval: config.Duration(cfg.Monitoring.AlertCheckInterval, 30*time.Second),
		Run:      e.Evaluator.EvaluateAll,
	})
	s.AddTask(scheduler.Task{
		Name:     "uptime",
		Interval: config.Duration(cfg.Monitoring.UptimeInterval, 300*time.Second),
		Run:      e.Collector.RecordUptime,
	})
	s.AddTask(scheduler.Task{
		Name:     "cleanup",
		Interval: config.Duration(cfg.Monitoring.CleanupInterval, 24*time.Hour),
		Run:      sweeper.Sweep,
	})

	s.AddCalendarTask(scheduler.CalendarTask{
		Name: "escalation-sweep",
		Next: scheduler.EveryMinutes(15),
		Run:  escalation.Run,
	})
	s.AddCalendarTask(scheduler.CalendarTask{
		Name: "spot-check",
		Next: scheduler.EveryMinutes(5),
		Run: func(ctx context.Context) error {
			_, err := agg.RunChecks(ctx)
			return err
		},
	})
	s.AddCalendarTask(scheduler.CalendarTask{
		Name: "hourly-rollup",
		Next: scheduler.HourlyAt(0),
		Run:  e.Collector.RollupHealth,
	})
	s.AddCalendarTask(scheduler.CalendarTask{
		Name: "daily-report",
		Next: scheduler.DailyAt(0, 5),
		Run: func(ctx context.Context) error {
			_, err := reports.Generate(ctx, report.PeriodDaily)
			return err
		},
	})
	s.AddCalendarTask(scheduler.CalendarTask{
		Name: "weekly-report",
		Next: scheduler.WeeklyAt(time.Monday, 0, 10),
		Run: func(ctx context.Context) error {
			_, err := reports.Generate(ctx, report.PeriodWeekly)
			return err
		},
	})
	s.AddCalendarTask(scheduler.CalendarTask{
		Name: "monthly-report",
		Next: scheduler.MonthlyAt(1, 0, 15),
		Run: func(ctx context.Context) error {
			_, err := reports.Generate(ctx, report.PeriodMonthly)
			return err
		},
	})
	return s
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sched.Start()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sched.Stop()
}

// AlertStore exposes the alert store for API-layer listing queries.
func (e *Engine) AlertStore() database.AlertStore { return e.alertStore }

// MonitoringSettings returns a copy of the current monitoring settings, safe to
// serialize while an update is in flight.
func (e *Engine) MonitoringSettings() config.MonitoringConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Monitoring
}

// UpdateMonitoringConfig applies new interval/threshold settings by rebuilding
// the components that captured them at construction time (aggregator, probes,
// retention sweeper) and restarting the scheduler against the rebuilt set. The
// whole stop/rebuild/start sequence runs under the engine mutex so concurrent
// updates cannot leave a second scheduler running.
func (e *Engine) UpdateMonitoringConfig(mc config.MonitoringConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg.Monitoring = mc
	e.sched.Stop()
	e.Sweeper = retention.NewSweeper(e.metricStore, e.alertStore, mc.MetricRetentionDays, mc.AlertRetentionDays)
	e.Aggregator = e.buildAggregator(e.cfg)
	e.sched = e.buildScheduler(e.cfg)
	e.sched.Start()
	log.Info().Msg("monitoring config updated; scheduler restarted")
}

// SystemStatus returns the last computed aggregate, forcing a fresh sweep when
// none exists yet, and overlays live active-alert counts.
func (e *Engine) SystemStatus(ctx context.Context) (model.SystemStatus, error) {
	e.mu.Lock()
	agg := e.Aggregator
	e.mu.Unlock()

	status, ok := agg.Last()
	if !ok {
		fresh, err := agg.RunChecks(ctx)
		if err != nil {
			return model.SystemStatus{}, err
		}
		status = fresh
	}
	counts := make(map[model.Severity]int)
	if active, err := e.Manager.Active(ctx); err == nil {
		for _, a := range active {
			counts[a.Severity]++
		}
	} else {
		log.Error().Err(err).Msg("active alert count failed; serving health-only status")
	}
	status.ActiveAlerts = counts
	return status, nil
}

// MetricsHistory serves dashboard trend queries over the metric store.
func (e *Engine) MetricsHistory(ctx context.Context, t model.MetricType, c model.MetricCategory, hours int) ([]model.MetricSample, error) {
	if hours <= 0 {
		hours = 24
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	return e.metricStore.Query(ctx, t, c, since)
}

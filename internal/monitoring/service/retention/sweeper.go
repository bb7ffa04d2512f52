// Package retention bounds the age of stored samples and resolved alerts.
package retention

import (
	"context"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/database"
	"github.com/rs/zerolog/log"
)

type Sweeper struct {
	metrics    database.MetricStore
	alerts     database.AlertStore
	metricDays int
	alertDays  int
}

func NewSweeper(metrics database.MetricStore, alerts database.AlertStore, metricDays, alertDays int) *Sweeper {
	if metricDays <= 0 {
		metricDays = 30
	}
	if alertDays <= 0 {
		alertDays = 90
	}
	return &Sweeper{metrics: metrics, alerts: alerts, metricDays: metricDays, alertDays: alertDays}
}

// Sweep deletes expired metric samples and resolved alerts past retention.
// ACTIVE and ACKNOWLEDGED alerts are never touched regardless of age: the
// alert delete path filters on RESOLVED.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := time.Now().UTC()

	metricCutoff := now.AddDate(0, 0, -s.metricDays)
	nMetrics, err := s.metrics.DeleteOlderThan(ctx, metricCutoff)
	if err != nil {
		return err
	}

	alertCutoff := now.AddDate(0, 0, -s.alertDays)
	nAlerts, err := s.alerts.DeleteResolvedOlderThan(ctx, alertCutoff)
	if err != nil {
		return err
	}

	log.Info().Int64("metrics_deleted", nMetrics).Int64("alerts_deleted", nAlerts).
		Time("metric_cutoff", metricCutoff).Time("alert_cutoff", alertCutoff).
		Msg("retention sweep completed")
	return nil
}

// Package collector turns host samples and health history into metric samples
// for rule evaluation and trend queries.
package collector

import (
	"context"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/database"
	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/merchantops/sentinel/internal/monitoring/service/health"
	"github.com/rs/zerolog/log"
)

type Collector struct {
	sampler health.InfraSampler
	history *health.History
	metrics database.MetricStore
}

func New(sampler health.InfraSampler, history *health.History, store database.MetricStore) *Collector {
	return &Collector{sampler: sampler, history: history, metrics: store}
}

// CollectInfra appends one SYSTEM sample per host resource. Runs on the
// metric-collection loop.
func (c *Collector) CollectInfra(ctx context.Context) error {
	infra, err := c.sampler.Sample(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	samples := []*model.MetricSample{
		{Type: model.MetricTypeSystem, Category: model.CategoryCPUUsage, Name: "host_load1", Value: infra.Load1, Unit: "load", CreatedAt: now},
		{Type: model.MetricTypeSystem, Category: model.CategoryMemoryUsage, Name: "host_memory_used", Value: infra.MemoryUsedPct, Unit: "%", CreatedAt: now},
		{Type: model.MetricTypeSystem, Category: model.CategoryDiskUsage, Name: "host_disk_used", Value: infra.DiskUsedPct, Unit: "%", CreatedAt: now},
	}
	for _, s := range samples {
		if err := c.metrics.Append(ctx, s); err != nil {
			// keep appending the remaining resources
			log.Error().Err(err).Str("metric", s.Name).Msg("append infra sample failed")
		}
	}
	return nil
}

// RecordUptime appends one UPTIME sample per monitored service, computed from
// the rolling health history. Runs on the uptime loop.
func (c *Collector) RecordUptime(ctx context.Context) error {
	since := time.Now().Add(-24 * time.Hour)
	now := time.Now().UTC()
	for _, svc := range c.history.Services() {
		pct := c.history.UptimePct(svc, since)
		sample := &model.MetricSample{
			Type:      model.MetricTypeSystem,
			Category:  model.CategoryUptime,
			Name:      svc + "_uptime",
			Value:     pct,
			Unit:      "%",
			Source:    svc,
			CreatedAt: now,
		}
		if err := c.metrics.Append(ctx, sample); err != nil {
			log.Error().Err(err).Str("service", svc).Msg("append uptime sample failed")
		}
	}
	return nil
}

// RollupHealth aggregates the last hour of health history into average and max
// response-time samples. Runs on the hourly calendar job.
func (c *Collector) RollupHealth(ctx context.Context) error {
	since := time.Now().Add(-time.Hour)
	now := time.Now().UTC()
	for _, svc := range c.history.Services() {
		results := c.history.Recent(svc, since)
		if len(results) == 0 {
			continue
		}
		var sum, max float64
		for _, r := range results {
			sum += r.ResponseTimeMS
			if r.ResponseTimeMS > max {
				max = r.ResponseTimeMS
			}
		}
		avg := sum / float64(len(results))
		rollups := []*model.MetricSample{
			{Type: model.MetricTypePerformance, Category: model.CategoryResponseTime, Name: svc + "_response_time_hourly_avg", Value: avg, Unit: "ms", Source: svc, CreatedAt: now},
			{Type: model.MetricTypePerformance, Category: model.CategoryResponseTime, Name: svc + "_response_time_hourly_max", Value: max, Unit: "ms", Source: svc, CreatedAt: now},
		}
		for _, s := range rollups {
			if err := c.metrics.Append(ctx, s); err != nil {
				log.Error().Err(err).Str("metric", s.Name).Msg("append rollup sample failed")
			}
		}
	}
	return nil
}

package health

import (
	"context"
	"sync"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/database"
	"github.com/merchantops/sentinel/internal/monitoring/metrics"
	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/rs/zerolog/log"
)

// Thresholds classify infrastructure pressure as degraded.
type Thresholds struct {
	MemoryDegradedPct  float64
	LoadDegradedFactor float64
}

// Aggregator fans out to every probe concurrently, samples infrastructure, and
// folds the results into one SystemStatus. Each probe gets its own timeout so
// a stuck dependency cannot stall the sweep.
//
// Every check result is also appended to the rolling history and written to the
// MetricStore as a RESPONSE_TIME performance sample. That single write path is
// the only coupling between the health subsystem and rule evaluation.
type Aggregator struct {
	probes       []Probe
	sampler      InfraSampler
	history      *History
	metrics      database.MetricStore
	probeTimeout time.Duration
	thresholds   Thresholds

	mu   sync.RWMutex
	last *model.SystemStatus
}

func NewAggregator(probes []Probe, sampler InfraSampler, history *History, store database.MetricStore, probeTimeout time.Duration, th Thresholds) *Aggregator {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	if th.MemoryDegradedPct <= 0 {
		th.MemoryDegradedPct = 85
	}
	if th.LoadDegradedFactor <= 0 {
		th.LoadDegradedFactor = 0.8
	}
	return &Aggregator{
		probes:       probes,
		sampler:      sampler,
		history:      history,
		metrics:      store,
		probeTimeout: probeTimeout,
		thresholds:   th,
	}
}

// Thresholds reports the classification thresholds in effect, with defaults
// applied.
func (a *Aggregator) Thresholds() Thresholds { return a.thresholds }

// RunChecks performs one full health sweep and returns the aggregate.
func (a *Aggregator) RunChecks(ctx context.Context) (model.SystemStatus, error) {
	results := make([]model.HealthCheckResult, len(a.probes))
	var wg sync.WaitGroup
	for i, p := range a.probes {
		wg.Add(1)
		go func(i int, p Probe) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, a.probeTimeout)
			defer cancel()
			start := time.Now()
			results[i] = p.Check(pctx)
			metrics.ProbeDuration.WithLabelValues(p.ServiceName()).Observe(time.Since(start).Seconds())
		}(i, p)
	}

	var infra model.InfraMetrics
	var infraErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		sctx, cancel := context.WithTimeout(ctx, a.probeTimeout)
		defer cancel()
		infra, infraErr = a.sampler.Sample(sctx)
	}()
	wg.Wait()

	if infraErr != nil {
		log.Error().Err(infraErr).Msg("infrastructure sampling failed")
	}

	for _, r := range results {
		a.history.Append(r)
		a.recordResponseTime(ctx, r)
	}

	status := model.SystemStatus{
		Overall:   a.classify(results, infra),
		Services:  results,
		Infra:     infra,
		CheckedAt: time.Now().UTC(),
	}
	a.mu.Lock()
	a.last = &status
	a.mu.Unlock()
	return status, nil
}

// Last returns the most recently computed status, so a dashboard read never
// blocks on a sweep and never fails with it.
func (a *Aggregator) Last() (model.SystemStatus, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return model.SystemStatus{}, false
	}
	return *a.last, true
}

// History exposes the rolling per-service buffer.
func (a *Aggregator) History() *History { return a.history }

func (a *Aggregator) classify(results []model.HealthCheckResult, infra model.InfraMetrics) model.OverallState {
	degraded := false
	for _, r := range results {
		switch r.Status {
		case model.HealthUnhealthy:
			return model.OverallDown
		case model.HealthDegraded:
			degraded = true
		}
	}
	if infra.MemoryUsedPct > a.thresholds.MemoryDegradedPct {
		degraded = true
	}
	if infra.LogicalCPUs > 0 && infra.Load1 > a.thresholds.LoadDegradedFactor*float64(infra.LogicalCPUs) {
		degraded = true
	}
	if degraded {
		return model.OverallDegraded
	}
	return model.OverallHealthy
}

func (a *Aggregator) recordResponseTime(ctx context.Context, r model.HealthCheckResult) {
	sample := &model.MetricSample{
		Type:      model.MetricTypePerformance,
		Category:  model.CategoryResponseTime,
		Name:      r.ServiceName + "_response_time",
		Value:     r.ResponseTimeMS,
		Unit:      "ms",
		Source:    r.ServiceName,
		CreatedAt: r.Timestamp,
	}
	if err := a.metrics.Append(ctx, sample); err != nil {
		log.Error().Err(err).Str("service", r.ServiceName).Msg("record response time sample failed")
	}
}

// Package evaluator tests enabled alert rules against the windowed mean of
// recent metric samples.
package evaluator

import (
	"context"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/database"
	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/merchantops/sentinel/internal/monitoring/service/alerts"
	"github.com/merchantops/sentinel/internal/monitoring/service/rulecatalog"
	"github.com/rs/zerolog/log"
)

type Evaluator struct {
	catalog *rulecatalog.Catalog
	metrics database.MetricStore
	manager *alerts.Manager
	nowFn   func() time.Time
}

func New(catalog *rulecatalog.Catalog, metrics database.MetricStore, manager *alerts.Manager) *Evaluator {
	return &Evaluator{catalog: catalog, metrics: metrics, manager: manager, nowFn: time.Now}
}

// EvaluateAll runs one evaluation tick over every enabled rule. Rules are
// independent: a store failure on one rule is logged and the rest continue.
func (e *Evaluator) EvaluateAll(ctx context.Context) error {
	for _, rule := range e.catalog.Enabled() {
		if err := e.evaluate(ctx, &rule); err != nil {
			log.Error().Err(err).Str("rule", rule.Name).Msg("rule evaluation failed")
		}
	}
	return nil
}

func (e *Evaluator) evaluate(ctx context.Context, rule *model.AlertRule) error {
	since := e.nowFn().Add(-rule.Window())
	samples, err := e.metrics.Query(ctx, rule.MetricType, rule.MetricCategory, since)
	if err != nil {
		return err
	}
	// no data in the window: neither raise nor clear
	if len(samples) == 0 {
		return nil
	}

	mean := windowMean(samples)
	if !EvaluateCondition(rule.Condition.Operator, mean, rule.Condition.Threshold) {
		return nil
	}

	latest := samples[len(samples)-1]
	_, err = e.manager.CreateOrUpdate(ctx, rule, mean, &latest)
	return err
}

// windowMean smooths instantaneous noise: the rule's duration acts as a
// sustained-condition requirement rather than a single-spike trigger.
func windowMean(samples []model.MetricSample) float64 {
	var sum float64
	for _, s := range samples {
		sum += s.Value
	}
	return sum / float64(len(samples))
}

// EvaluateCondition applies the rule operator. Unknown operators evaluate
// false, so a bad rule fails closed instead of paging.
func EvaluateCondition(op model.Operator, value, threshold float64) bool {
	switch op {
	case model.OpGT:
		return value > threshold
	case model.OpLT:
		return value < threshold
	case model.OpGTE:
		return value >= threshold
	case model.OpLTE:
		return value <= threshold
	case model.OpEQ:
		return value == threshold
	case model.OpNEQ:
		return value != threshold
	default:
		return false
	}
}

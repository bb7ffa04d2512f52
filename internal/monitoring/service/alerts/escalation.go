package alerts

import (
	"context"

	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/merchantops/sentinel/internal/monitoring/service/rulecatalog"
	"github.com/rs/zerolog/log"
)

// EscalationSweep walks un-escalated HIGH/CRITICAL alerts on its own cadence,
// distinct from rule evaluation. Escalation is monotonic: the IsEscalated
// guard means it fires at most once per alert.
type EscalationSweep struct {
	manager *Manager
	catalog *rulecatalog.Catalog
}

func NewEscalationSweep(manager *Manager, catalog *rulecatalog.Catalog) *EscalationSweep {
	return &EscalationSweep{manager: manager, catalog: catalog}
}

// Run performs one sweep. Per-alert failures are logged and do not stop the
// rest of the sweep.
func (s *EscalationSweep) Run(ctx context.Context) error {
	active, err := s.manager.store.FindBy(ctx, model.StatusActive, "")
	if err != nil {
		return err
	}
	now := s.manager.nowFn().UTC()
	for i := range active {
		a := &active[i]
		if !a.Escalatable() {
			continue
		}
		rule := s.ruleFor(a)
		threshold := model.DefaultEscalateAfter
		if rule != nil {
			threshold = rule.EscalateAfter()
		}
		if a.Age(now) < threshold {
			continue
		}

		escalated, err := s.manager.Escalate(ctx, a.ID)
		if err != nil {
			log.Error().Err(err).Str("alert", a.ID).Msg("escalation failed")
			continue
		}
		channels := escalated.NotificationChannels
		if rule != nil && rule.Escalation != nil {
			channels = unionChannels(rule.Escalation.EscalateToChannels, channels)
		}
		log.Warn().Str("alert", escalated.ID).Str("metric", escalated.MetricName).
			Dur("age", a.Age(now)).Msg("alert escalated")
		s.manager.dispatch(ctx, escalated, channels)
	}
	return nil
}

// ruleFor resolves the rule behind an alert through the dedup key: the alert's
// metric name is the rule name and the alert type is derived from the rule's
// metric type.
func (s *EscalationSweep) ruleFor(a *model.Alert) *model.AlertRule {
	for _, r := range s.catalog.List() {
		if r.Name == a.MetricName && r.AlertType() == a.AlertType {
			rule := r
			return &rule
		}
	}
	return nil
}

func unionChannels(a, b []model.Channel) []model.Channel {
	out := append([]model.Channel(nil), a...)
	seen := make(map[model.Channel]struct{}, len(a))
	for _, ch := range a {
		seen[ch] = struct{}{}
	}
	for _, ch := range b {
		if _, ok := seen[ch]; !ok {
			out = append(out, ch)
		}
	}
	return out
}

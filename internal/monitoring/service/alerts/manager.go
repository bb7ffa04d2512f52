// Package alerts owns the alert lifecycle: deduplicated creation, repeat
// detection bookkeeping, operator transitions, and escalation.
package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/merchantops/sentinel/internal/monitoring/database"
	"github.com/merchantops/sentinel/internal/monitoring/metrics"
	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/merchantops/sentinel/internal/monitoring/service/notify"
	"github.com/rs/zerolog/log"
)

// Notifier is the dispatch entry point the manager fans out through.
type Notifier interface {
	Send(ctx context.Context, a *model.Alert, channels []model.Channel) (notify.Result, error)
}

type Manager struct {
	store    database.AlertStore
	notifier Notifier

	// keyed locks make the find-active/create-or-update pair atomic per dedup
	// key across concurrent evaluation ticks
	mu    sync.Mutex
	locks map[string]*sync.Mutex

	nowFn func() time.Time
}

func NewManager(store database.AlertStore, notifier Notifier) *Manager {
	return &Manager{
		store:    store,
		notifier: notifier,
		locks:    make(map[string]*sync.Mutex),
		nowFn:    time.Now,
	}
}

func dedupKey(at model.AlertType, metricName string) string {
	return string(at) + "|" + metricName
}

func (m *Manager) keyLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// CreateOrUpdate is the single entry point for detections coming out of rule
// evaluation. A repeat detection updates the existing open alert in place,
// whether it is ACTIVE or already acknowledged, and sends nothing; only a
// brand-new alert is dispatched.
func (m *Manager) CreateOrUpdate(ctx context.Context, rule *model.AlertRule, value float64, sample *model.MetricSample) (*model.Alert, error) {
	alertType := rule.AlertType()
	key := dedupKey(alertType, rule.Name)
	l := m.keyLock(key)
	l.Lock()
	defer l.Unlock()

	existing, err := m.store.FindActive(ctx, alertType, rule.Name)
	if err != nil {
		return nil, fmt.Errorf("lookup active alert: %w", err)
	}
	now := m.nowFn().UTC()

	if existing != nil {
		existing.OccurrenceCount++
		existing.CurrentValue = value
		existing.LastOccurrence = now
		if err := m.store.Save(ctx, existing); err != nil {
			return nil, fmt.Errorf("update alert: %w", err)
		}
		log.Debug().Str("alert", existing.ID).Int("occurrences", existing.OccurrenceCount).
			Str("metric", existing.MetricName).Msg("repeat detection folded into open alert")
		return existing, nil
	}

	alert := &model.Alert{
		ID:                   uuid.NewString(),
		AlertType:            alertType,
		Severity:             rule.Severity,
		MetricName:           rule.Name,
		CurrentValue:         value,
		ThresholdValue:       rule.Condition.Threshold,
		Operator:             rule.Condition.Operator,
		Status:               model.StatusActive,
		OccurrenceCount:      1,
		LastOccurrence:       now,
		NotificationChannels: append([]model.Channel(nil), rule.Channels...),
		CreatedAt:            now,
	}
	if sample != nil {
		alert.Unit = sample.Unit
		alert.Source = sample.Source
		alert.Endpoint = sample.Endpoint
	}
	if err := m.store.Save(ctx, alert); err != nil {
		return nil, fmt.Errorf("create alert: %w", err)
	}
	metrics.AlertsCreated.WithLabelValues(string(alert.Severity)).Inc()
	log.Info().Str("alert", alert.ID).Str("metric", alert.MetricName).
		Str("severity", string(alert.Severity)).Float64("value", value).Msg("alert created")

	m.dispatch(ctx, alert, alert.NotificationChannels)
	return alert, nil
}

// dispatch sends the alert and records the coarse bookkeeping plus per-channel
// outcomes. Dispatch failure never invalidates the alert itself.
func (m *Manager) dispatch(ctx context.Context, a *model.Alert, channels []model.Channel) {
	if m.notifier == nil || len(channels) == 0 {
		return
	}
	if _, err := m.notifier.Send(ctx, a, channels); err != nil {
		a.NotificationRetries++
		log.Error().Err(err).Str("alert", a.ID).Int("retries", a.NotificationRetries).
			Msg("alert notification dispatch failed")
	} else {
		a.NotificationSent = true
	}
	if err := m.store.Save(ctx, a); err != nil {
		log.Error().Err(err).Str("alert", a.ID).Msg("persist notification bookkeeping failed")
	}
}

// Acknowledge marks an alert as seen by an operator. Further occurrence updates
// still apply; acknowledgement does not pause detection.
func (m *Manager) Acknowledge(ctx context.Context, alertID, userID, note string) (*model.Alert, error) {
	a, err := m.store.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a.Status == model.StatusResolved {
		return nil, model.ErrAlertResolved
	}
	now := m.nowFn().UTC()
	a.Status = model.StatusAcknowledged
	a.AcknowledgedBy = userID
	a.AcknowledgedAt = &now
	a.AcknowledgedNote = note
	if err := m.store.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("acknowledge alert: %w", err)
	}
	log.Info().Str("alert", a.ID).Str("user", userID).Msg("alert acknowledged")
	return a, nil
}

// Resolve closes an alert. RESOLVED is terminal; a later detection of the same
// condition produces a new alert id.
func (m *Manager) Resolve(ctx context.Context, alertID, userID, note, action string) (*model.Alert, error) {
	a, err := m.store.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a.Status == model.StatusResolved {
		return nil, model.ErrAlertResolved
	}
	now := m.nowFn().UTC()
	a.Status = model.StatusResolved
	a.ResolvedBy = userID
	a.ResolvedAt = &now
	a.ResolvedNote = note
	a.ResolvedAction = action
	if err := m.store.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("resolve alert: %w", err)
	}
	log.Info().Str("alert", a.ID).Str("user", userID).Str("action", action).Msg("alert resolved")
	return a, nil
}

// Escalate flips the one-shot escalation flag. Only the escalation sweep calls
// this; create-or-update never does.
func (m *Manager) Escalate(ctx context.Context, alertID string) (*model.Alert, error) {
	a, err := m.store.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if a.IsEscalated {
		return a, nil
	}
	now := m.nowFn().UTC()
	a.IsEscalated = true
	a.EscalatedAt = &now
	if err := m.store.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("escalate alert: %w", err)
	}
	metrics.AlertsEscalated.Inc()
	return a, nil
}

// Active returns current non-resolved alerts for dashboards, ACTIVE first.
func (m *Manager) Active(ctx context.Context) ([]model.Alert, error) {
	active, err := m.store.FindBy(ctx, model.StatusActive, "")
	if err != nil {
		return nil, err
	}
	acked, err := m.store.FindBy(ctx, model.StatusAcknowledged, "")
	if err != nil {
		return nil, err
	}
	return append(active, acked...), nil
}

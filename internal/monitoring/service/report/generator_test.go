package report

import (
	"context"
	"testing"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/merchantops/sentinel/internal/monitoring/service/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlertStore struct {
	alerts []model.Alert
	since  time.Time
}

func (s *fakeAlertStore) Save(ctx context.Context, a *model.Alert) error { return nil }

func (s *fakeAlertStore) FindByID(ctx context.Context, id string) (*model.Alert, error) {
	return nil, model.ErrAlertNotFound
}

func (s *fakeAlertStore) FindActive(ctx context.Context, at model.AlertType, metricName string) (*model.Alert, error) {
	return nil, nil
}

func (s *fakeAlertStore) FindBy(ctx context.Context, status model.AlertStatus, severity model.Severity) ([]model.Alert, error) {
	return nil, nil
}

func (s *fakeAlertStore) FindSince(ctx context.Context, since time.Time) ([]model.Alert, error) {
	s.since = since
	return s.alerts, nil
}

func (s *fakeAlertStore) DeleteResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestPeriodWindow(t *testing.T) {
	assert.Equal(t, 24*time.Hour, PeriodDaily.Window())
	assert.Equal(t, 7*24*time.Hour, PeriodWeekly.Window())
	assert.Equal(t, 30*24*time.Hour, PeriodMonthly.Window())
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	store := &fakeAlertStore{alerts: []model.Alert{
		{ID: "a1", MetricName: "api_response_time_high", Severity: model.SeverityHigh, Status: model.StatusResolved, OccurrenceCount: 12, IsEscalated: true},
		{ID: "a2", MetricName: "api_response_time_high", Severity: model.SeverityHigh, Status: model.StatusActive, OccurrenceCount: 3},
		{ID: "a3", MetricName: "cpu_usage_critical", Severity: model.SeverityCritical, Status: model.StatusAcknowledged, OccurrenceCount: 40},
	}}
	hist := health.NewHistory(48 * time.Hour)
	hist.Append(model.HealthCheckResult{ServiceName: "api", Status: model.HealthHealthy, Timestamp: now.Add(-time.Hour)})
	hist.Append(model.HealthCheckResult{ServiceName: "api", Status: model.HealthUnhealthy, Timestamp: now})
	hist.Append(model.HealthCheckResult{ServiceName: "payments", Status: model.HealthHealthy, Timestamp: now})

	g := NewGenerator(store, hist)
	rep, err := g.Generate(ctx, PeriodDaily)
	require.NoError(t, err)

	assert.Equal(t, PeriodDaily, rep.Period)
	assert.WithinDuration(t, now.Add(-24*time.Hour), store.since, time.Minute)
	assert.Equal(t, 3, rep.AlertsTotal)
	assert.Equal(t, 2, rep.BySeverity[model.SeverityHigh])
	assert.Equal(t, 1, rep.BySeverity[model.SeverityCritical])
	assert.Equal(t, 1, rep.ByStatus[model.StatusActive])
	assert.Equal(t, 1, rep.ByStatus[model.StatusAcknowledged])
	assert.Equal(t, 1, rep.ByStatus[model.StatusResolved])
	assert.Equal(t, 1, rep.Escalated)

	// noisiest series first, alert counts folded per metric name
	require.Len(t, rep.NoisiestRule, 2)
	assert.Equal(t, "cpu_usage_critical", rep.NoisiestRule[0].MetricName)
	assert.Equal(t, 40, rep.NoisiestRule[0].Occurrences)
	assert.Equal(t, "api_response_time_high", rep.NoisiestRule[1].MetricName)
	assert.Equal(t, 2, rep.NoisiestRule[1].AlertCount)
	assert.Equal(t, 15, rep.NoisiestRule[1].Occurrences)

	// uptime rows sorted by service name
	require.Len(t, rep.Uptime, 2)
	assert.Equal(t, "api", rep.Uptime[0].Service)
	assert.InDelta(t, 50.0, rep.Uptime[0].UptimePct, 0.001)
	assert.Equal(t, "payments", rep.Uptime[1].Service)
	assert.InDelta(t, 100.0, rep.Uptime[1].UptimePct, 0.001)
}

func TestLatestCaching(t *testing.T) {
	ctx := context.Background()
	g := NewGenerator(&fakeAlertStore{}, health.NewHistory(time.Hour))

	_, ok := g.Latest(PeriodDaily)
	assert.False(t, ok)

	rep, err := g.Generate(ctx, PeriodDaily)
	require.NoError(t, err)

	got, ok := g.Latest(PeriodDaily)
	require.True(t, ok)
	assert.Equal(t, rep, got)

	// periods cache independently
	_, ok = g.Latest(PeriodWeekly)
	assert.False(t, ok)
}

package health

import (
	"testing"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(service string, status model.HealthState, ts time.Time) model.HealthCheckResult {
	return model.HealthCheckResult{ServiceName: service, Status: status, Timestamp: ts}
}

func TestHistoryAppendAndPrune(t *testing.T) {
	h := NewHistory(time.Hour)
	now := time.Now().UTC()

	h.Append(result("api", model.HealthHealthy, now.Add(-2*time.Hour)))
	h.Append(result("api", model.HealthHealthy, now.Add(-30*time.Minute)))
	h.Append(result("api", model.HealthDegraded, now))

	recent := h.Recent("api", now.Add(-time.Hour))
	require.Len(t, recent, 2)
	assert.Equal(t, model.HealthHealthy, recent[0].Status)
	assert.Equal(t, model.HealthDegraded, recent[1].Status)

	// the 2h-old entry was pruned on insert
	all := h.Recent("api", time.Time{})
	assert.Len(t, all, 2)
}

func TestHistoryServices(t *testing.T) {
	h := NewHistory(time.Hour)
	now := time.Now().UTC()
	h.Append(result("api", model.HealthHealthy, now))
	h.Append(result("payments", model.HealthHealthy, now))

	assert.ElementsMatch(t, []string{"api", "payments"}, h.Services())
}

func TestUptimePct(t *testing.T) {
	now := time.Now().UTC()

	t.Run("NoHistoryIsFullUptime", func(t *testing.T) {
		h := NewHistory(time.Hour)
		assert.Equal(t, 100.0, h.UptimePct("api", now.Add(-time.Hour)))
	})

	t.Run("UnhealthyChecksCountAgainstUptime", func(t *testing.T) {
		h := NewHistory(24 * time.Hour)
		h.Append(result("api", model.HealthHealthy, now.Add(-3*time.Minute)))
		h.Append(result("api", model.HealthDegraded, now.Add(-2*time.Minute)))
		h.Append(result("api", model.HealthUnhealthy, now.Add(-time.Minute)))
		h.Append(result("api", model.HealthHealthy, now))

		// degraded still counts as up; 3 of 4 checks were not unhealthy
		assert.InDelta(t, 75.0, h.UptimePct("api", now.Add(-time.Hour)), 0.001)
	})
}

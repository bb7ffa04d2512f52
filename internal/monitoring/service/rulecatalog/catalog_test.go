package rulecatalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRule() model.AlertRule {
	return model.AlertRule{
		Name:           "order_error_rate_elevated",
		MetricType:     model.MetricTypeError,
		MetricCategory: model.CategoryErrorRate,
		Condition:      model.Condition{Operator: model.OpGT, Threshold: 5, DurationMinutes: 10},
		Severity:       model.SeverityMedium,
		Enabled:        true,
		Channels:       []model.Channel{model.ChannelDashboard},
	}
}

func TestCatalogCRUD(t *testing.T) {
	t.Run("AddAssignsID", func(t *testing.T) {
		c := New()
		added, err := c.Add(validRule())
		require.NoError(t, err)
		assert.NotEmpty(t, added.ID)

		got, err := c.Get(added.ID)
		require.NoError(t, err)
		assert.Equal(t, added, got)
	})

	t.Run("UpdateUnknownRule", func(t *testing.T) {
		c := New()
		r := validRule()
		r.ID = "does-not-exist"
		assert.ErrorIs(t, c.Update(r), model.ErrRuleNotFound)
	})

	t.Run("UpdateReplacesRule", func(t *testing.T) {
		c := New()
		added, err := c.Add(validRule())
		require.NoError(t, err)

		added.Condition.Threshold = 10
		added.Enabled = false
		require.NoError(t, c.Update(added))

		got, err := c.Get(added.ID)
		require.NoError(t, err)
		assert.Equal(t, 10.0, got.Condition.Threshold)
		assert.False(t, got.Enabled)
	})

	t.Run("RemoveThenGet", func(t *testing.T) {
		c := New()
		added, err := c.Add(validRule())
		require.NoError(t, err)
		require.NoError(t, c.Remove(added.ID))
		_, err = c.Get(added.ID)
		assert.ErrorIs(t, err, model.ErrRuleNotFound)
		assert.ErrorIs(t, c.Remove(added.ID), model.ErrRuleNotFound)
	})

	t.Run("EnabledFiltersDisabledRules", func(t *testing.T) {
		c := New()
		on := validRule()
		_, err := c.Add(on)
		require.NoError(t, err)

		off := validRule()
		off.Name = "disabled_rule"
		off.Enabled = false
		_, err = c.Add(off)
		require.NoError(t, err)

		enabled := c.Enabled()
		require.Len(t, enabled, 1)
		assert.Equal(t, on.Name, enabled[0].Name)
		assert.Len(t, c.List(), 2)
	})
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.AlertRule)
	}{
		{"EmptyName", func(r *model.AlertRule) { r.Name = " " }},
		{"MissingMetricType", func(r *model.AlertRule) { r.MetricType = "" }},
		{"MissingMetricCategory", func(r *model.AlertRule) { r.MetricCategory = "" }},
		{"ZeroDuration", func(r *model.AlertRule) { r.Condition.DurationMinutes = 0 }},
		{"BadSeverity", func(r *model.AlertRule) { r.Severity = "URGENT" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			r := validRule()
			tc.mutate(&r)
			_, err := c.Add(r)
			assert.ErrorIs(t, err, model.ErrInvalidRule)
		})
	}
}

func TestSeedDefaults(t *testing.T) {
	c := New()
	c.SeedDefaults()
	rules := c.List()
	require.NotEmpty(t, rules)

	byName := make(map[string]model.AlertRule, len(rules))
	for _, r := range rules {
		byName[r.Name] = r
	}
	rt, ok := byName["api_response_time_high"]
	require.True(t, ok)
	assert.Equal(t, model.OpGT, rt.Condition.Operator)
	assert.Equal(t, 1000.0, rt.Condition.Threshold)
	assert.Equal(t, model.SeverityHigh, rt.Severity)

	// seeding twice must not duplicate
	c.SeedDefaults()
	assert.Len(t, c.List(), len(rules))
}

func TestLoadFile(t *testing.T) {
	t.Run("EmptyPathIsNoop", func(t *testing.T) {
		c := New()
		require.NoError(t, c.LoadFile(""))
	})

	t.Run("MissingFileErrors", func(t *testing.T) {
		c := New()
		assert.Error(t, c.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")))
	})

	t.Run("OverlayReplacesByName", func(t *testing.T) {
		c := New()
		c.SeedDefaults()

		path := filepath.Join(t.TempDir(), "rules.yaml")
		content := `rules:
  - name: api_response_time_high
    metricType: PERFORMANCE
    metricCategory: RESPONSE_TIME
    condition:
      operator: ">"
      threshold: 500
      durationMinutes: 3
    severity: CRITICAL
    enabled: true
    channels: [SLACK]
  - name: checkout_throughput_low
    metricType: BUSINESS
    metricCategory: ORDER_THROUGHPUT
    condition:
      operator: "<"
      threshold: 10
      durationMinutes: 15
    severity: MEDIUM
    enabled: true
    channels: [DASHBOARD]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		require.NoError(t, c.LoadFile(path))

		var replaced, added bool
		for _, r := range c.List() {
			switch r.Name {
			case "api_response_time_high":
				replaced = true
				assert.Equal(t, 500.0, r.Condition.Threshold)
				assert.Equal(t, model.SeverityCritical, r.Severity)
				assert.Equal(t, []model.Channel{model.ChannelSlack}, r.Channels)
			case "checkout_throughput_low":
				added = true
				assert.Equal(t, model.MetricTypeBusiness, r.MetricType)
			}
		}
		assert.True(t, replaced)
		assert.True(t, added)
	})
}

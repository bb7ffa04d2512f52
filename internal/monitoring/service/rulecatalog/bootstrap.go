package rulecatalog

import (
	"fmt"
	"os"

	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ruleFile is the shape of the optional YAML rules file.
type ruleFile struct {
	Rules []model.AlertRule `yaml:"rules"`
}

// SeedDefaults installs the default rule set for a fresh process. Rules already
// present under the same name are left untouched.
func (c *Catalog) SeedDefaults() {
	for _, r := range defaultRules() {
		if c.hasName(r.Name) {
			continue
		}
		if _, err := c.Add(r); err != nil {
			log.Error().Err(err).Str("rule", r.Name).Msg("seed default rule failed")
		}
	}
}

// LoadFile overlays rules from a YAML file on top of the catalog. Rules with a
// name already present replace the seeded version.
func (c *Catalog) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read rules file: %w", err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse rules file: %w", err)
	}
	for _, r := range f.Rules {
		c.removeByName(r.Name)
		if _, err := c.Add(r); err != nil {
			log.Error().Err(err).Str("rule", r.Name).Msg("load rule from file failed")
			continue
		}
		log.Info().Str("rule", r.Name).Msg("rule loaded from file")
	}
	return nil
}

func (c *Catalog) hasName(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.rules {
		if r.Name == name {
			return true
		}
	}
	return false
}

func (c *Catalog) removeByName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, r := range c.rules {
		if r.Name == name {
			delete(c.rules, id)
		}
	}
}

func defaultRules() []model.AlertRule {
	return []model.AlertRule{
		{
			Name:           "api_response_time_high",
			MetricType:     model.MetricTypePerformance,
			MetricCategory: model.CategoryResponseTime,
			Condition:      model.Condition{Operator: model.OpGT, Threshold: 1000, DurationMinutes: 5},
			Severity:       model.SeverityHigh,
			Enabled:        true,
			Channels:       []model.Channel{model.ChannelSlack, model.ChannelDashboard},
			Escalation:     &model.Escalation{EscalateAfterMinutes: 30, EscalateToChannels: []model.Channel{model.ChannelEmail}},
		},
		{
			Name:           "cpu_usage_critical",
			MetricType:     model.MetricTypeSystem,
			MetricCategory: model.CategoryCPUUsage,
			Condition:      model.Condition{Operator: model.OpGT, Threshold: 90, DurationMinutes: 10},
			Severity:       model.SeverityCritical,
			Enabled:        true,
			Channels:       []model.Channel{model.ChannelSlack, model.ChannelEmail, model.ChannelDashboard},
		},
		{
			Name:           "memory_usage_high",
			MetricType:     model.MetricTypeSystem,
			MetricCategory: model.CategoryMemoryUsage,
			Condition:      model.Condition{Operator: model.OpGTE, Threshold: 85, DurationMinutes: 10},
			Severity:       model.SeverityHigh,
			Enabled:        true,
			Channels:       []model.Channel{model.ChannelSlack, model.ChannelDashboard},
		},
		{
			Name:           "disk_usage_high",
			MetricType:     model.MetricTypeSystem,
			MetricCategory: model.CategoryDiskUsage,
			Condition:      model.Condition{Operator: model.OpGT, Threshold: 90, DurationMinutes: 30},
			Severity:       model.SeverityMedium,
			Enabled:        true,
			Channels:       []model.Channel{model.ChannelDashboard},
		},
		{
			Name:           "order_error_rate_elevated",
			MetricType:     model.MetricTypeError,
			MetricCategory: model.CategoryErrorRate,
			Condition:      model.Condition{Operator: model.OpGT, Threshold: 5, DurationMinutes: 15},
			Severity:       model.SeverityHigh,
			Enabled:        true,
			Channels:       []model.Channel{model.ChannelSlack, model.ChannelWebhook},
		},
	}
}

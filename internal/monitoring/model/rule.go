package model

import "time"

// Operator is a threshold comparison. An operator outside this set always
// evaluates false, so a misconfigured rule can never raise an alert.
type Operator string

const (
	OpGT  Operator = ">"
	OpLT  Operator = "<"
	OpGTE Operator = ">="
	OpLTE Operator = "<="
	OpEQ  Operator = "="
	OpNEQ Operator = "!="
)

// Severity orders alerts for display and gates escalation.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Channel is a notification delivery mechanism.
type Channel string

const (
	ChannelEmail     Channel = "EMAIL"
	ChannelSlack     Channel = "SLACK"
	ChannelWebhook   Channel = "WEBHOOK"
	ChannelDashboard Channel = "DASHBOARD"
)

// DefaultEscalateAfter is used when a rule carries no escalation config of its own.
const DefaultEscalateAfter = 30 * time.Minute

// Condition is the threshold test a rule applies to the windowed mean of its metric.
// DurationMinutes is the lookback window, so a single spike does not page anyone.
type Condition struct {
	Operator        Operator `json:"operator" yaml:"operator"`
	Threshold       float64  `json:"threshold" yaml:"threshold"`
	DurationMinutes int      `json:"durationMinutes" yaml:"durationMinutes"`
}

// Escalation overrides the default escalation delay and widens the channel set
// once an alert has been active too long.
type Escalation struct {
	EscalateAfterMinutes int       `json:"escalateAfterMinutes" yaml:"escalateAfterMinutes"`
	EscalateToChannels   []Channel `json:"escalateToChannels" yaml:"escalateToChannels"`
}

// AlertRule is a named threshold condition over a metric type/category.
type AlertRule struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	MetricType     MetricType     `json:"metricType" yaml:"metricType"`
	MetricCategory MetricCategory `json:"metricCategory" yaml:"metricCategory"`
	Condition      Condition      `json:"condition" yaml:"condition"`
	Severity       Severity       `json:"severity" yaml:"severity"`
	Enabled        bool           `json:"enabled" yaml:"enabled"`
	Channels       []Channel      `json:"channels" yaml:"channels"`
	Escalation     *Escalation    `json:"escalation,omitempty" yaml:"escalation,omitempty"`
}

// AlertType derives the coarse alert stream for this rule. PERFORMANCE rules feed
// the PERFORMANCE stream, everything else collapses to SYSTEM. Together with the
// rule name this forms the dedup key, so two rules sharing a name and stream will
// merge into one alert series.
func (r *AlertRule) AlertType() AlertType {
	if r.MetricType == MetricTypePerformance {
		return AlertTypePerformance
	}
	return AlertTypeSystem
}

// Window returns the sample lookback duration.
func (r *AlertRule) Window() time.Duration {
	return time.Duration(r.Condition.DurationMinutes) * time.Minute
}

// EscalateAfter returns the rule's own escalation delay when configured,
// falling back to DefaultEscalateAfter.
func (r *AlertRule) EscalateAfter() time.Duration {
	if r.Escalation != nil && r.Escalation.EscalateAfterMinutes > 0 {
		return time.Duration(r.Escalation.EscalateAfterMinutes) * time.Minute
	}
	return DefaultEscalateAfter
}

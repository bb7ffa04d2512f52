package model

import "time"

// AlertType is the coarse stream an alert belongs to; see AlertRule.AlertType.
type AlertType string

const (
	AlertTypePerformance AlertType = "PERFORMANCE"
	AlertTypeSystem      AlertType = "SYSTEM"
)

// AlertStatus is the lifecycle state. ACTIVE -> ACKNOWLEDGED -> RESOLVED, or
// ACTIVE -> RESOLVED directly. RESOLVED is terminal and never re-entered.
type AlertStatus string

const (
	StatusActive       AlertStatus = "ACTIVE"
	StatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	StatusResolved     AlertStatus = "RESOLVED"
)

// Alert is the central entity of the engine. At most one open (ACTIVE or
// ACKNOWLEDGED) alert exists per (AlertType, MetricName) pair; repeat
// detections update it in place.
type Alert struct {
	ID         string    `json:"id"`
	AlertType  AlertType `json:"alertType"`
	Severity   Severity  `json:"severity"`
	MetricName string    `json:"metricName"`
	Source     string    `json:"source,omitempty"`
	Endpoint   string    `json:"endpoint,omitempty"`
	Unit       string    `json:"unit,omitempty"`

	CurrentValue   float64  `json:"currentValue"`
	ThresholdValue float64  `json:"thresholdValue"`
	Operator       Operator `json:"operator"`

	Status          AlertStatus `json:"status"`
	OccurrenceCount int         `json:"occurrenceCount"`
	LastOccurrence  time.Time   `json:"lastOccurrence"`
	IsEscalated     bool        `json:"isEscalated"`
	EscalatedAt     *time.Time  `json:"escalatedAt,omitempty"`

	NotificationChannels []Channel `json:"notificationChannels"`
	NotificationSent     bool      `json:"notificationSent"`
	NotificationRetries  int       `json:"notificationRetries"`

	AcknowledgedBy   string     `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt   *time.Time `json:"acknowledgedAt,omitempty"`
	AcknowledgedNote string     `json:"acknowledgedNote,omitempty"`
	ResolvedBy       string     `json:"resolvedBy,omitempty"`
	ResolvedAt       *time.Time `json:"resolvedAt,omitempty"`
	ResolvedNote     string     `json:"resolvedNote,omitempty"`
	ResolvedAction   string     `json:"resolvedAction,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Age returns how long the alert has existed relative to now.
func (a *Alert) Age(now time.Time) time.Duration { return now.Sub(a.CreatedAt) }

// Escalatable reports whether the escalation sweep should consider this alert.
func (a *Alert) Escalatable() bool {
	return a.Status == StatusActive && !a.IsEscalated &&
		(a.Severity == SeverityHigh || a.Severity == SeverityCritical)
}

package model

import "time"

// HealthState is the status of a single monitored service.
type HealthState string

const (
	HealthHealthy   HealthState = "healthy"
	HealthDegraded  HealthState = "degraded"
	HealthUnhealthy HealthState = "unhealthy"
)

// OverallState is the aggregate status of the whole platform.
type OverallState string

const (
	OverallHealthy  OverallState = "healthy"
	OverallDegraded OverallState = "degraded"
	OverallDown     OverallState = "down"
)

// HealthDetails carries the resource snapshot attached to a check result.
type HealthDetails struct {
	UptimeSeconds     float64 `json:"uptime"`
	MemoryUsage       float64 `json:"memoryUsage"`
	CPUUsage          float64 `json:"cpuUsage"`
	DiskUsage         float64 `json:"diskUsage"`
	ActiveConnections int     `json:"activeConnections"`
	ErrorCount        int     `json:"errorCount"`
	LastError         string  `json:"lastError,omitempty"`
}

// HealthCheckResult is produced fresh on every health tick. A bounded trailing
// history per service keeps the last 24h for trend display.
type HealthCheckResult struct {
	ServiceName    string        `json:"serviceName"`
	Status         HealthState   `json:"status"`
	ResponseTimeMS float64       `json:"responseTime"`
	Details        HealthDetails `json:"details"`
	Timestamp      time.Time     `json:"timestamp"`
}

// InfraMetrics is one sample of host-level resources.
type InfraMetrics struct {
	Load1         float64   `json:"load1"`
	LogicalCPUs   int       `json:"logicalCpus"`
	MemoryUsedPct float64   `json:"memoryUsedPct"`
	MemoryTotalMB float64   `json:"memoryTotalMb"`
	DiskUsedPct   float64   `json:"diskUsedPct"`
	SampledAt     time.Time `json:"sampledAt"`
}

// SystemStatus is the derived, non-persisted aggregate served to dashboards.
type SystemStatus struct {
	Overall      OverallState        `json:"overall"`
	Services     []HealthCheckResult `json:"services"`
	Infra        InfraMetrics        `json:"infra"`
	ActiveAlerts map[Severity]int    `json:"activeAlerts"`
	CheckedAt    time.Time           `json:"checkedAt"`
}

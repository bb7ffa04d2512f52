package model

import "time"

// MetricType classifies where a sample came from and which alert stream it feeds.
type MetricType string

const (
	MetricTypePerformance MetricType = "PERFORMANCE"
	MetricTypeSystem      MetricType = "SYSTEM"
	MetricTypeBusiness    MetricType = "BUSINESS"
	MetricTypeError       MetricType = "ERROR"
)

// MetricCategory narrows a type to a concrete measurement.
type MetricCategory string

const (
	CategoryResponseTime    MetricCategory = "RESPONSE_TIME"
	CategoryCPUUsage        MetricCategory = "CPU_USAGE"
	CategoryMemoryUsage     MetricCategory = "MEMORY_USAGE"
	CategoryDiskUsage       MetricCategory = "DISK_USAGE"
	CategoryErrorRate       MetricCategory = "ERROR_RATE"
	CategoryOrderThroughput MetricCategory = "ORDER_THROUGHPUT"
	CategoryUptime          MetricCategory = "UPTIME"
)

// MetricSample is one immutable point in the metric time series.
// Samples are only ever appended; the retention sweep is the single delete path.
type MetricSample struct {
	ID        string            `json:"id"`
	Type      MetricType        `json:"metricType"`
	Category  MetricCategory    `json:"metricCategory"`
	Name      string            `json:"metricName"`
	Value     float64           `json:"value"`
	Unit      string            `json:"unit"`
	Source    string            `json:"source,omitempty"`
	Endpoint  string            `json:"endpoint,omitempty"`
	Component string            `json:"component,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

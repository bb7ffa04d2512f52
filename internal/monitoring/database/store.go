package database

import (
	"context"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/model"
)

// MetricStore is the append-only metric time series. Samples are immutable once
// written; DeleteOlderThan is the only delete path and belongs to the retention
// sweep.
type MetricStore interface {
	Append(ctx context.Context, s *model.MetricSample) error
	Query(ctx context.Context, t model.MetricType, c model.MetricCategory, since time.Time) ([]model.MetricSample, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AlertStore persists alerts. FindActive returns (nil, nil) when no open (ACTIVE
// or ACKNOWLEDGED) alert matches the dedup key; FindByID returns
// model.ErrAlertNotFound on a miss.
type AlertStore interface {
	Save(ctx context.Context, a *model.Alert) error
	FindByID(ctx context.Context, id string) (*model.Alert, error)
	FindActive(ctx context.Context, at model.AlertType, metricName string) (*model.Alert, error)
	FindBy(ctx context.Context, status model.AlertStatus, severity model.Severity) ([]model.Alert, error)
	FindSince(ctx context.Context, since time.Time) ([]model.Alert, error)
	DeleteResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

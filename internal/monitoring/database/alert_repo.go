package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/model"
)

// PgAlertStore is the PostgreSQL-backed AlertStore.
type PgAlertStore struct {
	DB *Database
}

func NewPgAlertStore(db *Database) *PgAlertStore { return &PgAlertStore{DB: db} }

const alertColumns = `id, alert_type, severity, metric_name, source, endpoint, unit,
current_value, threshold_value, operator, status, occurrence_count, last_occurrence,
is_escalated, escalated_at, channels, notification_sent, notification_retries,
acknowledged_by, acknowledged_at, acknowledged_note,
resolved_by, resolved_at, resolved_note, resolved_action, created_at`

func (s *PgAlertStore) Save(ctx context.Context, a *model.Alert) error {
	channelsJSON, _ := json.Marshal(a.NotificationChannels)
	const q = `
	INSERT INTO alerts(` + alertColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16::jsonb,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
	ON CONFLICT (id) DO UPDATE SET
		severity = EXCLUDED.severity,
		current_value = EXCLUDED.current_value,
		status = EXCLUDED.status,
		occurrence_count = EXCLUDED.occurrence_count,
		last_occurrence = EXCLUDED.last_occurrence,
		is_escalated = EXCLUDED.is_escalated,
		escalated_at = EXCLUDED.escalated_at,
		channels = EXCLUDED.channels,
		notification_sent = EXCLUDED.notification_sent,
		notification_retries = EXCLUDED.notification_retries,
		acknowledged_by = EXCLUDED.acknowledged_by,
		acknowledged_at = EXCLUDED.acknowledged_at,
		acknowledged_note = EXCLUDED.acknowledged_note,
		resolved_by = EXCLUDED.resolved_by,
		resolved_at = EXCLUDED.resolved_at,
		resolved_note = EXCLUDED.resolved_note,
		resolved_action = EXCLUDED.resolved_action
	`
	_, err := s.DB.ExecContext(ctx, q,
		a.ID, a.AlertType, a.Severity, a.MetricName,
		nullable(a.Source), nullable(a.Endpoint), nullable(a.Unit),
		a.CurrentValue, a.ThresholdValue, a.Operator,
		a.Status, a.OccurrenceCount, a.LastOccurrence,
		a.IsEscalated, a.EscalatedAt, string(channelsJSON),
		a.NotificationSent, a.NotificationRetries,
		nullable(a.AcknowledgedBy), a.AcknowledgedAt, nullable(a.AcknowledgedNote),
		nullable(a.ResolvedBy), a.ResolvedAt, nullable(a.ResolvedNote), nullable(a.ResolvedAction),
		a.CreatedAt)
	if err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return nil
}

func (s *PgAlertStore) FindByID(ctx context.Context, id string) (*model.Alert, error) {
	const q = `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, q, id)
	a, err := scanAlertRow(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find alert by id: %w", err)
	}
	return a, nil
}

func (s *PgAlertStore) FindActive(ctx context.Context, at model.AlertType, metricName string) (*model.Alert, error) {
	const q = `SELECT ` + alertColumns + ` FROM alerts
	WHERE status IN ('ACTIVE','ACKNOWLEDGED') AND alert_type = $1 AND metric_name = $2
	ORDER BY created_at DESC LIMIT 1`
	row := s.DB.QueryRowContext(ctx, q, at, metricName)
	a, err := scanAlertRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active alert: %w", err)
	}
	return a, nil
}

func (s *PgAlertStore) FindBy(ctx context.Context, status model.AlertStatus, severity model.Severity) ([]model.Alert, error) {
	q := `SELECT ` + alertColumns + ` FROM alerts WHERE status = $1`
	args := []any{status}
	if severity != "" {
		q += ` AND severity = $2`
		args = append(args, severity)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("find alerts: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (s *PgAlertStore) FindSince(ctx context.Context, since time.Time) ([]model.Alert, error) {
	const q = `SELECT ` + alertColumns + ` FROM alerts WHERE created_at >= $1 ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, q, since)
	if err != nil {
		return nil, fmt.Errorf("find alerts since: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func (s *PgAlertStore) DeleteResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM alerts WHERE status = 'RESOLVED' AND resolved_at < $1`
	res, err := s.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete resolved alerts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlertRow(row rowScanner) (*model.Alert, error) {
	var a model.Alert
	var source, endpoint, unit, channelsRaw *string
	var ackBy, ackNote, resBy, resNote, resAction *string
	if err := row.Scan(&a.ID, &a.AlertType, &a.Severity, &a.MetricName,
		&source, &endpoint, &unit,
		&a.CurrentValue, &a.ThresholdValue, &a.Operator,
		&a.Status, &a.OccurrenceCount, &a.LastOccurrence,
		&a.IsEscalated, &a.EscalatedAt, &channelsRaw,
		&a.NotificationSent, &a.NotificationRetries,
		&ackBy, &a.AcknowledgedAt, &ackNote,
		&resBy, &a.ResolvedAt, &resNote, &resAction,
		&a.CreatedAt); err != nil {
		return nil, err
	}
	a.Source = deref(source)
	a.Endpoint = deref(endpoint)
	a.Unit = deref(unit)
	a.AcknowledgedBy = deref(ackBy)
	a.AcknowledgedNote = deref(ackNote)
	a.ResolvedBy = deref(resBy)
	a.ResolvedNote = deref(resNote)
	a.ResolvedAction = deref(resAction)
	if channelsRaw != nil && *channelsRaw != "" {
		_ = json.Unmarshal([]byte(*channelsRaw), &a.NotificationChannels)
	}
	return &a, nil
}

func collectAlerts(rows *sql.Rows) ([]model.Alert, error) {
	var out []model.Alert
	for rows.Next() {
		a, err := scanAlertRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/merchantops/sentinel/internal/monitoring/model"
)

// PgMetricStore is the PostgreSQL-backed MetricStore.
type PgMetricStore struct {
	DB *Database
}

func NewPgMetricStore(db *Database) *PgMetricStore { return &PgMetricStore{DB: db} }

func (s *PgMetricStore) Append(ctx context.Context, m *model.MetricSample) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	tagsJSON, _ := json.Marshal(m.Tags)
	const q = `
	INSERT INTO metric_samples(id, metric_type, metric_category, metric_name, value, unit, source, endpoint, component, tags, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11)
	`
	_, err := s.DB.ExecContext(ctx, q, m.ID, m.Type, m.Category, m.Name, m.Value, m.Unit,
		nullable(m.Source), nullable(m.Endpoint), nullable(m.Component), string(tagsJSON), m.CreatedAt)
	if err != nil {
		return fmt.Errorf("append metric sample: %w", err)
	}
	return nil
}

func (s *PgMetricStore) Query(ctx context.Context, t model.MetricType, c model.MetricCategory, since time.Time) ([]model.MetricSample, error) {
	const q = `
	SELECT id, metric_type, metric_category, metric_name, value, unit, source, endpoint, component, tags::text, created_at
	FROM metric_samples
	WHERE metric_type = $1 AND metric_category = $2 AND created_at >= $3
	ORDER BY created_at ASC
	`
	rows, err := s.DB.QueryContext(ctx, q, t, c, since)
	if err != nil {
		return nil, fmt.Errorf("query metric samples: %w", err)
	}
	defer rows.Close()
	var out []model.MetricSample
	for rows.Next() {
		var m model.MetricSample
		var source, endpoint, component, tagsRaw *string
		if err := rows.Scan(&m.ID, &m.Type, &m.Category, &m.Name, &m.Value, &m.Unit,
			&source, &endpoint, &component, &tagsRaw, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan metric sample: %w", err)
		}
		m.Source = deref(source)
		m.Endpoint = deref(endpoint)
		m.Component = deref(component)
		if tagsRaw != nil && *tagsRaw != "" {
			_ = json.Unmarshal([]byte(*tagsRaw), &m.Tags)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PgMetricStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM metric_samples WHERE created_at < $1`
	res, err := s.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete metric samples: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

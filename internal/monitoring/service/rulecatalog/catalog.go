// Package rulecatalog holds the process-wide alert rule registry. The registry
// is read on every evaluation tick and mutated only by admin operations, so it
// is guarded by a read-write lock and evaluation works on snapshots.
package rulecatalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/merchantops/sentinel/internal/monitoring/model"
)

type Catalog struct {
	mu    sync.RWMutex
	rules map[string]model.AlertRule
}

func New() *Catalog {
	return &Catalog{rules: make(map[string]model.AlertRule)}
}

// Add registers a rule, assigning an id when the caller did not.
func (c *Catalog) Add(r model.AlertRule) (model.AlertRule, error) {
	if err := validate(&r); err != nil {
		return model.AlertRule{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules[r.ID] = r
	return r, nil
}

func (c *Catalog) Update(r model.AlertRule) error {
	if err := validate(&r); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rules[r.ID]; !ok {
		return model.ErrRuleNotFound
	}
	c.rules[r.ID] = r
	return nil
}

func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.rules[id]; !ok {
		return model.ErrRuleNotFound
	}
	delete(c.rules, id)
	return nil
}

func (c *Catalog) Get(id string) (model.AlertRule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rules[id]
	if !ok {
		return model.AlertRule{}, model.ErrRuleNotFound
	}
	return r, nil
}

// List returns all rules ordered by name.
func (c *Catalog) List() []model.AlertRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.AlertRule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Enabled returns a snapshot of the rules the evaluator should run this tick.
func (c *Catalog) Enabled() []model.AlertRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.AlertRule, 0, len(c.rules))
	for _, r := range c.rules {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

func validate(r *model.AlertRule) error {
	if strings.TrimSpace(r.Name) == "" {
		return model.ErrInvalidRule
	}
	if r.MetricType == "" || r.MetricCategory == "" {
		return model.ErrInvalidRule
	}
	if r.Condition.DurationMinutes <= 0 {
		return model.ErrInvalidRule
	}
	switch r.Severity {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical:
	default:
		return model.ErrInvalidRule
	}
	return nil
}
